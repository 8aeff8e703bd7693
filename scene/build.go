package scene

import (
	"fmt"
	"log"
	"strings"

	"github.com/0x5844/rigid2d/geom"
	"github.com/0x5844/rigid2d/physics"
)

// WorldConfig applies the scene's overrides to physics.DefaultConfig.
func (c *Config) WorldConfig(logger *log.Logger) physics.Config {
	wc := physics.DefaultConfig()
	wc.Logger = logger
	if c.Gravity != nil {
		wc.Gravity = *c.Gravity
	}
	if c.GravityScale != 0 {
		wc.GravityScale = c.GravityScale
	}
	if c.TimeStep > 0 {
		wc.TimeStep = c.TimeStep
	}
	if c.Bounds != nil {
		bounds := geom.NewAABB(c.Bounds.Min, c.Bounds.Max)
		wc.Bounds = &bounds
	}
	return wc
}

// Build creates a World from wc holding every body of the scene, in file
// order. wc is usually c.WorldConfig.
func Build(c *Config, wc physics.Config) (*physics.World, error) {
	world := physics.NewWorld(wc)
	for i := range c.Bodies {
		body, err := c.Bodies[i].Body()
		if err != nil {
			return nil, fmt.Errorf("scene: body %d (%s): %w", i, c.Bodies[i].label(), err)
		}
		world.AddBody(body)
	}
	return world, nil
}

// Body creates the node, collider and body described by b.
func (b *BodyConfig) Body() (*physics.Body, error) {
	node := physics.NewNode(b.Position)
	node.SetRotation(b.Rotation)

	collider, err := b.Shape.Collider(node)
	if err != nil {
		return nil, err
	}

	props := b.Props()
	if strings.ToLower(b.Kind) == KindStatic {
		return physics.NewStaticBody(node, collider, props)
	}
	return physics.NewKinematicBody(node, collider, props)
}

func (b *BodyConfig) Props() physics.BodyProps {
	props := physics.DefaultBodyProps()
	props.Name = b.Name
	props.LinearVelocity = b.Velocity
	props.AngularVelocity = b.AngularVelocity
	props.Sleeping = b.Sleeping
	if b.Mass != nil {
		props.Mass = *b.Mass
	}
	if b.Restitution != nil {
		props.Restitution = *b.Restitution
	}
	if b.StaticFriction != nil {
		props.StaticFriction = *b.StaticFriction
	}
	if b.DynamicFriction != nil {
		props.DynamicFriction = *b.DynamicFriction
	}
	return props
}

// Collider attaches the described shape to node. A polygon's center is its
// area centroid.
func (s *ShapeConfig) Collider(node physics.Node) (physics.NodeCollider, error) {
	switch strings.ToLower(s.Type) {
	case ShapeCircle:
		return &physics.CircleCollider{Node: node, Offset: s.Offset, Radius: s.Radius}, nil
	case ShapeRect:
		return &physics.RectCollider{Node: node, Offset: s.Offset, Size: geom.NewVector2(s.Width, s.Height)}, nil
	case ShapePolygon:
		if err := ValidatePolygon(s.Vertices); err != nil {
			return nil, err
		}
		vertices := make([]geom.Vector2, len(s.Vertices))
		for i, v := range s.Vertices {
			vertices[i] = v.Add(s.Offset)
		}
		return &physics.PolygonCollider{Node: node, Vertices: vertices, Center: Centroid(vertices)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
	}
}
