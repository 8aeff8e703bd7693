package physics

import (
	"log"
	"math"

	"github.com/0x5844/rigid2d/collision"
	"github.com/0x5844/rigid2d/geom"
)

// NodeCollider produces world-space collision geometry from the current
// transform of its node. Shape must not cache across transform changes.
type NodeCollider interface {
	Shape() collision.Collider
}

// CircleCollider is a circle centred on Offset in node space. A zero Radius
// is inferred from Geometry as half its larger side.
type CircleCollider struct {
	Node     Node
	Offset   geom.Vector2
	Radius   float64
	Geometry Sized

	// Logger receives the warning emitted when no radius can be inferred.
	Logger *log.Logger
	warned bool
}

func NewCircleCollider(node Node, radius float64) *CircleCollider {
	return &CircleCollider{Node: node, Radius: radius}
}

func (c *CircleCollider) Shape() collision.Collider {
	t := localToWorld(c.Node)
	scale := math.Max(math.Abs(t.Scale.X), math.Abs(t.Scale.Y))
	return collision.NewCircle(t.Apply(c.Offset), c.radius()*scale)
}

func (c *CircleCollider) radius() float64 {
	if c.Radius != 0 {
		return c.Radius
	}
	if c.Geometry == nil {
		if !c.warned {
			logger(c.Logger).Printf("physics: cannot infer circle collider radius without geometry, using 0")
			c.warned = true
		}
		return 0
	}
	size := c.Geometry.Size()
	return math.Max(size.X, size.Y) / 2
}

// PolygonCollider is a convex polygon given in node space. Center is also in
// node space; the zero value places it on the node origin.
type PolygonCollider struct {
	Node     Node
	Vertices []geom.Vector2
	Center   geom.Vector2
}

func NewPolygonCollider(node Node, vertices ...geom.Vector2) *PolygonCollider {
	return &PolygonCollider{Node: node, Vertices: vertices}
}

func (c *PolygonCollider) Shape() collision.Collider {
	t := localToWorld(c.Node)
	return collision.NewPolygon(t.ApplyAll(c.Vertices), t.Apply(c.Center))
}

// RectCollider is a rectangle of Size centred on Offset in node space,
// grown by Expand on every side. A zero Size falls back to Geometry.
type RectCollider struct {
	Node     Node
	Size     geom.Vector2
	Offset   geom.Vector2
	Expand   float64
	Geometry Sized
}

func NewRectCollider(node Node, size geom.Vector2) *RectCollider {
	return &RectCollider{Node: node, Size: size}
}

func (c *RectCollider) Shape() collision.Collider {
	size := c.Size
	if size == geom.Zero && c.Geometry != nil {
		size = c.Geometry.Size()
	}

	half := size.Scale(0.5)
	rect := geom.NewAABB(c.Offset.Sub(half), c.Offset.Add(half)).Expand(c.Expand)
	corners := rect.Corners()

	t := localToWorld(c.Node)
	return collision.NewPolygon(t.ApplyAll(corners[:]), t.Apply(rect.Center()))
}

func logger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
