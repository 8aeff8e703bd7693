// Package scene loads, validates and generates scene descriptions and turns
// them into a populated physics World.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/0x5844/rigid2d/geom"
)

var (
	ErrNotConvex     = errors.New("scene: polygon is not convex")
	ErrUnknownShape  = errors.New("scene: unknown shape")
	ErrUnknownKind   = errors.New("scene: unknown body kind")
	ErrInvalidShape  = errors.New("scene: invalid shape")
	ErrUnknownFormat = errors.New("scene: unknown file format")
)

const (
	KindStatic    = "static"
	KindKinematic = "kinematic"

	ShapeCircle  = "circle"
	ShapeRect    = "rect"
	ShapePolygon = "polygon"
)

type Config struct {
	Name         string        `yaml:"name" json:"name"`
	Gravity      *geom.Vector2 `yaml:"gravity" json:"gravity"`
	GravityScale float64       `yaml:"gravity_scale" json:"gravity_scale"`
	TimeStep     float64       `yaml:"time_step" json:"time_step"`
	Duration     float64       `yaml:"duration" json:"duration"`
	Bounds       *BoundsConfig `yaml:"bounds" json:"bounds"`
	Bodies       []BodyConfig  `yaml:"bodies" json:"bodies"`
}

type BoundsConfig struct {
	Min geom.Vector2 `yaml:"min" json:"min"`
	Max geom.Vector2 `yaml:"max" json:"max"`
}

// BodyConfig describes one body. Nil material fields fall back to
// physics.DefaultBodyProps.
type BodyConfig struct {
	Name            string       `yaml:"name" json:"name"`
	Kind            string       `yaml:"kind" json:"kind"`
	Shape           ShapeConfig  `yaml:"shape" json:"shape"`
	Position        geom.Vector2 `yaml:"position" json:"position"`
	Rotation        float64      `yaml:"rotation" json:"rotation"`
	Velocity        geom.Vector2 `yaml:"velocity" json:"velocity"`
	AngularVelocity float64      `yaml:"angular_velocity" json:"angular_velocity"`
	Mass            *float64     `yaml:"mass" json:"mass"`
	Restitution     *float64     `yaml:"restitution" json:"restitution"`
	StaticFriction  *float64     `yaml:"static_friction" json:"static_friction"`
	DynamicFriction *float64     `yaml:"dynamic_friction" json:"dynamic_friction"`
	Sleeping        bool         `yaml:"sleeping" json:"sleeping"`
}

// ShapeConfig is a collider in body-local coordinates.
type ShapeConfig struct {
	Type     string         `yaml:"type" json:"type"`
	Radius   float64        `yaml:"radius,omitempty" json:"radius,omitempty"`
	Width    float64        `yaml:"width,omitempty" json:"width,omitempty"`
	Height   float64        `yaml:"height,omitempty" json:"height,omitempty"`
	Offset   geom.Vector2   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Vertices []geom.Vector2 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
}

// Load reads a scene file, choosing the decoder from its extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a scene. format is a file extension such as
// ".yaml" or ".json".
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes cfg in the format named by ext.
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (c *Config) Validate() error {
	if c.TimeStep < 0 {
		return fmt.Errorf("scene: time step cannot be negative")
	}
	if c.Duration < 0 {
		return fmt.Errorf("scene: duration cannot be negative")
	}
	for i, b := range c.Bodies {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("scene: body %d (%s): %w", i, b.label(), err)
		}
	}
	return nil
}

func (b *BodyConfig) Validate() error {
	switch strings.ToLower(b.Kind) {
	case KindStatic:
	case KindKinematic, "":
		if b.Mass != nil && *b.Mass <= 0 {
			return fmt.Errorf("mass must be positive, got %v", *b.Mass)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, b.Kind)
	}
	return b.Shape.Validate()
}

func (b *BodyConfig) label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Shape.Type
}

func (s *ShapeConfig) Validate() error {
	switch strings.ToLower(s.Type) {
	case ShapeCircle:
		if s.Radius <= 0 {
			return fmt.Errorf("%w: circle radius must be positive", ErrInvalidShape)
		}
	case ShapeRect:
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%w: rect size must be positive", ErrInvalidShape)
		}
	case ShapePolygon:
		return ValidatePolygon(s.Vertices)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
	}
	return nil
}

// ValidatePolygon reports whether vertices form a simple convex polygon with
// no collinear or interior points, in either winding.
func ValidatePolygon(vertices []geom.Vector2) error {
	if len(vertices) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, len(vertices))
	}

	verts := toCP(vertices)
	area := cp.AreaForPoly(len(verts), verts, 0)
	if math.Abs(area) < 1e-9 {
		return fmt.Errorf("%w: polygon has no area", ErrInvalidShape)
	}

	hull := toCP(vertices)
	n := cp.ConvexHull(len(hull), hull, nil, 0)
	if n != len(vertices) {
		return fmt.Errorf("%w: %d of %d vertices on the hull", ErrNotConvex, n, len(vertices))
	}

	// A self-intersecting ordering of hull points encloses less signed area
	// than the hull itself.
	hullArea := cp.AreaForPoly(n, hull, 0)
	if math.Abs(math.Abs(area)-math.Abs(hullArea)) > 1e-9*math.Abs(hullArea) {
		return fmt.Errorf("%w: vertices are not in hull order", ErrNotConvex)
	}
	return nil
}

// Centroid is the area centroid of a simple polygon.
func Centroid(vertices []geom.Vector2) geom.Vector2 {
	if len(vertices) == 0 {
		return geom.Zero
	}
	c := cp.CentroidForPoly(len(vertices), toCP(vertices))
	return geom.NewVector2(c.X, c.Y)
}

func toCP(vertices []geom.Vector2) []cp.Vector {
	out := make([]cp.Vector, len(vertices))
	for i, v := range vertices {
		out[i] = cp.Vector{X: v.X, Y: v.Y}
	}
	return out
}
