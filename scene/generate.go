package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/0x5844/rigid2d/geom"
)

var ErrUnknownScene = errors.New("scene: unknown scene type")

// Generated scenes are laid out in pixels with +Y pointing down, matching
// physics.DefaultConfig.
var Types = []string{"default", "pyramid", "rain", "container", "pendulum", "mixed"}

const worldExtent = 5000

// Generate builds a procedural scene of the given type with roughly count
// bodies.
func Generate(sceneType string, count int, rng *rand.Rand) (*Config, error) {
	if !slices.Contains(Types, sceneType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, sceneType)
	}
	if count < 1 {
		return nil, fmt.Errorf("scene: bodies count must be at least 1")
	}

	g := &generator{rng: rng}
	switch sceneType {
	case "pyramid":
		g.pyramid(count)
	case "rain":
		g.rain(count)
	case "container":
		g.container(count)
	case "pendulum":
		g.pendulum(count)
	case "mixed":
		g.mixed(count)
	default:
		g.standard(count)
	}

	return &Config{
		Name:   sceneType,
		Bounds: &BoundsConfig{Min: geom.Splat(-worldExtent), Max: geom.Splat(worldExtent)},
		Bodies: g.bodies,
	}, nil
}

type generator struct {
	rng    *rand.Rand
	bodies []BodyConfig
}

func ptr(v float64) *float64 {
	return &v
}

func (g *generator) wall(x, y, width, height float64) {
	g.bodies = append(g.bodies, BodyConfig{
		Kind:     KindStatic,
		Position: geom.NewVector2(x, y),
		Shape:    ShapeConfig{Type: ShapeRect, Width: width, Height: height},
	})
}

func (g *generator) circle(x, y, radius, mass float64) *BodyConfig {
	g.bodies = append(g.bodies, BodyConfig{
		Kind:     KindKinematic,
		Position: geom.NewVector2(x, y),
		Mass:     ptr(mass),
		Shape:    ShapeConfig{Type: ShapeCircle, Radius: radius},
	})
	return &g.bodies[len(g.bodies)-1]
}

func (g *generator) box(x, y, width, height, mass float64) *BodyConfig {
	g.bodies = append(g.bodies, BodyConfig{
		Kind:     KindKinematic,
		Position: geom.NewVector2(x, y),
		Mass:     ptr(mass),
		Shape:    ShapeConfig{Type: ShapeRect, Width: width, Height: height},
	})
	return &g.bodies[len(g.bodies)-1]
}

func (g *generator) polygon(x, y, radius, mass float64, sides int) *BodyConfig {
	vertices := make([]geom.Vector2, sides)
	for i := range vertices {
		angle := 2 * math.Pi * float64(i) / float64(sides)
		vertices[i] = geom.NewVector2(math.Cos(angle), math.Sin(angle)).Scale(radius)
	}
	g.bodies = append(g.bodies, BodyConfig{
		Kind:     KindKinematic,
		Position: geom.NewVector2(x, y),
		Mass:     ptr(mass),
		Shape:    ShapeConfig{Type: ShapePolygon, Vertices: vertices},
	})
	return &g.bodies[len(g.bodies)-1]
}

// Masses stay in the units of a 10px-per-unit layout so that circles and
// boxes of the same footprint weigh about the same.
func (g *generator) standard(count int) {
	g.wall(0, 500, 2000, 100)

	for i := 0; i < count; i++ {
		x := (g.rng.Float64() - 0.5) * 1500
		y := -(g.rng.Float64()*500 + 500)

		if g.rng.Float64() < 0.6 {
			radius := g.rng.Float64()*2 + 1
			g.circle(x, y, radius*10, radius*radius*math.Pi)
		} else {
			size := g.rng.Float64()*3 + 1
			g.box(x, y, size*10, size*10, size*size)
		}
	}
}

func (g *generator) pyramid(count int) {
	const boxSize = 20.0
	g.wall(0, 100, 2000, 50)

	levels := int(math.Sqrt(float64(count))) + 1
	y := 75 - boxSize/2
	for level := levels; level > 0; level-- {
		for i := 0; i < level; i++ {
			x := float64(i-level/2) * boxSize
			g.box(x, y, boxSize*0.9, boxSize*0.9, 1)
		}
		y -= boxSize
	}
}

func (g *generator) rain(count int) {
	g.wall(0, 500, 3000, 100)
	g.wall(-1500, 0, 100, 1000)
	g.wall(1500, 0, 100, 1000)

	for i := 0; i < count; i++ {
		x := (g.rng.Float64() - 0.5) * 2500
		y := -(g.rng.Float64()*2000 + 1000)

		if g.rng.Float64() < 0.7 {
			radius := g.rng.Float64()*2 + 0.5
			g.circle(x, y, radius*10, radius*radius*math.Pi)
		} else {
			width := g.rng.Float64()*3 + 1
			height := g.rng.Float64()*3 + 1
			g.box(x, y, width*10, height*10, width*height)
		}
	}
}

func (g *generator) container(count int) {
	const (
		wallThickness = 50.0
		width         = 1000.0
		height        = 800.0
	)

	g.wall(0, height/2, width, wallThickness)
	g.wall(-width/2, 0, wallThickness, height)
	g.wall(width/2, 0, wallThickness, height)

	for i := 0; i < count; i++ {
		x := (g.rng.Float64() - 0.5) * (width - 200)
		y := -(g.rng.Float64()*600 + 100)

		if g.rng.Float64() < 0.6 {
			radius := g.rng.Float64()*1.5 + 0.5
			g.circle(x, y, radius*10, radius*radius*math.Pi*0.5)
		} else {
			size := g.rng.Float64()*2 + 1
			g.box(x, y, size*10, size*10, size*size*0.5)
		}
	}
}

// pendulum drops a bob from below each static anchor with a random
// horizontal push. Bodies are not jointed, so the bobs fall onto a floor wide
// enough to keep them in bounds.
func (g *generator) pendulum(count int) {
	n := max(count/3, 1)
	g.wall(0, 300, float64(n)*100+2000, 50)

	for i := 0; i < n; i++ {
		x := float64(i-n/2) * 100

		g.bodies = append(g.bodies, BodyConfig{
			Kind:     KindStatic,
			Position: geom.NewVector2(x, -500),
			Shape:    ShapeConfig{Type: ShapeCircle, Radius: 5},
		})

		bob := g.circle(x, -300, 15, 2)
		bob.Velocity = geom.NewVector2((g.rng.Float64()-0.5)*100, 0)
	}
}

func (g *generator) mixed(count int) {
	g.wall(-750, 500, 500, 100)
	g.wall(750, 500, 500, 100)

	for i := 0; i < 5; i++ {
		x := (g.rng.Float64() - 0.5) * 1500
		y := 200 - float64(i)*150
		width := g.rng.Float64()*300 + 200
		g.wall(x, y, width, 30)
	}

	for i := 0; i < count; i++ {
		x := (g.rng.Float64() - 0.5) * 2000
		y := -(g.rng.Float64()*1000 + 500)

		var b *BodyConfig
		switch g.rng.Intn(3) {
		case 0:
			radius := g.rng.Float64()*2 + 0.5
			b = g.circle(x, y, radius*10, radius*radius*math.Pi)
			b.Restitution = ptr(g.rng.Float64()*0.5 + 0.5)
			b.StaticFriction = ptr(g.rng.Float64()*0.5 + 0.2)
		case 1:
			size := g.rng.Float64()*3 + 1
			b = g.box(x, y, size*10, size*10, size*size)
			b.Restitution = ptr(g.rng.Float64()*0.5 + 0.3)
			b.StaticFriction = ptr(g.rng.Float64()*0.6 + 0.3)
		case 2:
			radius := g.rng.Float64()*2 + 1
			b = g.polygon(x, y, radius*10, radius*radius*2.6, 3+g.rng.Intn(4))
			b.Restitution = ptr(g.rng.Float64()*0.4 + 0.4)
			b.StaticFriction = ptr(g.rng.Float64()*0.5 + 0.4)
		}
		b.DynamicFriction = ptr(*b.StaticFriction * 0.8)
	}
}
