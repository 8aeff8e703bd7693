// Package physics simulates static and kinematic rigid bodies attached to host
// scene nodes. A World advances them in fixed sub-steps.
package physics

import (
	"log"

	"github.com/0x5844/rigid2d/collision"
	"github.com/0x5844/rigid2d/geom"
)

// Config is the World configuration. Gravity is in world units per second
// squared before GravityScale is applied; positive Y points down.
type Config struct {
	Gravity      geom.Vector2
	GravityScale float64
	TimeStep     float64
	Sleep        SleepConfig

	// Bounds removes kinematic bodies whose shape leaves it. Nil disables.
	Bounds *geom.AABB
	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Gravity:      geom.NewVector2(0, 9.81),
		GravityScale: 120,
		TimeStep:     1.0 / 600,
		Sleep:        DefaultSleepConfig(),
	}
}

type Stats struct {
	Steps      int64
	Pairs      int64
	Collisions int64
	Removed    int64
	Bodies     int
	Sleeping   int
}

type shapeSlot struct {
	shape collision.Collider
	ok    bool
}

// World owns a set of bodies and advances them in fixed sub-steps. It is not
// safe for concurrent use.
type World struct {
	config Config
	logger *log.Logger

	bodies    []*Body
	shapes    []shapeSlot
	pairs     [][2]int
	manifolds []Manifold
	solver    solverScratch

	warned map[*Body]bool
	stats  Stats
	time   float64
}

func NewWorld(config Config) *World {
	if config.TimeStep <= 0 {
		config.TimeStep = DefaultConfig().TimeStep
	}
	if config.GravityScale == 0 {
		config.GravityScale = 1
	}
	return &World{
		config:    config,
		logger:    logger(config.Logger),
		bodies:    make([]*Body, 0, 64),
		manifolds: make([]Manifold, 0, 64),
		warned:    make(map[*Body]bool),
	}
}

func (w *World) Config() Config {
	return w.config
}

// Gravity is the effective acceleration applied to kinematic bodies.
func (w *World) Gravity() geom.Vector2 {
	return w.config.Gravity.Scale(w.config.GravityScale)
}

func (w *World) SetGravity(g geom.Vector2) {
	w.config.Gravity = g
}

// AddBody appends b to the simulation. Adding the same body twice is a no-op.
func (w *World) AddBody(b *Body) *World {
	if b == nil {
		return w
	}
	for _, existing := range w.bodies {
		if existing == b {
			return w
		}
	}
	w.bodies = append(w.bodies, b)
	return w
}

func (w *World) RemoveBody(b *Body) bool {
	for i, existing := range w.bodies {
		if existing == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			delete(w.warned, b)
			return true
		}
	}
	return false
}

func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Collisions returns the manifolds resolved during the last sub-step.
func (w *World) Collisions() []Manifold {
	out := make([]Manifold, len(w.manifolds))
	copy(out, w.manifolds)
	return out
}

func (w *World) Stats() Stats {
	s := w.stats
	s.Bodies = len(w.bodies)
	return s
}

// Time is the total simulated time.
func (w *World) Time() float64 {
	return w.time
}

// Advance runs at most one sub-step from budget and returns what is left.
func (w *World) Advance(budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	dt := min(budget, w.config.TimeStep)
	w.Step(dt)
	return budget - dt
}

// Step runs a single sub-step of dt, clamped to the configured TimeStep.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	dt = min(dt, w.config.TimeStep)

	gravity := w.Gravity()
	for _, b := range w.bodies {
		b.tick(dt, gravity, w.config.Sleep)
	}

	w.refreshShapes()
	w.broadPhase()

	w.manifolds = w.manifolds[:0]
	for _, pair := range w.pairs {
		w.narrowPhase(pair[0], pair[1])
	}

	w.removeOutOfBounds()

	sleeping := 0
	for _, b := range w.bodies {
		if b.kind == Kinematic && b.motion.sleeping {
			sleeping++
		}
	}
	w.stats.Sleeping = sleeping
	w.stats.Steps++
	w.time += dt
}

func (w *World) refreshShapes() {
	if cap(w.shapes) < len(w.bodies) {
		w.shapes = make([]shapeSlot, len(w.bodies))
	}
	w.shapes = w.shapes[:len(w.bodies)]

	for i, b := range w.bodies {
		if b.collider == nil {
			if !w.warned[b] {
				w.logger.Printf("physics: %s has no collider, excluded from collisions", b)
				w.warned[b] = true
			}
			w.shapes[i] = shapeSlot{}
			continue
		}
		w.shapes[i] = shapeSlot{shape: b.collider.Shape(), ok: true}
	}
}

// broadPhase collects every index pair whose AABBs overlap, skipping pairs
// that cannot produce a response.
func (w *World) broadPhase() {
	w.pairs = w.pairs[:0]
	for i := 0; i < len(w.bodies); i++ {
		if !w.shapes[i].ok {
			continue
		}
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			if !w.shapes[j].ok {
				continue
			}
			b := w.bodies[j]
			if a.kind == Static && b.kind == Static {
				continue
			}
			if a.IsSleeping() && b.IsSleeping() {
				continue
			}
			if !w.shapes[i].shape.AABB.Intersects(w.shapes[j].shape.AABB) {
				continue
			}
			w.pairs = append(w.pairs, [2]int{i, j})
		}
	}
	w.stats.Pairs += int64(len(w.pairs))
}

func (w *World) narrowPhase(i, j int) {
	a, b := w.bodies[i], w.bodies[j]

	data, ok := collision.Intersect(w.shapes[i].shape, w.shapes[j].shape)
	if !ok {
		return
	}
	a.Wake()
	b.Wake()

	half := data.Normal.Scale(data.Depth / 2)
	if a.kind == Kinematic {
		a.translate(half)
		w.shapes[i].shape = a.collider.Shape()
	}
	if b.kind == Kinematic {
		b.translate(half.Neg())
		w.shapes[j].shape = b.collider.Shape()
	}

	m := Manifold{
		BodyA:     a,
		BodyB:     b,
		Collision: data,
		Contacts:  collision.FindContactPoints(w.shapes[i].shape, w.shapes[j].shape),
	}
	w.solver.resolve(&m, w.shapes[i].shape, w.shapes[j].shape)
	w.manifolds = append(w.manifolds, m)
	w.stats.Collisions++
}

func (w *World) removeOutOfBounds() {
	bounds := w.config.Bounds
	if bounds == nil {
		return
	}

	kept := w.bodies[:0]
	for i, b := range w.bodies {
		if b.kind == Kinematic && !w.inBounds(*bounds, b, w.shapes[i]) {
			w.logger.Printf("physics: removing %s, left world bounds", b)
			delete(w.warned, b)
			w.stats.Removed++
			continue
		}
		kept = append(kept, b)
	}
	clear(w.bodies[len(kept):])
	w.bodies = kept
}

func (w *World) inBounds(bounds geom.AABB, b *Body, slot shapeSlot) bool {
	if slot.ok {
		return bounds.Intersects(slot.shape.AABB)
	}
	return bounds.Contains(b.Position())
}
