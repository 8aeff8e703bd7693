package physics

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/0x5844/rigid2d/geom"
)

func weightless() Config {
	c := DefaultConfig()
	c.Gravity = geom.Zero
	c.Sleep.Disabled = true
	return c
}

func ball(t *testing.T, position geom.Vector2, radius float64, props BodyProps) *Body {
	t.Helper()
	node := NewNode(position)
	return kinematic(t, node, NewCircleCollider(node, radius), props)
}

// floor is a static 1000x20 slab whose top edge lies on y = 100.
func floor(t *testing.T) *Body {
	t.Helper()
	node := NewNode(geom.NewVector2(0, 110))
	return static(t, node, NewRectCollider(node, geom.NewVector2(1000, 20)))
}

func TestWorld_ElasticCollisionConservesMomentum(t *testing.T) {
	w := NewWorld(weightless())

	propsA := DefaultBodyProps()
	propsA.LinearVelocity = geom.NewVector2(100, 0)
	a := ball(t, geom.Zero, 10, propsA)

	propsB := DefaultBodyProps()
	propsB.Mass = 3
	propsB.LinearVelocity = geom.NewVector2(-50, 0)
	b := ball(t, geom.NewVector2(30, 0), 10, propsB)

	w.AddBody(a).AddBody(b)

	momentum := func() geom.Vector2 {
		return a.LinearVelocity().Scale(a.Mass()).Add(b.LinearVelocity().Scale(b.Mass()))
	}
	want := momentum()

	collided := false
	for i := 0; i < 300; i++ {
		w.Step(w.Config().TimeStep)
		if got := momentum(); !got.ApproxEqual(want, 1e-3) {
			t.Fatalf("step %d: momentum = %v, want %v", i, got, want)
		}
		for _, m := range w.Collisions() {
			collided = true
			if m.BodyA != a || m.BodyB != b {
				t.Errorf("manifold bodies out of order")
			}
			if m.Contacts.Count != 1 {
				t.Errorf("circle contacts = %d, want 1", m.Contacts.Count)
			}
			if !m.Collision.Normal.ApproxEqual(geom.NewVector2(-1, 0), 1e-9) {
				t.Errorf("normal = %v, want (-1, 0)", m.Collision.Normal)
			}
		}
	}
	if !collided {
		t.Fatal("bodies never collided")
	}

	// One-dimensional elastic collision between masses 1 and 3.
	if v := a.LinearVelocity(); !v.ApproxEqual(geom.NewVector2(-125, 0), 1e-6) {
		t.Errorf("a velocity = %v, want (-125, 0)", v)
	}
	if v := b.LinearVelocity(); !v.ApproxEqual(geom.NewVector2(25, 0), 1e-6) {
		t.Errorf("b velocity = %v, want (25, 0)", v)
	}
}

func TestWorld_RestingBodyFallsAsleep(t *testing.T) {
	w := NewWorld(DefaultConfig())
	ground := floor(t)

	props := DefaultBodyProps()
	props.Restitution = 0
	body := ball(t, geom.NewVector2(0, 90.5), 10, props)

	w.AddBody(ground).AddBody(body)

	dt := w.Config().TimeStep
	for i := 0; i < 1200; i++ {
		w.Step(dt)
	}
	if !body.IsSleeping() {
		t.Fatalf("resting body still awake, v = %v", body.LinearVelocity())
	}
	if w.Stats().Sleeping != 1 {
		t.Errorf("Stats().Sleeping = %d, want 1", w.Stats().Sleeping)
	}

	rest := body.Position()
	if math.Abs(rest.Y-90) > 1 {
		t.Errorf("body rests at %v, want y near 90", rest)
	}

	threshold := w.Config().Sleep.LinearThreshold
	for i := 0; i < 600; i++ {
		w.Step(dt)
		if v := body.LinearVelocity().MagnitudeSquared(); v >= threshold {
			t.Fatalf("step %d: squared speed %v above sleep threshold", i, v)
		}
	}
	if body.Position() != rest {
		t.Errorf("sleeping body moved from %v to %v", rest, body.Position())
	}
	if ground.Position() != geom.NewVector2(0, 110) {
		t.Errorf("static floor moved to %v", ground.Position())
	}
}

func TestWorld_FrictionSlowsSlidingBox(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sleep.Disabled = true
	w := NewWorld(cfg)

	props := DefaultBodyProps()
	props.Restitution = 0
	props.LinearVelocity = geom.NewVector2(200, 0)
	node := NewNode(geom.NewVector2(0, 90.05))
	box := kinematic(t, node, NewRectCollider(node, geom.NewVector2(20, 20)), props)

	w.AddBody(floor(t)).AddBody(box)
	for i := 0; i < 150; i++ {
		w.Step(cfg.TimeStep)
	}

	if vx := box.LinearVelocity().X; vx >= 190 || vx < 0 {
		t.Errorf("sliding velocity = %v, want slowed but not reversed", vx)
	}
	if y := node.Position().Y; y > 91 {
		t.Errorf("box sank through the floor to y = %v", y)
	}
}

func TestWorld_SkipsSleepingPairs(t *testing.T) {
	w := NewWorld(weightless())

	props := DefaultBodyProps()
	props.Sleeping = true
	a := ball(t, geom.Zero, 10, props)
	b := ball(t, geom.NewVector2(15, 0), 10, props)
	w.AddBody(a).AddBody(b)

	w.Step(w.Config().TimeStep)

	if n := len(w.Collisions()); n != 0 {
		t.Errorf("got %d collisions between sleeping bodies", n)
	}
	if s := w.Stats(); s.Pairs != 0 {
		t.Errorf("broad phase produced %d pairs", s.Pairs)
	}
	if a.Position() != geom.Zero || b.Position() != geom.NewVector2(15, 0) {
		t.Error("sleeping bodies moved")
	}
}

func TestWorld_CollisionWakesSleepingBody(t *testing.T) {
	w := NewWorld(weightless())

	props := DefaultBodyProps()
	props.Sleeping = true
	sleeper := ball(t, geom.Zero, 10, props)
	mover := ball(t, geom.NewVector2(15, 0), 10, DefaultBodyProps())
	w.AddBody(sleeper).AddBody(mover)

	w.Step(w.Config().TimeStep)

	if sleeper.IsSleeping() {
		t.Error("collision did not wake the sleeping body")
	}
	if n := len(w.Collisions()); n != 1 {
		t.Fatalf("got %d collisions, want 1", n)
	}
	// Half-depth separation leaves the circles touching.
	if d := sleeper.Position().Distance(mover.Position()); math.Abs(d-20) > 1e-9 {
		t.Errorf("distance after separation = %v, want 20", d)
	}
}

func TestWorld_BodyWithoutColliderWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = log.New(&buf, "", 0)
	w := NewWorld(cfg)

	node := NewNode(geom.Zero)
	b := kinematic(t, node, nil, DefaultBodyProps())
	w.AddBody(b).AddBody(floor(t))

	for i := 0; i < 5; i++ {
		w.Step(cfg.TimeStep)
	}

	if n := strings.Count(buf.String(), "has no collider"); n != 1 {
		t.Errorf("warning logged %d times, want 1", n)
	}
	if node.Position().Y <= 0 {
		t.Error("body without collider did not integrate")
	}
}

func TestWorld_RemovesBodiesOutsideBounds(t *testing.T) {
	var buf bytes.Buffer
	cfg := weightless()
	bounds := geom.NewAABB(geom.NewVector2(-100, -100), geom.NewVector2(100, 100))
	cfg.Bounds = &bounds
	cfg.Logger = log.New(&buf, "", 0)
	w := NewWorld(cfg)

	inside := ball(t, geom.Zero, 10, DefaultBodyProps())
	outside := ball(t, geom.NewVector2(500, 0), 10, DefaultBodyProps())
	wall := NewNode(geom.NewVector2(-500, 0))
	anchor := static(t, wall, NewCircleCollider(wall, 10))
	w.AddBody(inside).AddBody(outside).AddBody(anchor)

	w.Step(cfg.TimeStep)

	bodies := w.Bodies()
	if len(bodies) != 2 || bodies[0] != inside || bodies[1] != anchor {
		t.Errorf("bodies after bounds check = %v", bodies)
	}
	if s := w.Stats(); s.Removed != 1 || s.Bodies != 2 {
		t.Errorf("stats = %+v", s)
	}
	if !strings.Contains(buf.String(), "left world bounds") {
		t.Errorf("missing removal log, got %q", buf.String())
	}
}

func TestWorld_AddRemoveBody(t *testing.T) {
	w := NewWorld(weightless())
	b := ball(t, geom.Zero, 1, DefaultBodyProps())

	w.AddBody(b).AddBody(b).AddBody(nil)
	if n := len(w.Bodies()); n != 1 {
		t.Fatalf("got %d bodies, want 1", n)
	}
	if !w.RemoveBody(b) || w.RemoveBody(b) {
		t.Error("RemoveBody should succeed exactly once")
	}
}

func TestWorld_AdvanceTakesOneSubStep(t *testing.T) {
	w := NewWorld(weightless())
	ts := w.Config().TimeStep

	left := w.Advance(0.01)
	if math.Abs(left-(0.01-ts)) > epsilon {
		t.Errorf("remaining = %v, want %v", left, 0.01-ts)
	}
	if math.Abs(w.Time()-ts) > epsilon || w.Stats().Steps != 1 {
		t.Errorf("time = %v steps = %d", w.Time(), w.Stats().Steps)
	}

	if left := w.Advance(ts / 2); left != 0 {
		t.Errorf("short budget left %v", left)
	}
	if left := w.Advance(0); left != 0 || w.Stats().Steps != 2 {
		t.Error("empty budget should not step")
	}

	w.Step(1)
	if math.Abs(w.Time()-2.5*ts) > epsilon {
		t.Errorf("Step did not clamp to the time step: time = %v", w.Time())
	}
}

func TestWorld_GravityScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = geom.NewVector2(0, 2)
	cfg.GravityScale = 10
	if g := NewWorld(cfg).Gravity(); g != geom.NewVector2(0, 20) {
		t.Errorf("Gravity() = %v, want (0, 20)", g)
	}
}
