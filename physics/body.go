package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/0x5844/rigid2d/collision"
	"github.com/0x5844/rigid2d/geom"
)

var (
	ErrInvalidMass = errors.New("physics: kinematic body mass must be positive")
	ErrNilNode     = errors.New("physics: body has no node")
)

type Kind int

const (
	Static Kind = iota
	Kinematic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BodyProps are the construction options of a body. Velocities and Sleeping
// only apply to kinematic bodies.
type BodyProps struct {
	Name            string
	Mass            float64
	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64
	LinearVelocity  geom.Vector2
	AngularVelocity float64
	Sleeping        bool
}

func DefaultBodyProps() BodyProps {
	return BodyProps{
		Mass:            1,
		Restitution:     1,
		StaticFriction:  0.5,
		DynamicFriction: 0.4,
	}
}

// SleepConfig controls when a resting kinematic body is put to sleep. A body
// whose squared linear speed stays below LinearThreshold and whose angular
// speed stays below AngularThreshold for Time seconds falls asleep.
type SleepConfig struct {
	LinearThreshold  float64
	AngularThreshold float64
	Time             float64
	Disabled         bool
}

func DefaultSleepConfig() SleepConfig {
	return SleepConfig{
		LinearThreshold:  300,
		AngularThreshold: 0.01,
		Time:             0.5,
	}
}

type motion struct {
	linearVelocity  geom.Vector2
	angularVelocity float64
	force           geom.Vector2
	sleeping        bool
	restTime        float64
}

// Body couples a host node with a collider and the material and kinetic
// state the World needs. Static bodies never move and report as sleeping.
type Body struct {
	name     string
	kind     Kind
	node     Node
	collider NodeCollider

	mass            float64
	restitution     float64
	staticFriction  float64
	dynamicFriction float64

	motion motion
}

func NewStaticBody(node Node, collider NodeCollider, props BodyProps) (*Body, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	return &Body{
		name:            props.Name,
		kind:            Static,
		node:            node,
		collider:        collider,
		mass:            props.Mass,
		restitution:     props.Restitution,
		staticFriction:  props.StaticFriction,
		dynamicFriction: props.DynamicFriction,
	}, nil
}

func NewKinematicBody(node Node, collider NodeCollider, props BodyProps) (*Body, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if props.Mass <= 0 || math.IsNaN(props.Mass) || math.IsInf(props.Mass, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMass, props.Mass)
	}
	return &Body{
		name:            props.Name,
		kind:            Kinematic,
		node:            node,
		collider:        collider,
		mass:            props.Mass,
		restitution:     props.Restitution,
		staticFriction:  props.StaticFriction,
		dynamicFriction: props.DynamicFriction,
		motion: motion{
			linearVelocity:  props.LinearVelocity,
			angularVelocity: props.AngularVelocity,
			sleeping:        props.Sleeping,
		},
	}, nil
}

func (b *Body) Name() string {
	return b.name
}

func (b *Body) Kind() Kind {
	return b.kind
}

func (b *Body) IsStatic() bool {
	return b.kind == Static
}

func (b *Body) Node() Node {
	return b.node
}

func (b *Body) Collider() NodeCollider {
	return b.collider
}

func (b *Body) SetCollider(c NodeCollider) *Body {
	b.collider = c
	return b
}

func (b *Body) Position() geom.Vector2 {
	return b.node.Position()
}

func (b *Body) Rotation() float64 {
	return b.node.Rotation()
}

func (b *Body) Mass() float64 {
	return b.mass
}

func (b *Body) Restitution() float64 {
	return b.restitution
}

func (b *Body) SetRestitution(e float64) *Body {
	b.restitution = e
	return b
}

func (b *Body) StaticFriction() float64 {
	return b.staticFriction
}

func (b *Body) DynamicFriction() float64 {
	return b.dynamicFriction
}

func (b *Body) SetFriction(static, dynamic float64) *Body {
	b.staticFriction = static
	b.dynamicFriction = dynamic
	return b
}

// InverseMass is 1/mass for kinematic bodies and 0 for static ones.
func (b *Body) InverseMass() float64 {
	if b.kind != Kinematic {
		return 0
	}
	return 1 / b.mass
}

// RotationalInertia is derived from the collider's current shape: a
// rectangle approximation over the vertex AABB for polygons and a solid disc
// for circles. Bodies without a collider have no rotational inertia.
func (b *Body) RotationalInertia() float64 {
	if b.collider == nil {
		return 0
	}
	return rotationalInertia(b.mass, b.collider.Shape())
}

func (b *Body) InverseRotationalInertia() float64 {
	if b.kind != Kinematic || b.collider == nil {
		return 0
	}
	return inverseInertia(b.mass, b.collider.Shape())
}

func rotationalInertia(mass float64, shape collision.Collider) float64 {
	switch shape.Kind {
	case collision.KindPolygon:
		w, h := shape.AABB.Width(), shape.AABB.Height()
		return mass * (w*w + h*h) / 12
	case collision.KindCircle:
		return 0.5 * mass * shape.Radius * shape.Radius
	default:
		return 0
	}
}

func inverseInertia(mass float64, shape collision.Collider) float64 {
	inertia := rotationalInertia(mass, shape)
	if inertia == 0 {
		return 0
	}
	return 1 / inertia
}

func (b *Body) LinearVelocity() geom.Vector2 {
	return b.motion.linearVelocity
}

func (b *Body) SetLinearVelocity(v geom.Vector2) *Body {
	if b.kind == Kinematic {
		b.motion.linearVelocity = v
	}
	return b
}

func (b *Body) AngularVelocity() float64 {
	return b.motion.angularVelocity
}

func (b *Body) SetAngularVelocity(w float64) *Body {
	if b.kind == Kinematic {
		b.motion.angularVelocity = w
	}
	return b
}

// ApplyForce accumulates f for the next integration and wakes the body.
func (b *Body) ApplyForce(f geom.Vector2) *Body {
	if b.kind != Kinematic {
		return b
	}
	b.motion.force = b.motion.force.Add(f)
	b.Wake()
	return b
}

func (b *Body) Force() geom.Vector2 {
	return b.motion.force
}

func (b *Body) IsSleeping() bool {
	return b.kind == Static || b.motion.sleeping
}

// Wake clears the sleeping flag. The rest timer only restarts when the body
// was actually asleep, so resting contact does not keep a body awake.
func (b *Body) Wake() {
	if b.kind != Kinematic || !b.motion.sleeping {
		return
	}
	b.motion.sleeping = false
	b.motion.restTime = 0
}

func (b *Body) Sleep() {
	if b.kind != Kinematic {
		return
	}
	b.motion.sleeping = true
	b.motion.linearVelocity = geom.Zero
	b.motion.angularVelocity = 0
	b.motion.force = geom.Zero
}

// Tick integrates one step with semi-implicit Euler using the default sleep
// configuration. Static and sleeping bodies are unchanged.
func (b *Body) Tick(dt float64, gravity geom.Vector2) {
	b.tick(dt, gravity, DefaultSleepConfig())
}

func (b *Body) tick(dt float64, gravity geom.Vector2, sleep SleepConfig) {
	if b.kind != Kinematic || b.motion.sleeping {
		return
	}

	m := &b.motion
	m.force = m.force.Add(gravity.Scale(b.mass))
	acceleration := m.force.Scale(1 / b.mass)
	m.linearVelocity = m.linearVelocity.Add(acceleration.Scale(dt))

	b.node.SetPosition(b.node.Position().Add(m.linearVelocity.Scale(dt)))
	b.node.SetRotation(b.node.Rotation() + m.angularVelocity*dt)

	m.force = geom.Zero
	b.updateSleepState(dt, sleep)
}

func (b *Body) updateSleepState(dt float64, sleep SleepConfig) {
	if sleep.Disabled {
		return
	}

	m := &b.motion
	if m.linearVelocity.MagnitudeSquared() < sleep.LinearThreshold &&
		math.Abs(m.angularVelocity) < sleep.AngularThreshold {
		m.restTime += dt
		if m.restTime >= sleep.Time {
			b.Sleep()
		}
	} else {
		m.restTime = 0
	}
}

func (b *Body) translate(delta geom.Vector2) {
	b.node.SetPosition(b.node.Position().Add(delta))
}

func (b *Body) applyImpulse(impulse, r geom.Vector2, invInertia float64) {
	if b.kind != Kinematic {
		return
	}
	b.motion.linearVelocity = b.motion.linearVelocity.Add(impulse.Scale(1 / b.mass))
	b.motion.angularVelocity += r.Cross(impulse) * invInertia
}

func (b *Body) String() string {
	if b.name != "" {
		return fmt.Sprintf("%s body %q", b.kind, b.name)
	}
	return fmt.Sprintf("%s body at %.2f,%.2f", b.kind, b.Position().X, b.Position().Y)
}
