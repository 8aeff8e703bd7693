package physics

import "github.com/0x5844/rigid2d/geom"

// Node is the host scene-graph handle that stores a body's transform. The
// World reads and writes it as plain mutable state.
type Node interface {
	Position() geom.Vector2
	SetPosition(geom.Vector2)
	Rotation() float64
	SetRotation(float64)
	Scale() geom.Vector2
}

// Sized is visible geometry a collider can infer its extent from.
type Sized interface {
	Size() geom.Vector2
}

// BasicNode is a Node backed by plain fields, for hosts without a scene
// graph of their own.
type BasicNode struct {
	transform geom.Transform
	size      geom.Vector2
}

func NewNode(position geom.Vector2) *BasicNode {
	t := geom.Identity()
	t.Position = position
	return &BasicNode{transform: t}
}

func (n *BasicNode) Position() geom.Vector2 {
	return n.transform.Position
}

func (n *BasicNode) SetPosition(p geom.Vector2) {
	n.transform.Position = p
}

func (n *BasicNode) Rotation() float64 {
	return n.transform.Rotation
}

func (n *BasicNode) SetRotation(r float64) {
	n.transform.Rotation = r
}

func (n *BasicNode) Scale() geom.Vector2 {
	return n.transform.Scale
}

func (n *BasicNode) SetScale(s geom.Vector2) *BasicNode {
	n.transform.Scale = s
	return n
}

func (n *BasicNode) Size() geom.Vector2 {
	return n.size
}

func (n *BasicNode) SetSize(s geom.Vector2) *BasicNode {
	n.size = s
	return n
}

func localToWorld(n Node) geom.Transform {
	return geom.Transform{
		Position: n.Position(),
		Rotation: n.Rotation(),
		Scale:    n.Scale(),
	}
}
