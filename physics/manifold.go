package physics

import "github.com/0x5844/rigid2d/collision"

// Manifold is one resolved collision of a sub-step. Collision.Normal points
// from BodyB toward BodyA.
type Manifold struct {
	BodyA, BodyB *Body
	Collision    collision.CollisionData
	Contacts     collision.Contacts
}
