package physics

import (
	"math"

	"github.com/0x5844/rigid2d/collision"
	"github.com/0x5844/rigid2d/geom"
)

const (
	restingVelocity = 1e-6
	tangentEpsilon  = 1e-12
)

// solverScratch holds per-contact intermediates for one manifold. It is owned
// by the World and reused across manifolds.
type solverScratch struct {
	ra, rb           [collision.MaxContacts]geom.Vector2
	normalImpulse    [collision.MaxContacts]float64
	impulses         [collision.MaxContacts]geom.Vector2
	frictionImpulses [collision.MaxContacts]geom.Vector2
}

func (s *solverScratch) reset() {
	*s = solverScratch{}
}

func mixFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

func relativeVelocity(a, b *Body, ra, rb geom.Vector2) geom.Vector2 {
	va := a.motion.linearVelocity.Add(ra.Perpendicular().Scale(a.motion.angularVelocity))
	vb := b.motion.linearVelocity.Add(rb.Perpendicular().Scale(b.motion.angularVelocity))
	return va.Sub(vb)
}

// resolve applies normal then friction impulses for m. shapeA and shapeB are
// the post-separation shapes the contacts were computed from. Impulses are
// shared evenly among the approaching contacts only.
func (s *solverScratch) resolve(m *Manifold, shapeA, shapeB collision.Collider) {
	s.reset()

	a, b := m.BodyA, m.BodyB
	count := m.Contacts.Count
	if count == 0 {
		return
	}
	normal := m.Collision.Normal

	e := math.Min(a.restitution, b.restitution)
	staticFriction := mixFriction(a.staticFriction, b.staticFriction)
	dynamicFriction := mixFriction(a.dynamicFriction, b.dynamicFriction)

	invMassA, invMassB := a.InverseMass(), b.InverseMass()
	var invInertiaA, invInertiaB float64
	if a.kind == Kinematic {
		invInertiaA = inverseInertia(a.mass, shapeA)
	}
	if b.kind == Kinematic {
		invInertiaB = inverseInertia(b.mass, shapeB)
	}

	active := 0
	for i := 0; i < count; i++ {
		contact := m.Contacts.Points[i]
		s.ra[i] = contact.Sub(shapeA.Center)
		s.rb[i] = contact.Sub(shapeB.Center)

		contactVelocity := relativeVelocity(a, b, s.ra[i], s.rb[i]).Dot(normal)
		if contactVelocity > -restingVelocity {
			continue
		}

		raPerpN := s.ra[i].Perpendicular().Dot(normal)
		rbPerpN := s.rb[i].Perpendicular().Dot(normal)
		denom := invMassA + invMassB + raPerpN*raPerpN*invInertiaA + rbPerpN*rbPerpN*invInertiaB
		if denom == 0 {
			continue
		}

		// Unscaled until the number of approaching contacts is known.
		s.normalImpulse[i] = -(1 + e) * contactVelocity / denom
		active++
	}
	if active == 0 {
		return
	}

	for i := 0; i < count; i++ {
		if s.normalImpulse[i] == 0 {
			continue
		}
		s.normalImpulse[i] /= float64(active)
		s.impulses[i] = normal.Scale(s.normalImpulse[i])
	}

	for i := 0; i < count; i++ {
		a.applyImpulse(s.impulses[i], s.ra[i], invInertiaA)
		b.applyImpulse(s.impulses[i].Neg(), s.rb[i], invInertiaB)
	}

	for i := 0; i < count; i++ {
		if s.normalImpulse[i] == 0 {
			continue
		}

		rv := relativeVelocity(a, b, s.ra[i], s.rb[i])
		tangent := rv.Sub(normal.Scale(rv.Dot(normal)))
		if tangent.MagnitudeSquared() < tangentEpsilon {
			continue
		}
		tangent = tangent.Normalize()

		raPerpT := s.ra[i].Perpendicular().Dot(tangent)
		rbPerpT := s.rb[i].Perpendicular().Dot(tangent)
		denom := invMassA + invMassB + raPerpT*raPerpT*invInertiaA + rbPerpT*rbPerpT*invInertiaB
		if denom == 0 {
			continue
		}

		jt := -rv.Dot(tangent) / denom / float64(active)
		j := s.normalImpulse[i]
		if math.Abs(jt) <= j*staticFriction {
			s.frictionImpulses[i] = tangent.Scale(jt)
		} else {
			s.frictionImpulses[i] = tangent.Scale(-j * dynamicFriction)
		}
	}

	for i := 0; i < count; i++ {
		a.applyImpulse(s.frictionImpulses[i], s.ra[i], invInertiaA)
		b.applyImpulse(s.frictionImpulses[i].Neg(), s.rb[i], invInertiaB)
	}
}
