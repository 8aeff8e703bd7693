// Package collision implements narrow-phase intersection tests and contact
// point generation for circles and convex polygons using the separating axis
// theorem.
package collision

import (
	"fmt"

	"github.com/0x5844/rigid2d/geom"
)

// Kind tags the shape stored in a Collider.
type Kind int

const (
	KindCircle Kind = iota
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Collider is world-space geometry. Radius is only meaningful for circles
// and Vertices only for polygons. AABB always bounds the shape in the same
// space as Center and Vertices.
type Collider struct {
	Kind     Kind
	Center   geom.Vector2
	Radius   float64
	Vertices []geom.Vector2
	AABB     geom.AABB
}

func NewCircle(center geom.Vector2, radius float64) Collider {
	r := geom.Splat(radius)
	return Collider{
		Kind:   KindCircle,
		Center: center,
		Radius: radius,
		AABB:   geom.NewAABB(center.Sub(r), center.Add(r)),
	}
}

// NewPolygon builds a polygon collider from ordered, convex, world-space
// vertices. The slice is retained, not copied.
func NewPolygon(vertices []geom.Vector2, center geom.Vector2) Collider {
	return Collider{
		Kind:     KindPolygon,
		Center:   center,
		Vertices: vertices,
		AABB:     geom.AABBFromPoints(vertices...),
	}
}

func (c Collider) IsCircle() bool {
	return c.Kind == KindCircle
}

func (c Collider) IsPolygon() bool {
	return c.Kind == KindPolygon
}
