package collision

import (
	"math"

	"github.com/0x5844/rigid2d/geom"
)

// MaxContacts is the largest number of points a manifold carries.
const MaxContacts = 2

// contactTolerance decides when two squared distances, or two points, are
// the same for face contacts.
const contactTolerance = 0.01

// Contacts holds one or two world-space contact points.
type Contacts struct {
	Points [MaxContacts]geom.Vector2
	Count  int
}

func (c Contacts) Slice() []geom.Vector2 {
	return c.Points[:c.Count]
}

func (c *Contacts) add(p geom.Vector2) {
	if c.Count < MaxContacts {
		c.Points[c.Count] = p
		c.Count++
	}
}

// FindContactPoints returns where a and b touch. Circles always produce one
// point; two polygons produce two when an edge lies against an edge.
func FindContactPoints(a, b Collider) Contacts {
	var contacts Contacts
	switch {
	case a.IsCircle() && b.IsCircle():
		contacts.add(circlesContactPoint(a, b))
	case a.IsCircle() && b.IsPolygon():
		contacts.add(circlePolygonContactPoint(a, b))
	case a.IsPolygon() && b.IsCircle():
		contacts.add(circlePolygonContactPoint(b, a))
	case a.IsPolygon() && b.IsPolygon():
		contacts = polygonsContactPoints(a, b)
	}
	return contacts
}

func circlesContactPoint(circleA, circleB Collider) geom.Vector2 {
	direction := circleB.Center.Sub(circleA.Center).Normalize()
	return circleA.Center.Add(direction.Scale(circleA.Radius))
}

// circlePolygonContactPoint is the point on the polygon boundary closest to
// the circle centre.
func circlePolygonContactPoint(circle, polygon Collider) geom.Vector2 {
	var point geom.Vector2
	closest := math.Inf(1)

	n := len(polygon.Vertices)
	for i := 0; i < n; i++ {
		a := polygon.Vertices[i]
		b := polygon.Vertices[(i+1)%n]

		p, distanceSquared := PointSegmentDistance(circle.Center, a, b)
		if distanceSquared < closest {
			point = p
			closest = distanceSquared
		}
	}

	return point
}

func polygonsContactPoints(polygonA, polygonB Collider) Contacts {
	var (
		contact1, contact2 geom.Vector2
		hasSecond          bool
	)
	minDistanceSquared := math.Inf(1)

	for _, pair := range [2][2]Collider{{polygonA, polygonB}, {polygonB, polygonA}} {
		a, b := pair[0], pair[1]
		n := len(b.Vertices)
		for _, p := range a.Vertices {
			for j := 0; j < n; j++ {
				closest, distanceSquared := PointSegmentDistance(p, b.Vertices[j], b.Vertices[(j+1)%n])

				if math.Abs(distanceSquared-minDistanceSquared) <= contactTolerance {
					if !closest.ApproxEqual(contact1, contactTolerance) {
						contact2 = closest
						hasSecond = true
					}
				} else if distanceSquared < minDistanceSquared {
					minDistanceSquared = distanceSquared
					contact1 = closest
					hasSecond = false
				}
			}
		}
	}

	var contacts Contacts
	if math.IsInf(minDistanceSquared, 1) {
		return contacts
	}
	contacts.add(contact1)
	if hasSecond {
		contacts.add(contact2)
	}
	return contacts
}

// PointSegmentDistance projects p onto segment ab, clamped to its ends, and
// returns the closest point with its squared distance to p.
func PointSegmentDistance(p, a, b geom.Vector2) (closest geom.Vector2, distanceSquared float64) {
	ab := b.Sub(a)
	abLengthSquared := ab.MagnitudeSquared()

	switch {
	case abLengthSquared == 0:
		closest = a
	default:
		t := p.Sub(a).Dot(ab) / abLengthSquared
		switch {
		case t <= 0:
			closest = a
		case t >= 1:
			closest = b
		default:
			closest = a.Add(ab.Scale(t))
		}
	}

	return closest, p.DistanceSquared(closest)
}
