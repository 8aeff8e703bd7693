package collision

import (
	"math"

	"github.com/0x5844/rigid2d/geom"
)

// CollisionData describes an overlap. Normal is a unit vector pointing from
// collider B toward collider A; Depth is strictly positive.
type CollisionData struct {
	Normal geom.Vector2
	Depth  float64
}

// Intersect tests a against b. The returned normal points from b toward a
// whatever the shape combination.
func Intersect(a, b Collider) (CollisionData, bool) {
	switch {
	case a.IsCircle() && b.IsCircle():
		return IntersectCircles(a, b)
	case a.IsCircle() && b.IsPolygon():
		return IntersectCirclePolygon(a, b)
	case a.IsPolygon() && b.IsCircle():
		data, ok := IntersectCirclePolygon(b, a)
		if ok {
			data.Normal = data.Normal.Neg()
		}
		return data, ok
	case a.IsPolygon() && b.IsPolygon():
		return IntersectPolygons(a, b)
	}
	return CollisionData{}, false
}

func IntersectCircles(circleA, circleB Collider) (CollisionData, bool) {
	direction := circleA.Center.Sub(circleB.Center)
	distance := direction.Magnitude()
	radii := circleA.Radius + circleB.Radius

	if distance >= radii {
		return CollisionData{}, false
	}

	normal := geom.NewVector2(1, 0)
	if distance > 0 {
		normal = direction.Scale(1 / distance)
	}

	return CollisionData{Normal: normal, Depth: radii - distance}, true
}

// IntersectPolygons runs SAT over the edge normals of both polygons and
// keeps the axis of least overlap.
func IntersectPolygons(polygonA, polygonB Collider) (CollisionData, bool) {
	normal := geom.Zero
	depth := math.Inf(1)

	for _, pair := range [2][2]Collider{{polygonA, polygonB}, {polygonB, polygonA}} {
		a, b := pair[0], pair[1]
		for i := range a.Vertices {
			axis, ok := edgeAxis(a.Vertices, i)
			if !ok {
				continue
			}

			minA, maxA := projectVertices(a.Vertices, axis)
			minB, maxB := projectVertices(b.Vertices, axis)
			if minA >= maxB || minB >= maxA {
				return CollisionData{}, false
			}

			if axisDepth := math.Min(maxB-minA, maxA-minB); axisDepth < depth {
				depth = axisDepth
				normal = axis
			}
		}
	}

	if math.IsInf(depth, 1) {
		return CollisionData{}, false
	}

	if polygonA.Center.Sub(polygonB.Center).Dot(normal) < 0 {
		normal = normal.Neg()
	}

	return CollisionData{Normal: normal, Depth: depth}, true
}

// IntersectCirclePolygon tests a circle (A) against a polygon (B). Besides
// the polygon's edge normals it tests the axis toward the polygon vertex
// nearest the circle centre. The normal points from the polygon toward the
// circle.
func IntersectCirclePolygon(circle, polygon Collider) (CollisionData, bool) {
	normal := geom.Zero
	depth := math.Inf(1)

	test := func(axis geom.Vector2) bool {
		minA, maxA := projectVertices(polygon.Vertices, axis)
		minB, maxB := projectCircle(circle, axis)
		if minA >= maxB || minB >= maxA {
			return false
		}
		if axisDepth := math.Min(maxB-minA, maxA-minB); axisDepth < depth {
			depth = axisDepth
			normal = axis
		}
		return true
	}

	for i := range polygon.Vertices {
		axis, ok := edgeAxis(polygon.Vertices, i)
		if !ok {
			continue
		}
		if !test(axis) {
			return CollisionData{}, false
		}
	}

	closest := closestVertex(circle.Center, polygon.Vertices)
	if axis := closest.Sub(circle.Center).Normalize(); axis != geom.Zero {
		if !test(axis) {
			return CollisionData{}, false
		}
	}

	if math.IsInf(depth, 1) {
		return CollisionData{}, false
	}

	if circle.Center.Sub(polygon.Center).Dot(normal) < 0 {
		normal = normal.Neg()
	}

	return CollisionData{Normal: normal, Depth: depth}, true
}

// edgeAxis returns the unit normal of the edge starting at vertex i. Zero
// length edges have no axis.
func edgeAxis(vertices []geom.Vector2, i int) (geom.Vector2, bool) {
	va := vertices[i]
	vb := vertices[(i+1)%len(vertices)]
	axis := vb.Sub(va).Perpendicular().Normalize()
	return axis, axis != geom.Zero
}

func projectVertices(vertices []geom.Vector2, axis geom.Vector2) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range vertices {
		projection := axis.Dot(v)
		if projection < min {
			min = projection
		}
		if projection > max {
			max = projection
		}
	}
	return min, max
}

func projectCircle(circle Collider, axis geom.Vector2) (min, max float64) {
	offset := axis.Scale(circle.Radius)
	min = circle.Center.Add(offset).Dot(axis)
	max = circle.Center.Sub(offset).Dot(axis)
	if min > max {
		min, max = max, min
	}
	return min, max
}

func closestVertex(point geom.Vector2, vertices []geom.Vector2) geom.Vector2 {
	var result geom.Vector2
	minDistance := math.Inf(1)
	for _, v := range vertices {
		if d := v.DistanceSquared(point); d < minDistance {
			minDistance = d
			result = v
		}
	}
	return result
}
