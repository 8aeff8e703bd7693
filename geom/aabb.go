package geom

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector2
}

func NewAABB(min, max Vector2) AABB {
	return AABB{Min: min, Max: max}
}

// AABBFromPoints returns the smallest box containing every point. It returns
// the zero box for an empty slice.
func AABBFromPoints(points ...Vector2) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// Intersects is true unless the boxes are separated on either axis. Boxes
// that merely touch along an edge or at a corner do not intersect.
func (aabb AABB) Intersects(other AABB) bool {
	return !(aabb.Max.X <= other.Min.X ||
		other.Max.X <= aabb.Min.X ||
		aabb.Max.Y <= other.Min.Y ||
		other.Max.Y <= aabb.Min.Y)
}

func (aabb AABB) Contains(point Vector2) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y
}

func (aabb AABB) Width() float64 {
	return aabb.Max.X - aabb.Min.X
}

func (aabb AABB) Height() float64 {
	return aabb.Max.Y - aabb.Min.Y
}

func (aabb AABB) Area() float64 {
	return aabb.Width() * aabb.Height()
}

func (aabb AABB) Center() Vector2 {
	return Vector2{
		X: (aabb.Min.X + aabb.Max.X) * 0.5,
		Y: (aabb.Min.Y + aabb.Max.Y) * 0.5,
	}
}

// Expand grows the box by margin on every side. A negative margin shrinks it.
func (aabb AABB) Expand(margin float64) AABB {
	return AABB{
		Min: Vector2{X: aabb.Min.X - margin, Y: aabb.Min.Y - margin},
		Max: Vector2{X: aabb.Max.X + margin, Y: aabb.Max.Y + margin},
	}
}

// Corners returns the four corners in order: top-left, top-right,
// bottom-right, bottom-left (in a y-down frame).
func (aabb AABB) Corners() [4]Vector2 {
	return [4]Vector2{
		{X: aabb.Min.X, Y: aabb.Min.Y},
		{X: aabb.Max.X, Y: aabb.Min.Y},
		{X: aabb.Max.X, Y: aabb.Max.Y},
		{X: aabb.Min.X, Y: aabb.Max.Y},
	}
}
