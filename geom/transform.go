package geom

import "github.com/go-gl/mathgl/mgl64"

// Transform places local geometry in world space. Rotation is in radians;
// positive rotation turns +X toward +Y.
type Transform struct {
	Position Vector2
	Rotation float64
	Scale    Vector2
}

// Identity is the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: Splat(1)}
}

func NewTransform(position Vector2, rotation float64) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: Splat(1)}
}

// Matrix returns the homogeneous local-to-world matrix: scale, then rotate,
// then translate.
func (t Transform) Matrix() mgl64.Mat3 {
	return mgl64.Translate2D(t.Position.X, t.Position.Y).
		Mul3(mgl64.HomogRotate2D(t.Rotation)).
		Mul3(mgl64.Scale2D(t.Scale.X, t.Scale.Y))
}

// Apply maps a local point into world space.
func (t Transform) Apply(point Vector2) Vector2 {
	return TransformPoint(t.Matrix(), point)
}

// ApplyAll maps every point through the same matrix.
func (t Transform) ApplyAll(points []Vector2) []Vector2 {
	m := t.Matrix()
	out := make([]Vector2, len(points))
	for i, p := range points {
		out[i] = TransformPoint(m, p)
	}
	return out
}

func TransformPoint(m mgl64.Mat3, point Vector2) Vector2 {
	v := m.Mul3x1(mgl64.Vec3{point.X, point.Y, 1})
	return Vector2{X: v[0], Y: v[1]}
}
