// Package geom holds the value types shared by the collision and physics
// packages: vectors, axis-aligned bounding boxes and node transforms.
package geom

import "math"

// Vector2 is an immutable 2D coordinate or direction.
type Vector2 struct {
	X, Y float64
}

// Zero is the origin.
var Zero = Vector2{}

func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Splat returns a vector with both components set to v.
func Splat(v float64) Vector2 {
	return Vector2{X: v, Y: v}
}

func (v1 Vector2) Add(v2 Vector2) Vector2 {
	return Vector2{X: v1.X + v2.X, Y: v1.Y + v2.Y}
}

func (v1 Vector2) Sub(v2 Vector2) Vector2 {
	return Vector2{X: v1.X - v2.X, Y: v1.Y - v2.Y}
}

func (v Vector2) Scale(factor float64) Vector2 {
	return Vector2{X: v.X * factor, Y: v.Y * factor}
}

// Mul multiplies component-wise.
func (v Vector2) Mul(other Vector2) Vector2 {
	return Vector2{X: v.X * other.X, Y: v.Y * other.Y}
}

func (v Vector2) Neg() Vector2 {
	return Vector2{X: -v.X, Y: -v.Y}
}

func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross is the z component of the 3D cross product of v and other.
func (v Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perpendicular rotates v by 90 degrees: (x, y) -> (-y, x).
func (v Vector2) Perpendicular() Vector2 {
	return Vector2{X: -v.Y, Y: v.X}
}

func (v Vector2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2) Normalize() Vector2 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector2{}
	}
	invMag := 1.0 / mag
	return Vector2{X: v.X * invMag, Y: v.Y * invMag}
}

func (v Vector2) Distance(other Vector2) float64 {
	return v.Sub(other).Magnitude()
}

func (v Vector2) DistanceSquared(other Vector2) float64 {
	return v.Sub(other).MagnitudeSquared()
}

func (v Vector2) Min(other Vector2) Vector2 {
	return Vector2{X: math.Min(v.X, other.X), Y: math.Min(v.Y, other.Y)}
}

func (v Vector2) Max(other Vector2) Vector2 {
	return Vector2{X: math.Max(v.X, other.X), Y: math.Max(v.Y, other.Y)}
}

// ApproxEqual reports whether both components differ by at most epsilon.
func (v Vector2) ApproxEqual(other Vector2, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon && math.Abs(v.Y-other.Y) <= epsilon
}
