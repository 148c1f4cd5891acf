// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3-component vector in scene coordinates.
type Vec3 = r3.Vec

// NewVec3 creates a new Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Lerp linearly interpolates between a and b by t.
// t=0 yields a, t=1 yields b; t outside [0,1] extrapolates.
func Lerp(a, b Vec3, t float64) Vec3 {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// LerpScalar linearly interpolates between two scalars by t.
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Pose is a camera pose: an eye position looking at a target.
type Pose struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

// LerpPose interpolates both components of a pose by t.
func LerpPose(a, b Pose, t float64) Pose {
	return Pose{
		Position: Lerp(a.Position, b.Position, t),
		Target:   Lerp(a.Target, b.Target, t),
	}
}

// Ray is a half-line in scene coordinates with a normalized direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// IntersectSphere returns the smallest positive ray parameter at which the
// ray enters a sphere, or -1 if the ray misses it entirely.
func (r Ray) IntersectSphere(center Vec3, radius float64) float64 {
	oc := r3.Sub(r.Origin, center)
	b := r3.Dot(oc, r.Direction)
	c := r3.Dot(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return -1
	}
	sqrtDisc := math.Sqrt(disc)
	t := -b - sqrtDisc
	if t < 0 {
		t = -b + sqrtDisc
	}
	if t < 0 {
		return -1
	}
	return t
}

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
