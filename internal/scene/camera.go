// Package scene provides the viewer camera: look-at pose, screen projection,
// pointer rays, and eased pose transitions. The mesh/material side of the
// scene lives in the rendering widget; this package is headless and fully
// testable.
package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"thermal-scene/pkg/geometry"
)

const (
	// nearClip rejects projections at or behind the eye plane.
	nearClip = 0.01

	// pitch is kept off the poles so the look-at basis stays well defined.
	maxPitch = math.Pi/2 - 0.05
	minPitch = -maxPitch

	minDolly = 1.0
	maxDolly = 500.0
)

var worldUp = geometry.NewVec3(0, 1, 0)

// Camera is a perspective look-at camera. FOVY is the vertical field of view
// in radians.
type Camera struct {
	Pose geometry.Pose
	FOVY float64
}

// NewCamera creates a camera at the default home pose.
func NewCamera() *Camera {
	return &Camera{
		Pose: geometry.Pose{
			Position: geometry.NewVec3(0, 40, 60),
			Target:   geometry.NewVec3(0, 0, 0),
		},
		FOVY: 50 * math.Pi / 180,
	}
}

// basis returns the camera's right/up/forward axes.
func (c *Camera) basis() (right, up, forward geometry.Vec3) {
	forward = r3.Unit(r3.Sub(c.Pose.Target, c.Pose.Position))
	right = r3.Unit(r3.Cross(forward, worldUp))
	up = r3.Cross(right, forward)
	return
}

// Project maps a scene point to screen coordinates for a viewport of the
// given pixel size. Returns the screen position, the camera-space depth, and
// whether the point is in front of the near plane.
func (c *Camera) Project(p geometry.Vec3, width, height float64) (geometry.Point2D, float64, bool) {
	right, up, forward := c.basis()
	d := r3.Sub(p, c.Pose.Position)

	z := r3.Dot(d, forward)
	if z <= nearClip {
		return geometry.Point2D{}, z, false
	}

	tanY := math.Tan(c.FOVY / 2)
	tanX := tanY * width / height

	sx := r3.Dot(d, right) / (z * tanX)
	sy := r3.Dot(d, up) / (z * tanY)

	return geometry.Point2D{
		X: (sx*0.5 + 0.5) * width,
		Y: (0.5 - sy*0.5) * height,
	}, z, true
}

// ScreenRay returns the scene-space ray under a screen position, for
// hit-testing markers against the pointer.
func (c *Camera) ScreenRay(px, py, width, height float64) geometry.Ray {
	right, up, forward := c.basis()

	tanY := math.Tan(c.FOVY / 2)
	tanX := tanY * width / height

	sx := (2*px/width - 1) * tanX
	sy := (1 - 2*py/height) * tanY

	dir := r3.Add(forward, r3.Add(r3.Scale(sx, right), r3.Scale(sy, up)))
	return geometry.Ray{Origin: c.Pose.Position, Direction: r3.Unit(dir)}
}

// Orbit rotates the eye around the target: yaw about the world up axis and
// clamped pitch, in radians. Free navigation stays available regardless of
// the interaction gate, so the canvas drives this directly.
func (c *Camera) Orbit(yaw, pitch float64) {
	offset := r3.Sub(c.Pose.Position, c.Pose.Target)
	radius := r3.Norm(offset)
	if radius < 1e-9 {
		return
	}

	curYaw := math.Atan2(offset.X, offset.Z)
	curPitch := math.Asin(geometry.Clamp(offset.Y/radius, -1, 1))

	newYaw := curYaw + yaw
	newPitch := geometry.Clamp(curPitch+pitch, minPitch, maxPitch)

	horiz := radius * math.Cos(newPitch)
	c.Pose.Position = r3.Add(c.Pose.Target, geometry.NewVec3(
		horiz*math.Sin(newYaw),
		radius*math.Sin(newPitch),
		horiz*math.Cos(newYaw),
	))
}

// Dolly moves the eye along the view direction by the given factor (>1 moves
// away, <1 moves closer), clamped so the eye never crosses the target.
func (c *Camera) Dolly(factor float64) {
	offset := r3.Sub(c.Pose.Position, c.Pose.Target)
	radius := geometry.Clamp(r3.Norm(offset)*factor, minDolly, maxDolly)
	c.Pose.Position = r3.Add(c.Pose.Target, r3.Scale(radius, r3.Unit(offset)))
}
