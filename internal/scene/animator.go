package scene

import (
	"time"

	"thermal-scene/pkg/geometry"
)

// DefaultFlightDuration is used when a transition is requested without an
// explicit duration.
const DefaultFlightDuration = 900 * time.Millisecond

// flight is one in-progress camera transition.
type flight struct {
	from     geometry.Pose
	to       geometry.Pose
	start    time.Time
	duration time.Duration
}

// Animator eases the camera between poses. A new AnimateTo supersedes any
// in-flight transition: the old flight is dropped and never touches the
// camera again (last call wins, no queueing).
type Animator struct {
	cam    *Camera
	flight *flight
}

// NewAnimator creates an animator driving the given camera.
func NewAnimator(cam *Camera) *Animator {
	return &Animator{cam: cam}
}

// AnimateTo starts a transition from the camera's current pose, captured at
// call time, to the destination.
func (a *Animator) AnimateTo(to geometry.Pose, duration time.Duration, now time.Time) {
	if duration <= 0 {
		duration = DefaultFlightDuration
	}
	a.flight = &flight{
		from:     a.cam.Pose,
		to:       to,
		start:    now,
		duration: duration,
	}
}

// Animating reports whether a transition is in flight.
func (a *Animator) Animating() bool {
	return a.flight != nil
}

// Tick advances the active transition and applies the eased pose to the
// camera. Returns false once there is nothing left to animate.
func (a *Animator) Tick(now time.Time) bool {
	f := a.flight
	if f == nil {
		return false
	}

	t := geometry.Clamp(now.Sub(f.start).Seconds()/f.duration.Seconds(), 0, 1)
	a.cam.Pose = geometry.LerpPose(f.from, f.to, easeInOutCubic(t))

	if t >= 1 {
		a.flight = nil
		return false
	}
	return true
}

// Stop drops the active transition, leaving the camera wherever the last
// tick put it.
func (a *Animator) Stop() {
	a.flight = nil
}

// easeInOutCubic is the standard cubic ease:
// t<0.5 -> 4t^3, else 1-(-2t+2)^3/2.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
