package scene

import (
	"math"
	"testing"
	"time"

	"thermal-scene/pkg/geometry"
)

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.25, 4 * 0.25 * 0.25 * 0.25},
		{0.5, 0.5},
		{0.75, 1 - math.Pow(-2*0.75+2, 3)/2},
		{1, 1},
	}
	for _, tt := range tests {
		if got := easeInOutCubic(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ease(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestAnimatorReachesDestination(t *testing.T) {
	cam := NewCamera()
	start := cam.Pose
	dest := geometry.Pose{
		Position: geometry.NewVec3(10, 20, 30),
		Target:   geometry.NewVec3(10, 0, 0),
	}

	a := NewAnimator(cam)
	t0 := time.Unix(0, 0)
	a.AnimateTo(dest, time.Second, t0)

	if !a.Tick(t0.Add(500 * time.Millisecond)) {
		t.Fatal("animation ended at the midpoint")
	}
	mid := cam.Pose
	if mid == start || mid == dest {
		t.Errorf("midpoint pose should be strictly between endpoints: %+v", mid)
	}

	if a.Tick(t0.Add(time.Second)) {
		t.Error("animation should report done at t=1")
	}
	if cam.Pose != dest {
		t.Errorf("final pose = %+v, want %+v", cam.Pose, dest)
	}
	if a.Animating() {
		t.Error("finished animation still reported in flight")
	}
}

func TestAnimatorLastCallWins(t *testing.T) {
	cam := NewCamera()
	first := geometry.Pose{
		Position: geometry.NewVec3(100, 0, 0),
		Target:   geometry.NewVec3(100, 0, -1),
	}
	second := geometry.Pose{
		Position: geometry.NewVec3(-5, 5, 5),
		Target:   geometry.NewVec3(-5, 0, 0),
	}

	a := NewAnimator(cam)
	t0 := time.Unix(0, 0)
	a.AnimateTo(first, time.Second, t0)
	a.Tick(t0.Add(100 * time.Millisecond))
	a.AnimateTo(second, time.Second, t0.Add(100*time.Millisecond))

	for i := 1; i <= 10; i++ {
		a.Tick(t0.Add(100*time.Millisecond + time.Duration(i)*100*time.Millisecond))
	}

	if cam.Pose != second {
		t.Errorf("camera settled at %+v, want second destination %+v", cam.Pose, second)
	}
	if cam.Pose == first {
		t.Error("camera must never settle at the superseded destination")
	}
}

func TestAnimatorClampsEarlyTick(t *testing.T) {
	cam := NewCamera()
	start := cam.Pose
	a := NewAnimator(cam)
	t0 := time.Unix(100, 0)
	a.AnimateTo(geometry.Pose{Position: geometry.NewVec3(1, 1, 1)}, time.Second, t0)

	// A tick timestamped before the start clamps to t=0.
	a.Tick(t0.Add(-time.Second))
	if cam.Pose != start {
		t.Errorf("pre-start tick moved the camera to %+v", cam.Pose)
	}
}
