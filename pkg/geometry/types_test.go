package geometry

import (
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(10, -4, 2)

	tests := []struct {
		name string
		t    float64
		want Vec3
	}{
		{"start", 0, NewVec3(0, 0, 0)},
		{"end", 1, NewVec3(10, -4, 2)},
		{"midpoint", 0.5, NewVec3(5, -2, 1)},
		{"extrapolated", 2, NewVec3(20, -8, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lerp(a, b, tt.t)
			if !vecNear(got, tt.want, 1e-12) {
				t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestRayIntersectSphere(t *testing.T) {
	ray := Ray{Origin: NewVec3(0, 0, -10), Direction: NewVec3(0, 0, 1)}

	tests := []struct {
		name   string
		center Vec3
		radius float64
		wantT  float64
	}{
		{"head on", NewVec3(0, 0, 0), 1, 9},
		{"grazing inside radius", NewVec3(0, 0.5, 0), 1, 10 - math.Sqrt(0.75)},
		{"miss", NewVec3(0, 5, 0), 1, -1},
		{"behind origin", NewVec3(0, 0, -20), 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ray.IntersectSphere(tt.center, tt.radius)
			if math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("IntersectSphere = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestRayIntersectSphereFromInside(t *testing.T) {
	ray := Ray{Origin: NewVec3(0, 0, 0), Direction: NewVec3(0, 0, 1)}
	got := ray.IntersectSphere(NewVec3(0, 0, 0), 2)
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("inside-sphere hit = %v, want exit distance 2", got)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 100, 50)
	if !r.Contains(NewPoint2D(10, 10)) {
		t.Error("corner should be inside")
	}
	if !r.Contains(NewPoint2D(60, 35)) {
		t.Error("center should be inside")
	}
	if r.Contains(NewPoint2D(111, 35)) {
		t.Error("point past right edge should be outside")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp(-1) = %v", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Errorf("Clamp(11) = %v", got)
	}
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5) = %v", got)
	}
}

func vecNear(a, b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}
