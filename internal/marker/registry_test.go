package marker

import (
	"testing"

	"thermal-scene/internal/api"
	"thermal-scene/internal/calibration"
	"thermal-scene/pkg/geometry"
)

func testResolver() *calibration.Resolver {
	mk := func(id string, x float64) calibration.Point {
		ord, _ := calibration.ParseOrdinal(id)
		return calibration.Point{
			ID: id,
			Pose: geometry.Pose{
				Position: geometry.NewVec3(x, 15, 10),
				Target:   geometry.NewVec3(x, 0, 0),
			},
			Ordinal: ord,
		}
	}
	return calibration.NewResolver([]calibration.Point{mk("S0", 0), mk("S10", 100)})
}

func points(ids ...string) []api.MonitoringPoint {
	out := make([]api.MonitoringPoint, len(ids))
	for i, id := range ids {
		out[i] = api.MonitoringPoint{PointID: id, CurrentValue: float64(i)}
	}
	return out
}

func TestBuildSkipsUnresolvable(t *testing.T) {
	r := NewRegistry()
	r.Build(points("S1", "bogus", "S5"), testResolver())

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if _, ok := r.Get("bogus"); ok {
		t.Error("unresolvable id should be skipped")
	}
}

func TestBuildIdempotent(t *testing.T) {
	res := testResolver()
	pts := points("S1", "S5", "S9")

	r := NewRegistry()
	r.Build(pts, res)
	first := make(map[string]geometry.Vec3)
	for _, m := range r.Markers() {
		first[m.PointID] = m.Position
	}

	r.Build(pts, res)
	if r.Len() != len(first) {
		t.Fatalf("marker count changed on rebuild: %d vs %d", r.Len(), len(first))
	}
	for _, m := range r.Markers() {
		if first[m.PointID] != m.Position {
			t.Errorf("%s moved on rebuild: %v vs %v", m.PointID, first[m.PointID], m.Position)
		}
	}
}

func TestBuildReplacesWholesale(t *testing.T) {
	r := NewRegistry()
	res := testResolver()

	r.Build(points("S1", "S2"), res)
	r.SetVisualState("S1", StateSelected)

	r.Build(points("S3"), res)
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if _, ok := r.Get("S1"); ok {
		t.Error("old markers must not survive a rebuild")
	}
}

func TestBuildDropsDuplicates(t *testing.T) {
	r := NewRegistry()
	dup := append(points("S1"), api.MonitoringPoint{PointID: "S1", CurrentValue: 99})
	r.Build(dup, testResolver())

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	m, _ := r.Get("S1")
	if m.Summary.CurrentValue != 0 {
		t.Error("first occurrence should win on duplicate ids")
	}
}

func TestSetVisualState(t *testing.T) {
	r := NewRegistry()
	r.Build(points("S1", "S2"), testResolver())

	if !r.SetVisualState("S1", StateHovered) {
		t.Fatal("SetVisualState returned false for known id")
	}
	m1, _ := r.Get("S1")
	m2, _ := r.Get("S2")
	if m1.State != StateHovered {
		t.Error("S1 not hovered")
	}
	if m2.State != StateNormal {
		t.Error("S2 must be untouched")
	}
	if r.SetVisualState("nope", StateHovered) {
		t.Error("unknown id should return false")
	}
}

func TestHitTestNearest(t *testing.T) {
	r := NewRegistry()
	r.Build(points("S1", "S5"), testResolver())

	// S1 sits at x=10, S5 at x=50. Aim down the x axis from the origin side:
	// both spheres are on the ray, the nearer one must win.
	ray := geometry.Ray{
		Origin:    geometry.NewVec3(-10, 0, 0),
		Direction: geometry.NewVec3(1, 0, 0),
	}
	hit := r.HitTest(ray)
	if hit == nil || hit.PointID != "S1" {
		t.Fatalf("HitTest = %+v, want nearest marker S1", hit)
	}

	miss := geometry.Ray{
		Origin:    geometry.NewVec3(-10, 100, 0),
		Direction: geometry.NewVec3(1, 0, 0),
	}
	if got := r.HitTest(miss); got != nil {
		t.Errorf("HitTest far above the row = %+v, want nil", got)
	}
}
