package calibration

import (
	"math"
	"testing"

	"thermal-scene/pkg/geometry"
)

func anchor(id string, pos, target geometry.Vec3, metric float64) Point {
	ord, err := ParseOrdinal(id)
	if err != nil {
		panic(err)
	}
	return Point{
		ID:      id,
		Pose:    geometry.Pose{Position: pos, Target: target},
		Metric:  metric,
		Ordinal: ord,
	}
}

// testAnchors is the four-anchor set with the sparse, irregular ordinals
// 9, 10, 15, 20.
func testAnchors() []Point {
	return []Point{
		anchor("S1", geometry.NewVec3(0, 0, 0), geometry.NewVec3(0, 0, -1), 0),
		anchor("S2", geometry.NewVec3(10, 0, 0), geometry.NewVec3(10, 0, -1), 5),
		anchor("S3", geometry.NewVec3(20, 5, 0), geometry.NewVec3(20, 5, -1), 30),
		anchor("S4", geometry.NewVec3(30, 5, 10), geometry.NewVec3(30, 5, 9), 55),
	}
}

func adjustOrdinals(points []Point, ords []int) []Point {
	for i := range points {
		points[i].Ordinal = ords[i]
	}
	return points
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		id      string
		want    int
		wantErr bool
	}{
		{"S12", 12, false},
		{"S2", 2, false},
		{"TC-105", 105, false},
		{"7", 7, false},
		{"sensor", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseOrdinal(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrdinal(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOrdinal(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestResolveAnchorExact(t *testing.T) {
	anchors := adjustOrdinals(testAnchors(), []int{9, 10, 15, 20})
	r := NewResolver(anchors)

	got := r.Resolve("S2")
	if got == nil {
		t.Fatal("Resolve(S2) = nil")
	}
	want := anchors[1]
	if got.Pose != want.Pose || got.Metric != want.Metric {
		t.Errorf("anchor not returned verbatim: got %+v, want %+v", got, want)
	}
}

func TestResolveInterpolates(t *testing.T) {
	// S12 has ordinal 12, between S2@10 and S3@15: t = (12-10)/(15-10) = 0.4.
	anchors := adjustOrdinals(testAnchors(), []int{9, 10, 15, 20})
	r := NewResolver(anchors)

	got := r.Resolve("S12")
	if got == nil {
		t.Fatal("Resolve(S12) = nil")
	}

	wantPos := geometry.Lerp(anchors[1].Pose.Position, anchors[2].Pose.Position, 0.4)
	wantTarget := geometry.Lerp(anchors[1].Pose.Target, anchors[2].Pose.Target, 0.4)
	wantMetric := 5 + (30-5)*0.4

	if !near(got.Pose.Position, wantPos) {
		t.Errorf("position = %v, want %v", got.Pose.Position, wantPos)
	}
	if !near(got.Pose.Target, wantTarget) {
		t.Errorf("target = %v, want %v", got.Pose.Target, wantTarget)
	}
	if math.Abs(got.Metric-wantMetric) > 1e-9 {
		t.Errorf("metric = %v, want %v", got.Metric, wantMetric)
	}

	// The result must lie on the straight segment joining the anchors.
	seg := segmentParam(anchors[1].Pose.Position, anchors[2].Pose.Position, got.Pose.Position)
	if seg < 0 || seg > 1 {
		t.Errorf("interpolated point off segment: t = %v", seg)
	}
}

func TestResolveExtrapolates(t *testing.T) {
	// S25 has ordinal 25 > max 20: extrapolate 5 ordinal-steps past S4 at the
	// S3->S4 per-ordinal rate.
	anchors := adjustOrdinals(testAnchors(), []int{9, 10, 15, 20})
	r := NewResolver(anchors)

	got := r.Resolve("S25")
	if got == nil {
		t.Fatal("Resolve(S25) = nil")
	}

	// t relative to S3@15: (25-15)/(20-15) = 2.
	wantPos := geometry.Lerp(anchors[2].Pose.Position, anchors[3].Pose.Position, 2)
	if !near(got.Pose.Position, wantPos) {
		t.Errorf("position = %v, want %v", got.Pose.Position, wantPos)
	}
	wantMetric := 30 + (55-30)*2.0
	if math.Abs(got.Metric-wantMetric) > 1e-9 {
		t.Errorf("metric = %v, want %v", got.Metric, wantMetric)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(adjustOrdinals(testAnchors(), []int{9, 10, 15, 20}))
	a := r.Resolve("S13")
	b := r.Resolve("S13")
	if a == nil || b == nil || *a != *b {
		t.Errorf("Resolve not deterministic: %+v vs %+v", a, b)
	}
}

func TestResolveUnparseableID(t *testing.T) {
	r := NewResolver(testAnchors())
	if got := r.Resolve("sensor"); got != nil {
		t.Errorf("unparseable id resolved to %+v, want nil", got)
	}
}

func TestResolveCoincidentAnchors(t *testing.T) {
	// Two anchors sharing an ordinal must not divide by zero; t collapses to 0.
	anchors := []Point{
		anchor("A5", geometry.NewVec3(0, 0, 0), geometry.NewVec3(0, 0, -1), 0),
		anchor("B5", geometry.NewVec3(9, 9, 9), geometry.NewVec3(9, 9, 8), 1),
	}
	r := NewResolver(anchors)
	got := r.Resolve("C5")
	if got == nil {
		t.Fatal("Resolve(C5) = nil")
	}
	if !near(got.Pose.Position, anchors[0].Pose.Position) {
		t.Errorf("coincident ordinals: position = %v, want lower anchor %v",
			got.Pose.Position, anchors[0].Pose.Position)
	}
}

func TestResolveOneAnchor(t *testing.T) {
	a := anchor("S10", geometry.NewVec3(3, 1, 2), geometry.NewVec3(3, 0, 0), 7)
	r := NewResolver([]Point{a})

	got := r.Resolve("S12")
	if got == nil {
		t.Fatal("Resolve with one anchor = nil, want degraded placement")
	}
	want := geometry.NewVec3(3+2*fallbackSpacing.X, 1, 2)
	if !near(got.Pose.Position, want) {
		t.Errorf("degraded placement = %v, want %v", got.Pose.Position, want)
	}
}

func TestResolveNoAnchors(t *testing.T) {
	r := NewResolver(nil)
	got := r.Resolve("S3")
	if got == nil {
		t.Fatal("Resolve with no anchors = nil, want degraded placement")
	}
	if got.Pose.Target != (geometry.NewVec3(3*fallbackSpacing.X, 0, 0)) {
		t.Errorf("fallback target = %v", got.Pose.Target)
	}
}

func TestResolveBeforeFirstAnchor(t *testing.T) {
	// Ordinals before the first anchor extrapolate backwards along the
	// leading segment.
	anchors := adjustOrdinals(testAnchors(), []int{9, 10, 15, 20})
	r := NewResolver(anchors)

	got := r.Resolve("S8")
	if got == nil {
		t.Fatal("Resolve(S8) = nil")
	}
	wantPos := geometry.Lerp(anchors[0].Pose.Position, anchors[1].Pose.Position, -1)
	if !near(got.Pose.Position, wantPos) {
		t.Errorf("position = %v, want %v", got.Pose.Position, wantPos)
	}
}

func near(a, b geometry.Vec3) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

// segmentParam returns the projection parameter of p onto segment ab.
func segmentParam(a, b, p geometry.Vec3) float64 {
	ab := geometry.NewVec3(b.X-a.X, b.Y-a.Y, b.Z-a.Z)
	ap := geometry.NewVec3(p.X-a.X, p.Y-a.Y, p.Z-a.Z)
	den := ab.X*ab.X + ab.Y*ab.Y + ab.Z*ab.Z
	if den == 0 {
		return 0
	}
	return (ap.X*ab.X + ap.Y*ab.Y + ap.Z*ab.Z) / den
}
