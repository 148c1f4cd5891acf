package calibration

import (
	"log"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"thermal-scene/pkg/geometry"
)

// Placement constants for the degraded heuristic used when fewer than two
// anchors are known: points are strung along the +X axis at a fixed spacing,
// viewed from a fixed eye offset.
var (
	fallbackSpacing = geometry.NewVec3(5, 0, 0)
	fallbackEye     = geometry.NewVec3(0, 18, 6)
)

// Resolved is the outcome of placing a point id in the scene.
type Resolved struct {
	ID      string
	Ordinal int
	Pose    geometry.Pose
	Metric  float64
}

// Resolver places point ids by interpolating over an anchor snapshot. It is
// pure: for a fixed snapshot the same id always resolves identically.
type Resolver struct {
	anchors []Point // sorted by ordinal
	byID    map[string]Point
}

// NewResolver creates a resolver over a set of anchors. The slice is sorted by
// ordinal if it is not already.
func NewResolver(anchors []Point) *Resolver {
	sorted := make([]Point, len(anchors))
	copy(sorted, anchors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	byID := make(map[string]Point, len(sorted))
	for _, a := range sorted {
		byID[a.ID] = a
	}
	return &Resolver{anchors: sorted, byID: byID}
}

// Resolve maps a point id to a scene pose. Anchored ids return their anchor
// verbatim; ids beyond the last anchor extrapolate from the last two; all
// other ids interpolate between their bounding anchors. Returns nil for ids
// with no numeric suffix, which callers skip.
func (r *Resolver) Resolve(id string) *Resolved {
	if a, ok := r.byID[id]; ok {
		return &Resolved{ID: id, Ordinal: a.Ordinal, Pose: a.Pose, Metric: a.Metric}
	}

	ordinal, err := ParseOrdinal(id)
	if err != nil {
		log.Printf("Resolve: %v", err)
		return nil
	}

	out := &Resolved{ID: id, Ordinal: ordinal}
	switch len(r.anchors) {
	case 0:
		// No calibration at all: string points along the fallback line.
		pos := r3.Scale(float64(ordinal), fallbackSpacing)
		out.Pose = geometry.Pose{Position: r3.Add(pos, fallbackEye), Target: pos}
		return out
	case 1:
		// One anchor: march from it at the fallback spacing.
		a := r.anchors[0]
		offset := r3.Scale(float64(ordinal-a.Ordinal), fallbackSpacing)
		out.Pose = geometry.Pose{
			Position: r3.Add(a.Pose.Position, offset),
			Target:   r3.Add(a.Pose.Target, offset),
		}
		out.Metric = a.Metric
		return out
	}

	last := r.anchors[len(r.anchors)-1]
	if ordinal > last.Ordinal {
		// Beyond the calibrated range: project forward at the per-ordinal
		// rate of the last two anchors.
		prev := r.anchors[len(r.anchors)-2]
		span := float64(last.Ordinal - prev.Ordinal)
		if span == 0 {
			span = 1
		}
		t := float64(ordinal-prev.Ordinal) / span
		out.Pose = geometry.LerpPose(prev.Pose, last.Pose, t)
		out.Metric = geometry.LerpScalar(prev.Metric, last.Metric, t)
		return out
	}

	lower, upper := r.bounding(ordinal)
	span := float64(upper.Ordinal - lower.Ordinal)
	t := 0.0
	if span != 0 {
		t = float64(ordinal-lower.Ordinal) / span
	}
	out.Pose = geometry.LerpPose(lower.Pose, upper.Pose, t)
	out.Metric = geometry.LerpScalar(lower.Metric, upper.Metric, t)
	return out
}

// bounding returns the anchors enclosing an ordinal. Ordinals before the first
// anchor get the first pair, producing a negative t that extrapolates
// backwards at the leading segment's rate.
func (r *Resolver) bounding(ordinal int) (Point, Point) {
	i := sort.Search(len(r.anchors), func(i int) bool {
		return r.anchors[i].Ordinal >= ordinal
	})
	if i == 0 {
		return r.anchors[0], r.anchors[1]
	}
	return r.anchors[i-1], r.anchors[i]
}
