// Package marker owns the drawable marker set: one marker per monitoring
// point, placed by the calibration resolver and hit-tested against pointer
// rays.
package marker

import (
	"log"
	"sort"

	"thermal-scene/internal/api"
	"thermal-scene/internal/calibration"
	"thermal-scene/pkg/geometry"
)

// HitRadius is the pick-sphere radius of every marker, in scene units.
const HitRadius = 1.5

// VisualState is the render state of one marker. Hover and selection are
// mutually exclusive with normal; the same marker may be both hovered and
// selected, in which case the selected look wins.
type VisualState int

const (
	StateNormal VisualState = iota
	StateHovered
	StateSelected
)

// Marker is one drawable monitoring point. Position is where the sensor sits
// in the scene (the resolved gaze target); Viewpoint is the full camera pose
// the viewer flies to when the marker is selected.
type Marker struct {
	PointID   string
	Position  geometry.Vec3
	Viewpoint geometry.Pose
	Metric    float64

	// Snapshot of the point-list entry, used for tinting and as the
	// popup's lightweight summary fallback.
	Summary api.MonitoringPoint

	State VisualState
}

// Registry owns the marker set, keyed uniquely by point id. Build replaces
// the whole set atomically; only SetVisualState mutates markers in place.
// All methods must be called from the UI thread.
type Registry struct {
	markers map[string]*Marker
	ordered []*Marker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{markers: make(map[string]*Marker)}
}

// Build resolves every point and replaces the marker set wholesale. Points
// whose id cannot be placed are skipped. Building twice with the same inputs
// yields an identical id->position mapping.
func (r *Registry) Build(points []api.MonitoringPoint, resolver *calibration.Resolver) {
	markers := make(map[string]*Marker, len(points))
	ordered := make([]*Marker, 0, len(points))

	for _, p := range points {
		res := resolver.Resolve(p.PointID)
		if res == nil {
			continue
		}
		if _, dup := markers[p.PointID]; dup {
			log.Printf("Markers: duplicate point id %s, keeping first", p.PointID)
			continue
		}
		m := &Marker{
			PointID:   p.PointID,
			Position:  res.Pose.Target,
			Viewpoint: res.Pose,
			Metric:    res.Metric,
			Summary:   p,
		}
		markers[p.PointID] = m
		ordered = append(ordered, m)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].PointID < ordered[j].PointID })

	r.markers = markers
	r.ordered = ordered
}

// Get returns the marker for a point id.
func (r *Registry) Get(id string) (*Marker, bool) {
	m, ok := r.markers[id]
	return m, ok
}

// Markers returns the marker set in stable id order. Callers must not hold
// the slice across a Build.
func (r *Registry) Markers() []*Marker {
	return r.ordered
}

// Len returns the marker count.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// SetVisualState updates exactly one marker's render state. Returns false if
// the id is unknown.
func (r *Registry) SetVisualState(id string, state VisualState) bool {
	m, ok := r.markers[id]
	if !ok {
		return false
	}
	m.State = state
	return true
}

// HitTest returns the marker nearest along the ray, or nil if the ray misses
// every pick sphere. Linear in the marker count.
func (r *Registry) HitTest(ray geometry.Ray) *Marker {
	var best *Marker
	bestT := -1.0
	for _, m := range r.ordered {
		t := ray.IntersectSphere(m.Position, HitRadius)
		if t < 0 {
			continue
		}
		if best == nil || t < bestT {
			best, bestT = m, t
		}
	}
	return best
}
