package calibration

import (
	"context"
	"fmt"
	"log"
	"sort"

	"thermal-scene/pkg/geometry"
)

// Point is a calibration anchor: a point id whose viewpoint is known with
// confidence. Metric carries the per-point scalar (chainage along the sensor
// run) that is interpolated alongside the pose.
type Point struct {
	ID      string        `json:"id"`
	Pose    geometry.Pose `json:"pose"`
	Metric  float64       `json:"metric"`
	Ordinal int           `json:"-"`
}

// Remote persists the anchor set. Implemented by the collaborator API client.
type Remote interface {
	FetchViewpoints(ctx context.Context) (map[string]geometry.Pose, error)
	SaveViewpoint(ctx context.Context, id string, pose geometry.Pose) error
}

// Store owns the anchor set. All methods must be called from the UI thread;
// network completion is expected to be marshalled there by the caller, so no
// locking is done here.
type Store struct {
	remote  Remote
	anchors map[string]Point

	// Called after any change to the anchor set (load or save), so the
	// marker set can be rebuilt against the new calibration.
	onChange func()
}

// NewStore creates a store seeded with the hardcoded default anchors.
func NewStore(remote Remote) *Store {
	s := &Store{
		remote:  remote,
		anchors: make(map[string]Point),
	}
	for _, p := range defaultAnchors() {
		s.put(p)
	}
	return s
}

// defaultAnchors is the built-in fallback calibration, used until the remote
// set loads and as the base the remote set merges over.
func defaultAnchors() []Point {
	return []Point{
		{ID: "S1", Pose: geometry.Pose{
			Position: geometry.NewVec3(-42, 18, 6),
			Target:   geometry.NewVec3(-42, 0, 0),
		}, Metric: 0},
		{ID: "S10", Pose: geometry.Pose{
			Position: geometry.NewVec3(0, 18, 6),
			Target:   geometry.NewVec3(0, 0, 0),
		}, Metric: 45},
		{ID: "S20", Pose: geometry.Pose{
			Position: geometry.NewVec3(46, 18, 6),
			Target:   geometry.NewVec3(46, 0, 0),
		}, Metric: 95},
	}
}

// OnChange registers the callback invoked after the anchor set changes.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// Load fetches the remote anchor set and merges it over the defaults. It
// blocks on the network, so interactive callers fetch asynchronously and
// apply the result with ApplyRemote instead.
func (s *Store) Load(ctx context.Context) error {
	remote, err := s.remote.FetchViewpoints(ctx)
	if err != nil {
		return fmt.Errorf("load viewpoints: %w", err)
	}
	s.ApplyRemote(remote)
	return nil
}

// ApplyRemote merges a fetched anchor set over the current one; on id
// collision the remote anchor wins.
func (s *Store) ApplyRemote(remote map[string]geometry.Pose) {
	for id, pose := range remote {
		s.put(Point{ID: id, Pose: pose})
	}
	log.Printf("Calibration: %d anchors (%d remote)", len(s.anchors), len(remote))
	s.emitChange()
}

// Put adds or replaces one anchor in memory, so the very next Resolve already
// reflects it. Rejects ids with no numeric suffix.
func (s *Store) Put(id string, pose geometry.Pose) error {
	if _, err := ParseOrdinal(id); err != nil {
		return err
	}
	s.put(Point{ID: id, Pose: pose, Metric: s.metricNear(id)})
	s.emitChange()
	return nil
}

// Save captures a new anchor and persists it remotely. The in-memory update
// happens before the network round-trip; a failed save is reported but the
// optimistic local update is kept.
func (s *Store) Save(ctx context.Context, id string, pose geometry.Pose) error {
	if err := s.Put(id, pose); err != nil {
		return err
	}
	if err := s.remote.SaveViewpoint(ctx, id, pose); err != nil {
		return fmt.Errorf("save viewpoint %s: %w", id, err)
	}
	return nil
}

// Anchor returns the anchor for an id, if one exists.
func (s *Store) Anchor(id string) (Point, bool) {
	p, ok := s.anchors[id]
	return p, ok
}

// Len returns the number of anchors.
func (s *Store) Len() int {
	return len(s.anchors)
}

// Anchors returns the anchor set sorted by ordinal.
func (s *Store) Anchors() []Point {
	out := make([]Point, 0, len(s.anchors))
	for _, p := range s.anchors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// Resolver returns a resolver snapshot over the current anchor set. The
// snapshot is independent of later store mutations.
func (s *Store) Resolver() *Resolver {
	return NewResolver(s.Anchors())
}

// metricNear estimates a metric for a newly captured anchor from the existing
// set, so hand-captured anchors stay usable on the metric axis.
func (s *Store) metricNear(id string) float64 {
	r := s.Resolver()
	if res := r.Resolve(id); res != nil {
		return res.Metric
	}
	return 0
}

func (s *Store) put(p Point) {
	ord, err := ParseOrdinal(p.ID)
	if err != nil {
		log.Printf("Calibration: dropping anchor: %v", err)
		return
	}
	p.Ordinal = ord
	s.anchors[p.ID] = p
}

func (s *Store) emitChange() {
	if s.onChange != nil {
		s.onChange()
	}
}
