// Package app provides application lifecycle management: the viewer state
// object, its event bus, the theme, and development hot reload.
package app

import (
	"context"
	"log"
	"time"

	"thermal-scene/internal/api"
	"thermal-scene/internal/calibration"
	"thermal-scene/internal/detail"
	"thermal-scene/internal/marker"
	"thermal-scene/internal/scene"
	"thermal-scene/pkg/geometry"
)

// Collaborator is the external monitoring service the viewer talks to.
// Implemented by api.Client.
type Collaborator interface {
	FetchPoints(ctx context.Context, mode api.MetricMode) ([]api.MonitoringPoint, error)
	FetchDetail(ctx context.Context, id string, mode api.MetricMode) (*api.PointDetail, error)
	FetchViewpoints(ctx context.Context) (map[string]geometry.Pose, error)
	SaveViewpoint(ctx context.Context, id string, pose geometry.Pose) error
}

// EventType identifies application events.
type EventType int

const (
	EventPointsLoaded EventType = iota
	EventMarkersRebuilt
	EventCalibrationChanged
	EventMetricModeChanged
	EventInteractionToggled
	EventSelectionChanged
	EventStatus
)

// EventListener is called when an event occurs, on the UI thread.
type EventListener func(data interface{})

// State is the viewer's central instance object. It is constructed once and
// passed by reference to every component, so multiple independent viewers and
// headless tests are possible. All methods and event listeners run on the UI
// thread; network completions are marshalled there through the dispatch
// function.
type State struct {
	client   Collaborator
	dispatch func(func())

	Store    *calibration.Store
	Registry *marker.Registry
	Camera   *scene.Camera
	Animator *scene.Animator
	Details  *detail.Cache

	mode        api.MetricMode
	points      []api.MonitoringPoint
	interaction bool
	homePose    geometry.Pose

	// FlightDuration is the camera transition length used for selection
	// and navigation flights.
	FlightDuration time.Duration

	listeners map[EventType][]EventListener
}

// NewState creates the viewer state. dispatch marshals completions onto the
// UI thread (fyne.Do in the application, synchronous in tests).
func NewState(client Collaborator, dispatch func(func())) *State {
	cam := scene.NewCamera()
	s := &State{
		client:         client,
		dispatch:       dispatch,
		Store:          calibration.NewStore(client),
		Registry:       marker.NewRegistry(),
		Camera:         cam,
		Animator:       scene.NewAnimator(cam),
		mode:           api.ModeGeneral,
		interaction:    true,
		homePose:       cam.Pose,
		FlightDuration: scene.DefaultFlightDuration,
		listeners:      make(map[EventType][]EventListener),
	}
	s.Details = detail.NewCache(client, dispatch)
	s.Store.OnChange(func() {
		s.RefreshMarkers()
		s.Emit(EventCalibrationChanged, s.Store.Len())
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}

// Mode returns the active metric mode.
func (s *State) Mode() api.MetricMode {
	return s.mode
}

// Points returns the current monitoring point list.
func (s *State) Points() []api.MonitoringPoint {
	return s.points
}

// InteractionEnabled reports the mode gate.
func (s *State) InteractionEnabled() bool {
	return s.interaction
}

// LoadPoints fetches the point list for the active mode and rebuilds the
// markers when it lands. Failures keep whatever list is already shown.
func (s *State) LoadPoints(ctx context.Context) {
	mode := s.mode
	go func() {
		points, err := s.client.FetchPoints(ctx, mode)
		s.dispatch(func() {
			if err != nil {
				log.Printf("Points: load failed: %v", err)
				s.Emit(EventStatus, "point list unavailable, showing stale data")
				return
			}
			if mode != s.mode {
				// Mode switched while the fetch was out; a fresh load
				// for the new mode is already on its way.
				return
			}
			s.points = points
			s.RefreshMarkers()
			s.Emit(EventPointsLoaded, points)
		})
	}()
}

// LoadCalibration fetches the remote anchor set and merges it over the
// defaults; markers rebuild via the store's change hook.
func (s *State) LoadCalibration(ctx context.Context) {
	go func() {
		remote, err := s.client.FetchViewpoints(ctx)
		s.dispatch(func() {
			if err != nil {
				log.Printf("Calibration: load failed: %v", err)
				s.Emit(EventStatus, "calibration unavailable, using defaults")
				return
			}
			s.Store.ApplyRemote(remote)
		})
	}()
}

// RefreshMarkers rebuilds the marker set wholesale from the current point
// list and calibration.
func (s *State) RefreshMarkers() {
	s.Registry.Build(s.points, s.Store.Resolver())
	s.Emit(EventMarkersRebuilt, s.Registry.Len())
}

// SwitchMetricMode toggles the active metric mode: the detail cache is
// invalidated (the one event that does) and the point list reloads, forcing
// a full marker rebuild under the new mode.
func (s *State) SwitchMetricMode(ctx context.Context) {
	s.mode = s.mode.Next()
	s.Details.Invalidate()
	s.Emit(EventMetricModeChanged, s.mode)
	s.LoadPoints(ctx)
}

// SetInteractionEnabled flips the mode gate. Listeners clear any live
// hover/selection state when it goes off.
func (s *State) SetInteractionEnabled(enabled bool) {
	if s.interaction == enabled {
		return
	}
	s.interaction = enabled
	s.Emit(EventInteractionToggled, enabled)
}

// NavigateToViewpoint flies the camera to a point's resolved viewpoint; an
// empty id returns to the home pose and clears the selection.
func (s *State) NavigateToViewpoint(id string, now time.Time) {
	if id == "" {
		s.Animator.AnimateTo(s.homePose, s.FlightDuration, now)
		s.Emit(EventSelectionChanged, "")
		return
	}
	res := s.Store.Resolver().Resolve(id)
	if res == nil {
		log.Printf("Navigate: cannot place %s", id)
		return
	}
	s.Animator.AnimateTo(res.Pose, s.FlightDuration, now)
}

// NotifySelected reports a new selection to whoever embeds the viewer.
func (s *State) NotifySelected(id string) {
	s.Emit(EventSelectionChanged, id)
}

// Calibrate captures the live camera pose as the anchor for a point id. The
// local set updates synchronously; persistence runs in the background, and a
// failure is reported without rolling the local update back.
func (s *State) Calibrate(ctx context.Context, id string) error {
	pose := s.Camera.Pose
	if err := s.Store.Put(id, pose); err != nil {
		return err
	}
	go func() {
		err := s.client.SaveViewpoint(ctx, id, pose)
		s.dispatch(func() {
			if err != nil {
				log.Printf("Calibrate: save %s failed: %v", id, err)
				s.Emit(EventStatus, "calibration save failed for "+id)
				return
			}
			s.Emit(EventStatus, "calibrated "+id)
		})
	}()
	return nil
}
