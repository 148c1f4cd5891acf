// Package interaction is the pointer state machine: it consumes coalesced
// pointer events, hit-tests the marker set, and drives hover/select
// transitions. It is headless; the scene widget feeds it events and reacts
// through callbacks.
package interaction

import (
	"time"

	"thermal-scene/internal/marker"
	"thermal-scene/pkg/geometry"
)

// HitTestMinInterval is the floor between two hit tests. Pointer moves are
// additionally coalesced to the newest sample per frame tick, so the cost is
// bounded no matter how fast events arrive.
const HitTestMinInterval = 30 * time.Millisecond

// RayFunc maps a screen position to a scene-space pick ray.
type RayFunc func(x, y float64) geometry.Ray

// Callbacks are the controller's outputs. Nil entries are skipped. x, y are
// the screen position of the pointer sample that caused the transition.
type Callbacks struct {
	// HoverEnter fires when a marker becomes hovered: open the popup there
	// and resolve its content.
	HoverEnter func(m *marker.Marker, x, y float64)
	// HoverMove fires when the pointer moves within the hovered marker:
	// reposition the popup only.
	HoverMove func(m *marker.Marker, x, y float64)
	// HoverExit fires when the hovered marker is left.
	HoverExit func(m *marker.Marker)
	// Select fires on click over a hovered marker, after visual states are
	// settled: fly the camera and notify the collaborator.
	Select func(m *marker.Marker)
	// ModeToggle fires on double-click over a hovered marker.
	ModeToggle func()
	// Cleared fires when interaction is disabled mid-hover/selection and
	// every visual was reset: hide the popup.
	Cleared func()
}

// pointerSample is the newest unprocessed pointer position.
type pointerSample struct {
	x, y float64
}

// Controller runs the Idle/Hovering state machine. All methods must be called
// from the UI thread.
type Controller struct {
	registry *marker.Registry
	ray      RayFunc
	cb       Callbacks

	enabled    bool
	hoveredID  string
	selectedID string

	pending     *pointerSample
	lastHitTest time.Time
}

// NewController creates a controller over a marker registry. rayFn converts
// pointer positions to pick rays, typically Camera.ScreenRay.
func NewController(registry *marker.Registry, rayFn RayFunc, cb Callbacks) *Controller {
	return &Controller{
		registry: registry,
		ray:      rayFn,
		cb:       cb,
		enabled:  true,
	}
}

// Enabled reports whether picking is permitted (the mode gate).
func (c *Controller) Enabled() bool {
	return c.enabled
}

// HoveredID returns the currently hovered point id, or "".
func (c *Controller) HoveredID() string {
	return c.hoveredID
}

// SelectedID returns the currently selected point id, or "".
func (c *Controller) SelectedID() string {
	return c.selectedID
}

// SetEnabled flips the mode gate. Disabling mid-interaction immediately
// clears hover and selection visuals and hides the popup; navigation is not
// this controller's concern and stays live either way.
func (c *Controller) SetEnabled(enabled bool) {
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if enabled {
		return
	}

	cleared := c.hoveredID != "" || c.selectedID != ""
	if c.hoveredID != "" {
		c.registry.SetVisualState(c.hoveredID, marker.StateNormal)
		c.hoveredID = ""
	}
	if c.selectedID != "" {
		c.registry.SetVisualState(c.selectedID, marker.StateNormal)
		c.selectedID = ""
	}
	c.pending = nil
	if cleared && c.cb.Cleared != nil {
		c.cb.Cleared()
	}
}

// PointerMoved records a pointer sample. Only the most recent sample per
// frame tick is ever hit-tested.
func (c *Controller) PointerMoved(x, y float64) {
	if !c.enabled {
		return
	}
	c.pending = &pointerSample{x: x, y: y}
}

// FrameTick runs at the render tick and performs at most one hit test, and
// only when the minimum interval has elapsed.
func (c *Controller) FrameTick(now time.Time) {
	if !c.enabled || c.pending == nil {
		return
	}
	if now.Sub(c.lastHitTest) < HitTestMinInterval {
		return
	}
	sample := *c.pending
	c.pending = nil
	c.lastHitTest = now

	hit := c.registry.HitTest(c.ray(sample.x, sample.y))
	c.transition(hit, sample.x, sample.y)
}

// transition applies one hit-test outcome to the state machine.
func (c *Controller) transition(hit *marker.Marker, x, y float64) {
	switch {
	case hit == nil:
		if c.hoveredID == "" {
			return
		}
		prev, _ := c.registry.Get(c.hoveredID)
		c.unhover()
		if prev != nil && c.cb.HoverExit != nil {
			c.cb.HoverExit(prev)
		}

	case hit.PointID == c.hoveredID:
		// Same marker: reposition only, no visual churn, no refetch.
		if c.cb.HoverMove != nil {
			c.cb.HoverMove(hit, x, y)
		}

	default:
		prev, _ := c.registry.Get(c.hoveredID)
		c.unhover()
		if prev != nil && c.cb.HoverExit != nil {
			c.cb.HoverExit(prev)
		}

		c.hoveredID = hit.PointID
		c.registry.SetVisualState(hit.PointID, c.lookFor(hit.PointID, marker.StateHovered))
		if c.cb.HoverEnter != nil {
			c.cb.HoverEnter(hit, x, y)
		}
	}
}

// PointerLeft forces Idle unconditionally, e.g. when the pointer exits the
// scene widget.
func (c *Controller) PointerLeft() {
	c.pending = nil
	if c.hoveredID == "" {
		return
	}
	prev, _ := c.registry.Get(c.hoveredID)
	c.unhover()
	if prev != nil && c.cb.HoverExit != nil {
		c.cb.HoverExit(prev)
	}
}

// Clicked selects the hovered marker: the prior selection reverts, the new
// one takes the selected look, then the Select callback flies the camera and
// notifies the collaborator.
func (c *Controller) Clicked() {
	if !c.enabled || c.hoveredID == "" {
		return
	}
	m, ok := c.registry.Get(c.hoveredID)
	if !ok {
		return
	}

	if c.selectedID != "" && c.selectedID != m.PointID {
		// Prior selection goes back to normal, or the hovered look if the
		// pointer happens to sit on it (it does not here, but Get guards
		// registry rebuilds).
		c.registry.SetVisualState(c.selectedID, marker.StateNormal)
	}
	c.selectedID = m.PointID
	c.registry.SetVisualState(m.PointID, marker.StateSelected)

	if c.cb.Select != nil {
		c.cb.Select(m)
	}
}

// DoubleClicked toggles the active metric mode while hovering a marker. The
// mode owner rebuilds the marker set under the new mode.
func (c *Controller) DoubleClicked() {
	if !c.enabled || c.hoveredID == "" {
		return
	}
	if c.cb.ModeToggle != nil {
		c.cb.ModeToggle()
	}
}

// ClearSelection reverts the selected marker, e.g. when the collaborator
// navigates away from any point.
func (c *Controller) ClearSelection() {
	if c.selectedID == "" {
		return
	}
	state := marker.StateNormal
	if c.selectedID == c.hoveredID {
		state = marker.StateHovered
	}
	c.registry.SetVisualState(c.selectedID, state)
	c.selectedID = ""
}

// ReapplyVisuals restores hover/selection state after a wholesale marker
// rebuild, dropping whichever ids did not survive it.
func (c *Controller) ReapplyVisuals() {
	if c.selectedID != "" {
		if !c.registry.SetVisualState(c.selectedID, marker.StateSelected) {
			c.selectedID = ""
		}
	}
	if c.hoveredID != "" {
		if !c.registry.SetVisualState(c.hoveredID, c.lookFor(c.hoveredID, marker.StateHovered)) {
			c.hoveredID = ""
			if c.cb.Cleared != nil {
				c.cb.Cleared()
			}
		}
	}
}

// unhover reverts the hovered marker's visual state: back to normal, or the
// selected look if it is also the current selection.
func (c *Controller) unhover() {
	if c.hoveredID == "" {
		return
	}
	state := marker.StateNormal
	if c.hoveredID == c.selectedID {
		state = marker.StateSelected
	}
	c.registry.SetVisualState(c.hoveredID, state)
	c.hoveredID = ""
}

// lookFor returns the visual state for a marker about to be hovered: the
// selected look wins when the marker is also the selection.
func (c *Controller) lookFor(id string, hovered marker.VisualState) marker.VisualState {
	if id == c.selectedID {
		return marker.StateSelected
	}
	return hovered
}
