// Package scenecanvas provides the 3D scene widget: a software-projected view
// of the monitoring markers with orbit and dolly navigation.
package scenecanvas

import (
	"image"
	"image/color"
	"math"
	"os"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"thermal-scene/internal/api"
	"thermal-scene/internal/app"
	"thermal-scene/internal/interaction"
	"thermal-scene/internal/marker"
	"thermal-scene/pkg/geometry"
)

const (
	frameInterval = 33 * time.Millisecond

	orbitSensitivity = 0.008
	dollyStep        = 1.12

	gridExtent  = 60.0
	gridSpacing = 10.0
)

var (
	backgroundColor = color.RGBA{R: 0x12, G: 0x14, B: 0x18, A: 0xFF}
	gridColor       = color.RGBA{R: 0x2A, G: 0x2E, B: 0x36, A: 0xFF}
	labelColor      = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	hoverRingColor  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	selectRingColor = color.RGBA{R: 0xFF, G: 0x8F, B: 0x00, A: 0xFF}
)

// SceneView renders the marker scene and feeds pointer events to the
// interaction controller. Navigation (orbit, dolly) goes straight to the
// camera and stays available even when picking is gated off.
type SceneView struct {
	widget.BaseWidget

	state      *app.State
	controller *interaction.Controller

	raster *fynecanvas.Raster

	floorPlan   image.Image
	planScaled  *image.RGBA
	planForSize image.Point

	stopCh chan struct{}
}

// NewSceneView creates the scene widget over the application state. The
// interaction controller is attached separately once its callbacks are wired.
func NewSceneView(state *app.State) *SceneView {
	sv := &SceneView{state: state}
	sv.raster = fynecanvas.NewRaster(sv.draw)
	sv.raster.ScaleMode = fynecanvas.ImageScalePixels
	sv.ExtendBaseWidget(sv)
	return sv
}

// SetController attaches the interaction controller that receives pointer
// events from this widget.
func (sv *SceneView) SetController(c *interaction.Controller) {
	sv.controller = c
}

// SetFloorPlan sets the plant floor plan drawn beneath the scene, or nil to
// clear it.
func (sv *SceneView) SetFloorPlan(img image.Image) {
	sv.floorPlan = img
	sv.planScaled = nil
	sv.Refresh()
}

// LoadFloorPlan reads a plan image from disk. PNG, JPEG and TIFF are
// supported.
func (sv *SceneView) LoadFloorPlan(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return err
	}
	sv.SetFloorPlan(img)
	return nil
}

// Start begins the frame loop. dispatch marshals each tick onto the UI
// thread.
func (sv *SceneView) Start(dispatch func(func())) {
	sv.stopCh = make(chan struct{})
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sv.stopCh:
				return
			case now := <-ticker.C:
				dispatch(func() { sv.tick(now) })
			}
		}
	}()
}

// Stop halts the frame loop.
func (sv *SceneView) Stop() {
	if sv.stopCh != nil {
		close(sv.stopCh)
		sv.stopCh = nil
	}
}

func (sv *SceneView) tick(now time.Time) {
	if sv.controller != nil {
		sv.controller.FrameTick(now)
	}
	if sv.state.Animator.Tick(now) {
		sv.Refresh()
	}
}

// Refresh redraws the raster.
func (sv *SceneView) Refresh() {
	sv.raster.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (sv *SceneView) MouseIn(ev *desktop.MouseEvent) {
	sv.MouseMoved(ev)
}

// MouseMoved feeds pointer positions to the controller; it coalesces them
// until the next frame tick.
func (sv *SceneView) MouseMoved(ev *desktop.MouseEvent) {
	if sv.controller != nil {
		sv.controller.PointerMoved(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

// MouseOut implements desktop.Hoverable.
func (sv *SceneView) MouseOut() {
	if sv.controller != nil {
		sv.controller.PointerLeft()
	}
}

// Tapped selects the hovered marker, if any.
func (sv *SceneView) Tapped(*fyne.PointEvent) {
	if sv.controller != nil {
		sv.controller.Clicked()
		sv.Refresh()
	}
}

// DoubleTapped toggles the metric mode when a marker is hovered.
func (sv *SceneView) DoubleTapped(*fyne.PointEvent) {
	if sv.controller != nil {
		sv.controller.DoubleClicked()
	}
}

// Dragged orbits the camera. A manual move supersedes any flight in
// progress.
func (sv *SceneView) Dragged(ev *fyne.DragEvent) {
	sv.state.Animator.Stop()
	sv.state.Camera.Orbit(
		-float64(ev.Dragged.DX)*orbitSensitivity,
		float64(ev.Dragged.DY)*orbitSensitivity,
	)
	sv.Refresh()
}

// DragEnd implements fyne.Draggable.
func (sv *SceneView) DragEnd() {}

// Scrolled dollies the camera toward or away from its target.
func (sv *SceneView) Scrolled(ev *fyne.ScrollEvent) {
	sv.state.Animator.Stop()
	if ev.Scrolled.DY > 0 {
		sv.state.Camera.Dolly(1 / dollyStep)
	} else if ev.Scrolled.DY < 0 {
		sv.state.Camera.Dolly(dollyStep)
	}
	sv.Refresh()
}

// ScreenRay converts a pointer position in widget coordinates to a scene
// ray. This is the RayFunc the controller hit-tests with.
func (sv *SceneView) ScreenRay(x, y float64) geometry.Ray {
	size := sv.Size()
	return sv.state.Camera.ScreenRay(x, y, float64(size.Width), float64(size.Height))
}

// draw renders the scene into the raster buffer.
func (sv *SceneView) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(output, backgroundColor)

	if w == 0 || h == 0 {
		return output
	}

	sv.drawFloorPlan(output, w, h)
	sv.drawGrid(output, w, h)
	sv.drawMarkers(output, w, h)

	return output
}

func fill(output *image.RGBA, col color.RGBA) {
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = col.R
		output.Pix[i+1] = col.G
		output.Pix[i+2] = col.B
		output.Pix[i+3] = 255
	}
}

// drawFloorPlan scales the plan to the viewport and blends it dimly under the
// scene. The scaled copy is cached per size.
func (sv *SceneView) drawFloorPlan(output *image.RGBA, w, h int) {
	if sv.floorPlan == nil {
		return
	}
	if sv.planScaled == nil || sv.planForSize != image.Pt(w, h) {
		sv.planScaled = image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(sv.planScaled, sv.planScaled.Bounds(),
			sv.floorPlan, sv.floorPlan.Bounds(), xdraw.Src, nil)
		sv.planForSize = image.Pt(w, h)
	}

	// Quarter brightness keeps the markers readable over the plan.
	src := sv.planScaled.Pix
	dst := output.Pix
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i] = mix(dst[i], src[i])
		dst[i+1] = mix(dst[i+1], src[i+1])
		dst[i+2] = mix(dst[i+2], src[i+2])
	}
}

func mix(bg, plan uint8) uint8 {
	return uint8((uint16(bg)*3 + uint16(plan)) / 4)
}

// drawGrid projects ground-plane reference lines.
func (sv *SceneView) drawGrid(output *image.RGBA, w, h int) {
	fw, fh := float64(w), float64(h)
	for v := -gridExtent; v <= gridExtent; v += gridSpacing {
		sv.drawSceneLine(output,
			geometry.NewVec3(v, 0, -gridExtent), geometry.NewVec3(v, 0, gridExtent), fw, fh)
		sv.drawSceneLine(output,
			geometry.NewVec3(-gridExtent, 0, v), geometry.NewVec3(gridExtent, 0, v), fw, fh)
	}
}

// drawSceneLine projects a world segment and draws it sampled, so segments
// partially behind the eye degrade instead of streaking.
func (sv *SceneView) drawSceneLine(output *image.RGBA, a, b geometry.Vec3, fw, fh float64) {
	const steps = 24
	var prev image.Point
	havePrev := false
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		p := geometry.Lerp(a, b, t)
		sp, _, ok := sv.state.Camera.Project(p, fw, fh)
		if !ok {
			havePrev = false
			continue
		}
		cur := image.Pt(int(sp.X), int(sp.Y))
		if havePrev {
			drawSegment(output, prev, cur, gridColor)
		}
		prev = cur
		havePrev = true
	}
}

// drawSegment is a thin Bresenham line.
func drawSegment(output *image.RGBA, a, b image.Point, col color.RGBA) {
	bounds := output.Bounds()
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy
	x, y := a.X, a.Y
	for {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.SetRGBA(x, y, col)
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type depthMarker struct {
	m     *marker.Marker
	pos   image.Point
	depth float64
	rad   int
}

// drawMarkers projects and paints every marker, far to near.
func (sv *SceneView) drawMarkers(output *image.RGBA, w, h int) {
	fw, fh := float64(w), float64(h)
	tanY := math.Tan(sv.state.Camera.FOVY / 2)

	visible := make([]depthMarker, 0, sv.state.Registry.Len())
	for _, m := range sv.state.Registry.Markers() {
		sp, depth, ok := sv.state.Camera.Project(m.Position, fw, fh)
		if !ok {
			continue
		}
		rad := int(marker.HitRadius / (depth * tanY) * fh / 2)
		if rad < 3 {
			rad = 3
		}
		if rad > 40 {
			rad = 40
		}
		visible = append(visible, depthMarker{
			m:     m,
			pos:   image.Pt(int(sp.X), int(sp.Y)),
			depth: depth,
			rad:   rad,
		})
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].depth > visible[j].depth
	})

	for _, dm := range visible {
		sv.drawMarker(output, dm)
	}
}

func (sv *SceneView) drawMarker(output *image.RGBA, dm depthMarker) {
	col := markerColor(dm.m, sv.state.Mode())
	drawDisc(output, dm.pos, dm.rad, col)

	switch dm.m.State {
	case marker.StateHovered:
		drawRing(output, dm.pos, dm.rad+3, hoverRingColor)
	case marker.StateSelected:
		drawRing(output, dm.pos, dm.rad+3, selectRingColor)
		drawRing(output, dm.pos, dm.rad+5, selectRingColor)
	}

	scale := dm.rad / 8
	if scale < 1 {
		scale = 1
	}
	drawLabel(output, dm.m.PointID, dm.pos.X, dm.pos.Y+dm.rad+4, labelColor, scale)
}

// markerColor picks the disc color from the alert level, tinted warm in
// temperature mode.
func markerColor(m *marker.Marker, mode api.MetricMode) color.RGBA {
	switch m.Summary.AlertLevel {
	case api.AlertCritical:
		return color.RGBA{R: 0xD0, G: 0x2F, B: 0x2F, A: 0xFF}
	case api.AlertWarning:
		return color.RGBA{R: 0xE8, G: 0xA8, B: 0x20, A: 0xFF}
	}
	if mode == api.ModeTemperature {
		return color.RGBA{R: 0xC8, G: 0x6A, B: 0x3A, A: 0xFF}
	}
	return color.RGBA{R: 0x3A, G: 0x8F, B: 0xC8, A: 0xFF}
}

func drawDisc(output *image.RGBA, center image.Point, radius int, col color.RGBA) {
	bounds := output.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			px, py := center.X+dx, center.Y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				output.SetRGBA(px, py, col)
			}
		}
	}
}

func drawRing(output *image.RGBA, center image.Point, radius int, col color.RGBA) {
	bounds := output.Bounds()
	outer := radius * radius
	inner := (radius - 2) * (radius - 2)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > outer || d2 < inner {
				continue
			}
			px, py := center.X+dx, center.Y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				output.SetRGBA(px, py, col)
			}
		}
	}
}

// CreateRenderer implements fyne.Widget.
func (sv *SceneView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sv.raster)
}

// MinSize implements fyne.Widget.
func (sv *SceneView) MinSize() fyne.Size {
	return fyne.NewSize(480, 360)
}
