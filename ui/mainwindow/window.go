// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"thermal-scene/internal/api"
	"thermal-scene/internal/app"
	"thermal-scene/internal/interaction"
	"thermal-scene/internal/marker"
	"thermal-scene/internal/version"
	"thermal-scene/pkg/geometry"
	"thermal-scene/ui/panels"
	"thermal-scene/ui/popup"
	"thermal-scene/ui/prefs"
	"thermal-scene/ui/scenecanvas"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	scene      *scenecanvas.SceneView
	popup      *popup.Presenter
	controller *interaction.Controller
	sidePanel  *panels.SidePanel
	statusBar  *widget.Label

	// Last pointer position, for popup placement when content lands late.
	lastPointer geometry.Point2D
}

// New creates the main window over the application state.
func New(fyneApp fyne.App, state *app.State, preferences *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Thermal Scene " + version.Short())

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  preferences,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.scene = scenecanvas.NewSceneView(mw.state)
	mw.popup = popup.NewPresenter()
	mw.statusBar = widget.NewLabel("Ready")

	mw.controller = interaction.NewController(
		mw.state.Registry,
		mw.scene.ScreenRay,
		interaction.Callbacks{
			HoverEnter: mw.onHoverEnter,
			HoverMove:  mw.onHoverMove,
			HoverExit:  func(*marker.Marker) { mw.popup.Hide(); mw.scene.Refresh() },
			Select:     mw.onSelect,
			ModeToggle: func() { mw.state.SwitchMetricMode(context.Background()) },
			Cleared:    func() { mw.popup.Hide(); mw.scene.Refresh() },
		},
	)
	mw.scene.SetController(mw.controller)
	mw.controller.SetEnabled(mw.state.InteractionEnabled())

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.prefs)
	mw.sidePanel.Settings().OnFloorPlanChosen = func(path string) {
		if err := mw.scene.LoadFloorPlan(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}
	if planPath := mw.prefs.String(prefs.KeyFloorPlan); planPath != "" {
		if err := mw.scene.LoadFloorPlan(planPath); err != nil {
			mw.updateStatus("Floor plan unavailable: " + err.Error())
		}
	}

	sceneArea := container.NewStack(mw.scene, mw.popup.Root())

	split := container.NewHSplit(mw.sidePanel.Container(), sceneArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// Start launches the frame loop. dispatch marshals ticks onto the UI thread.
func (mw *MainWindow) Start(dispatch func(func())) {
	mw.scene.Start(dispatch)
}

// Stop halts the frame loop.
func (mw *MainWindow) Stop() {
	mw.scene.Stop()
}

func (mw *MainWindow) viewport() geometry.Size {
	size := mw.scene.Size()
	return geometry.Size{Width: float64(size.Width), Height: float64(size.Height)}
}

// onHoverEnter opens the popup with whatever content is on hand and resolves
// the detail asynchronously.
func (mw *MainWindow) onHoverEnter(m *marker.Marker, x, y float64) {
	mw.lastPointer = geometry.Point2D{X: x, Y: y}
	id := m.PointID
	summary := m.Summary

	cached, _ := mw.state.Details.Get(id, mw.state.Mode())
	mw.popup.Show(id, popup.Resolve(id, cached, &summary), mw.lastPointer, mw.viewport())
	mw.scene.Refresh()

	if cached != nil {
		return
	}
	mw.state.Details.Fetch(context.Background(), id, mw.state.Mode(), func(d *api.PointDetail) {
		// The popup ignores this when the hover has moved on.
		mw.popup.SetContent(id, popup.Resolve(id, d, &summary), mw.lastPointer, mw.viewport())
	})
}

func (mw *MainWindow) onHoverMove(m *marker.Marker, x, y float64) {
	mw.lastPointer = geometry.Point2D{X: x, Y: y}
	mw.popup.Reposition(mw.lastPointer, mw.viewport())
}

// onSelect flies the camera to the marker's stored viewpoint.
func (mw *MainWindow) onSelect(m *marker.Marker) {
	mw.state.Animator.AnimateTo(m.Viewpoint, mw.state.FlightDuration, time.Now())
	mw.state.NotifySelected(m.PointID)
	mw.updateStatus("Selected " + m.PointID)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Reload Points", func() {
			mw.state.LoadPoints(context.Background())
		}),
		fyne.NewMenuItem("Reload Calibration", func() {
			mw.state.LoadCalibration(context.Background())
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Home View", func() {
			mw.state.NavigateToViewpoint("", time.Now())
		}),
		fyne.NewMenuItem("Toggle Metric Mode", func() {
			mw.state.SwitchMetricMode(context.Background())
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventMarkersRebuilt, func(data interface{}) {
		mw.controller.ReapplyVisuals()
		mw.scene.Refresh()
		if n, ok := data.(int); ok {
			mw.updateStatus(fmt.Sprintf("%d markers placed", n))
		}
	})

	mw.state.On(app.EventMetricModeChanged, func(data interface{}) {
		mw.popup.Hide()
		mw.scene.Refresh()
		if mode, ok := data.(api.MetricMode); ok {
			mw.updateStatus("Mode: " + mode.String())
		}
	})

	mw.state.On(app.EventInteractionToggled, func(data interface{}) {
		if on, ok := data.(bool); ok {
			mw.controller.SetEnabled(on)
			if on {
				mw.updateStatus("Point picking enabled")
			} else {
				mw.updateStatus("Point picking disabled")
			}
		}
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		if id, ok := data.(string); ok && id == "" {
			mw.controller.ClearSelection()
			mw.scene.Refresh()
		}
	})

	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Thermal Scene",
		fmt.Sprintf("Thermal Scene %s\n\n"+
			"A 3D monitoring point viewer with spatial calibration.\n\n"+
			"Built: %s\nCommit: %s",
			version.Short(), version.BuildTime, version.GitCommit),
		mw.Window)
}
