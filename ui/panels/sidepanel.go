// Package panels provides the side panel sections of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"thermal-scene/internal/app"
	"thermal-scene/ui/prefs"
)

// SidePanel groups the point list, calibration, and settings tabs.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	pointsPanel      *PointsPanel
	calibrationPanel *CalibrationPanel
	settingsPanel    *SettingsPanel
}

// NewSidePanel creates the tabbed side panel.
func NewSidePanel(state *app.State, preferences *prefs.Prefs) *SidePanel {
	sp := &SidePanel{state: state}

	sp.pointsPanel = NewPointsPanel(state)
	sp.calibrationPanel = NewCalibrationPanel(state)
	sp.settingsPanel = NewSettingsPanel(state, preferences)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Points", sp.pointsPanel.Container()),
		container.NewTabItem("Calibration", sp.calibrationPanel.Container()),
		container.NewTabItem("Settings", sp.settingsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Settings returns the settings tab, for wiring window-level callbacks.
func (sp *SidePanel) Settings() *SettingsPanel {
	return sp.settingsPanel
}
