package panels

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"thermal-scene/internal/app"
	"thermal-scene/ui/prefs"
)

// SettingsPanel holds the metric mode toggle, the interaction gate, and
// viewer preferences.
type SettingsPanel struct {
	state     *app.State
	prefs     *prefs.Prefs
	container fyne.CanvasObject

	modeBtn *widget.Button

	// OnFloorPlanChosen is called with the chosen plan path, wired by the
	// main window to the scene canvas.
	OnFloorPlanChosen func(path string)
}

// NewSettingsPanel creates the settings tab.
func NewSettingsPanel(state *app.State, preferences *prefs.Prefs) *SettingsPanel {
	sp := &SettingsPanel{state: state, prefs: preferences}

	sp.modeBtn = widget.NewButton(modeLabel(state), func() {
		state.SwitchMetricMode(context.Background())
	})
	state.On(app.EventMetricModeChanged, func(interface{}) {
		sp.modeBtn.SetText(modeLabel(state))
	})

	interactionCheck := widget.NewCheck("Enable point picking", func(on bool) {
		state.SetInteractionEnabled(on)
		preferences.SetBool(prefs.KeyInteraction, on)
	})
	interactionCheck.SetChecked(state.InteractionEnabled())
	state.On(app.EventInteractionToggled, func(data interface{}) {
		if on, ok := data.(bool); ok {
			interactionCheck.SetChecked(on)
		}
	})

	flightLabel := widget.NewLabel(flightText(state.FlightDuration))
	flightSlider := widget.NewSlider(200, 3000)
	flightSlider.Step = 100
	flightSlider.Value = float64(state.FlightDuration / time.Millisecond)
	flightSlider.OnChanged = func(v float64) {
		state.FlightDuration = time.Duration(v) * time.Millisecond
		flightLabel.SetText(flightText(state.FlightDuration))
		preferences.SetFloat(prefs.KeyFlightMillis, v)
	}

	planEntry := widget.NewEntry()
	planEntry.SetPlaceHolder("Floor plan image path")
	planEntry.SetText(preferences.String(prefs.KeyFloorPlan))
	planBtn := widget.NewButton("Load Plan", func() {
		path := planEntry.Text
		if path == "" {
			return
		}
		preferences.SetString(prefs.KeyFloorPlan, path)
		if sp.OnFloorPlanChosen != nil {
			sp.OnFloorPlanChosen(path)
		}
	})

	urlEntry := widget.NewEntry()
	urlEntry.SetText(preferences.String(prefs.KeyAPIBaseURL))
	urlEntry.SetPlaceHolder("http://localhost:8780")
	urlEntry.OnChanged = func(v string) {
		preferences.SetString(prefs.KeyAPIBaseURL, v)
	}

	sp.container = container.NewVBox(
		widget.NewLabel("Metric mode"),
		sp.modeBtn,
		widget.NewSeparator(),
		interactionCheck,
		widget.NewSeparator(),
		flightLabel,
		flightSlider,
		widget.NewSeparator(),
		widget.NewLabel("Floor plan"),
		planEntry,
		planBtn,
		widget.NewSeparator(),
		widget.NewLabel("Service URL (takes effect on restart)"),
		urlEntry,
	)

	return sp
}

// Container returns the panel content.
func (sp *SettingsPanel) Container() fyne.CanvasObject {
	return sp.container
}

func modeLabel(state *app.State) string {
	return "Mode: " + state.Mode().String()
}

func flightText(d time.Duration) string {
	return fmt.Sprintf("Flight duration: %dms", d/time.Millisecond)
}
