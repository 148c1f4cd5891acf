// Package main provides the entry point for the Thermal Scene viewer.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"thermal-scene/internal/api"
	"thermal-scene/internal/app"
	"thermal-scene/internal/version"
	"thermal-scene/ui/mainwindow"
	"thermal-scene/ui/prefs"
)

const defaultBaseURL = "http://localhost:8780"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Thermal Scene %s", version.Long())

	fyneApp := fyneapp.NewWithID("io.thermalscene.viewer")
	fyneApp.Settings().SetTheme(&app.ViewerTheme{})

	win, err := buildMainWindow(fyneApp)
	if err != nil {
		log.Printf("Startup failed: %v", err)
		showFailureWindow(fyneApp, err)
		fyneApp.Run()
		os.Exit(1)
	}

	win.ShowAndRun()
}

func buildMainWindow(fyneApp fyne.App) (*mainwindow.MainWindow, error) {
	appPrefs := prefs.Load()

	baseURL := appPrefs.StringWithFallback(prefs.KeyAPIBaseURL, defaultBaseURL)
	if env := os.Getenv("THERMAL_SCENE_API"); env != "" {
		baseURL = env
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("service url %q: %w", baseURL, err)
	}
	client := api.NewClient(baseURL)

	state := app.NewState(client, fyne.Do)
	if ms := appPrefs.FloatWithFallback(prefs.KeyFlightMillis, 0); ms > 0 {
		state.FlightDuration = time.Duration(ms) * time.Millisecond
	}
	state.SetInteractionEnabled(appPrefs.Bool(prefs.KeyInteraction, true))

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.Start(fyne.Do)

	state.LoadCalibration(context.Background())
	state.LoadPoints(context.Background())

	win.SetOnClosed(func() {
		win.Stop()
		if err := appPrefs.Save(); err != nil {
			log.Printf("Prefs: save failed: %v", err)
		}
	})

	startHotReload(win)
	return win, nil
}

// showFailureWindow keeps the process alive with a diagnostic instead of a
// blank crash when the viewer cannot come up.
func showFailureWindow(fyneApp fyne.App, err error) {
	win := fyneApp.NewWindow("Thermal Scene")
	msg := widget.NewLabel("Initialization failed:\n\n" + err.Error())
	msg.Wrapping = fyne.TextWrapWord
	win.SetContent(msg)
	win.Resize(fyne.NewSize(480, 240))
	win.Show()
}

// startHotReload prompts for restart when a newer binary lands on disk.
// Development convenience, harmless in production.
func startHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		return
	}
	reloader.OnNewBinary(func() {
		fyne.Do(func() {
			dialog.ShowConfirm("New build detected",
				"A newer binary is available. Restart now?",
				func(restart bool) {
					if !restart {
						reloader.ResetBaseline()
						return
					}
					if err := reloader.Restart(); err != nil {
						log.Printf("Restart failed: %v", err)
					}
				}, win.Window)
		})
	})
	reloader.Start()
}
