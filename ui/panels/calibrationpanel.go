package panels

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"thermal-scene/internal/app"
)

// CalibrationPanel captures camera viewpoints as anchors and lists the
// current anchor set.
type CalibrationPanel struct {
	state     *app.State
	container fyne.CanvasObject

	idEntry     *widget.Entry
	statusLabel *widget.Label
	anchorList  *widget.List
}

// NewCalibrationPanel creates the calibration tab.
func NewCalibrationPanel(state *app.State) *CalibrationPanel {
	cp := &CalibrationPanel{state: state}

	cp.idEntry = widget.NewEntry()
	cp.idEntry.SetPlaceHolder("Point id, e.g. S12")

	cp.statusLabel = widget.NewLabel("")
	cp.statusLabel.Wrapping = fyne.TextWrapWord

	cp.anchorList = widget.NewList(
		func() int { return state.Store.Len() },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			anchors := state.Store.Anchors()
			if i >= len(anchors) {
				return
			}
			a := anchors[i]
			obj.(*widget.Label).SetText(fmt.Sprintf("%s  target (%.1f, %.1f, %.1f)",
				a.ID, a.Pose.Target.X, a.Pose.Target.Y, a.Pose.Target.Z))
		},
	)

	captureBtn := widget.NewButton("Capture Current View", func() {
		id := cp.idEntry.Text
		if id == "" {
			cp.statusLabel.SetText("Enter a point id first")
			return
		}
		if err := state.Calibrate(context.Background(), id); err != nil {
			cp.statusLabel.SetText("Cannot calibrate: " + err.Error())
			return
		}
		cp.statusLabel.SetText("Captured " + id)
		cp.idEntry.SetText("")
	})

	reloadBtn := widget.NewButton("Reload From Service", func() {
		state.LoadCalibration(context.Background())
	})

	countLabel := widget.NewLabel(anchorCount(state))

	cp.container = container.NewBorder(
		container.NewVBox(
			widget.NewLabel("Anchor the current camera view to a point id."),
			cp.idEntry,
			captureBtn,
			reloadBtn,
			cp.statusLabel,
			widget.NewSeparator(),
			countLabel,
		),
		nil, nil, nil,
		cp.anchorList,
	)

	state.On(app.EventCalibrationChanged, func(interface{}) {
		countLabel.SetText(anchorCount(state))
		cp.anchorList.Refresh()
	})
	state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			cp.statusLabel.SetText(msg)
		}
	})

	return cp
}

// Container returns the panel content.
func (cp *CalibrationPanel) Container() fyne.CanvasObject {
	return cp.container
}

func anchorCount(state *app.State) string {
	anchors := state.Store.Anchors()
	if len(anchors) == 0 {
		return "No anchors"
	}
	return fmt.Sprintf("%d anchors, ordinals %d to %d",
		len(anchors), anchors[0].Ordinal, anchors[len(anchors)-1].Ordinal)
}
