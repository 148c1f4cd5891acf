package panels

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"thermal-scene/internal/api"
	"thermal-scene/internal/app"
)

// PointsPanel lists the monitoring points and navigates to them.
type PointsPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list       *widget.List
	countLabel *widget.Label
}

// NewPointsPanel creates the point list tab.
func NewPointsPanel(state *app.State) *PointsPanel {
	pp := &PointsPanel{state: state}

	pp.countLabel = widget.NewLabel("No points loaded")

	pp.list = widget.NewList(
		func() int { return len(state.Points()) },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			points := state.Points()
			if i >= len(points) {
				return
			}
			obj.(*widget.Label).SetText(pointLine(points[i]))
		},
	)

	pp.list.OnSelected = func(i widget.ListItemID) {
		points := state.Points()
		if i >= len(points) {
			return
		}
		id := points[i].PointID
		state.NavigateToViewpoint(id, time.Now())
		state.NotifySelected(id)
	}

	homeBtn := widget.NewButton("Home View", func() {
		pp.list.UnselectAll()
		state.NavigateToViewpoint("", time.Now())
	})

	refreshBtn := widget.NewButton("Reload", func() {
		state.LoadPoints(context.Background())
	})

	pp.container = container.NewBorder(
		container.NewVBox(pp.countLabel, container.NewHBox(homeBtn, refreshBtn)),
		nil, nil, nil,
		pp.list,
	)

	state.On(app.EventPointsLoaded, func(interface{}) { pp.sync() })
	state.On(app.EventMetricModeChanged, func(interface{}) { pp.sync() })
	state.On(app.EventSelectionChanged, func(data interface{}) {
		if id, ok := data.(string); ok && id == "" {
			pp.list.UnselectAll()
		}
	})

	return pp
}

// Container returns the panel content.
func (pp *PointsPanel) Container() fyne.CanvasObject {
	return pp.container
}

func (pp *PointsPanel) sync() {
	n := len(pp.state.Points())
	if n == 0 {
		pp.countLabel.SetText("No points loaded")
	} else {
		pp.countLabel.SetText(fmt.Sprintf("%d points (%s)", n, pp.state.Mode()))
	}
	pp.list.Refresh()
}

func pointLine(p api.MonitoringPoint) string {
	line := p.PointID
	if p.Name != "" {
		line += "  " + p.Name
	}
	if p.Unit != "" {
		line += fmt.Sprintf("  %.1f%s", p.CurrentValue, p.Unit)
	}
	switch p.AlertLevel {
	case api.AlertWarning:
		line += "  [warn]"
	case api.AlertCritical:
		line += "  [CRIT]"
	}
	return line
}
