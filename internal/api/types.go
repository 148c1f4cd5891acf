// Package api talks to the monitoring collaborator service. Response shapes
// vary between deployments (wrapped vs. bare arrays, per-mode detail records);
// everything is normalized here so the rest of the application sees one
// canonical form.
package api

import "fmt"

// MetricMode selects which external dataset drives marker data and popup
// content. Each mode maps to its own endpoint family.
type MetricMode int

const (
	// ModeGeneral reads the combined sensor dataset (/points, /point/{id}).
	ModeGeneral MetricMode = iota
	// ModeTemperature reads the temperature dataset
	// (/temperature/points, /temperature/data/{id}).
	ModeTemperature
)

// Next returns the other mode; metric-mode switching is a toggle.
func (m MetricMode) Next() MetricMode {
	if m == ModeGeneral {
		return ModeTemperature
	}
	return ModeGeneral
}

func (m MetricMode) String() string {
	switch m {
	case ModeGeneral:
		return "general"
	case ModeTemperature:
		return "temperature"
	}
	return fmt.Sprintf("MetricMode(%d)", int(m))
}

// AlertLevel grades a point's current reading.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertWarning
	AlertCritical
)

// MonitoringPoint is one entry of the point list. Owned by the collaborator;
// read-only here.
type MonitoringPoint struct {
	PointID      string     `json:"point_id"`
	Name         string     `json:"name"`
	CurrentValue float64    `json:"current_value"`
	Unit         string     `json:"unit"`
	AlertLevel   AlertLevel `json:"alert_level"`
	TrendType    string     `json:"trend_type"`
}

// PointDetail is the per-point record backing the popup. Readings carry the
// recent history in the shape the active mode's endpoint returns.
type PointDetail struct {
	PointID      string     `json:"point_id"`
	Name         string     `json:"name"`
	CurrentValue float64    `json:"current_value"`
	Unit         string     `json:"unit"`
	AlertLevel   AlertLevel `json:"alert_level"`
	TrendType    string     `json:"trend_type"`
	UpdatedAt    string     `json:"updated_at"`
	Readings     []Reading  `json:"readings"`
}

// Reading is one historical sample of a point.
type Reading struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}
