package popup

import (
	"fmt"

	"thermal-scene/internal/api"
)

// Content is the render description of the popup: a title plus body lines.
// It is independent of the rendering backend.
type Content struct {
	Title string
	Lines []string
}

// Resolve builds popup content through the priority chain: full detail record
// when cached, lightweight point-list summary while the fetch is out, bare
// placeholder when neither exists yet.
func Resolve(id string, detail *api.PointDetail, summary *api.MonitoringPoint) Content {
	switch {
	case detail != nil:
		return fromDetail(detail)
	case summary != nil:
		return fromSummary(summary)
	default:
		return Content{Title: id, Lines: []string{"loading..."}}
	}
}

func fromDetail(d *api.PointDetail) Content {
	title := d.Name
	if title == "" {
		title = d.PointID
	}
	lines := []string{
		fmt.Sprintf("%.2f %s", d.CurrentValue, d.Unit),
		fmt.Sprintf("alert: %s  trend: %s", alertText(d.AlertLevel), trendText(d.TrendType)),
	}
	if n := len(d.Readings); n > 0 {
		first := d.Readings[0].Value
		last := d.Readings[n-1].Value
		lines = append(lines, fmt.Sprintf("last %d: %.2f -> %.2f", n, first, last))
	}
	if d.UpdatedAt != "" {
		lines = append(lines, "updated "+d.UpdatedAt)
	}
	return Content{Title: title, Lines: lines}
}

func fromSummary(p *api.MonitoringPoint) Content {
	title := p.Name
	if title == "" {
		title = p.PointID
	}
	return Content{
		Title: title,
		Lines: []string{
			fmt.Sprintf("%.2f %s", p.CurrentValue, p.Unit),
			"alert: " + alertText(p.AlertLevel),
		},
	}
}

func alertText(a api.AlertLevel) string {
	switch a {
	case api.AlertWarning:
		return "warning"
	case api.AlertCritical:
		return "critical"
	default:
		return "none"
	}
}

func trendText(t string) string {
	if t == "" {
		return "flat"
	}
	return t
}
