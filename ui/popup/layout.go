// Package popup renders the floating info panel that follows the pointer over
// a hovered marker. Placement and content resolution are pure functions so
// the widget itself stays a thin shell.
package popup

import (
	"thermal-scene/pkg/geometry"
)

const (
	// Offset between the pointer and the popup's near corner.
	anchorOffsetX = 16
	anchorOffsetY = 12

	// Minimum clearance kept from every viewport edge.
	edgeInset = 8
)

// Place positions a popup of the given size near a pointer inside a viewport.
// The popup anchors below-right of the pointer; on whichever axis it would
// overflow the viewport it flips to the opposite side, and the final position
// is clamped to the edge inset. Recompute whenever content changes, since the
// box size changes with it.
func Place(size geometry.Size, pointer geometry.Point2D, viewport geometry.Size) geometry.Point2D {
	x := pointer.X + anchorOffsetX
	if x+size.Width > viewport.Width-edgeInset {
		x = pointer.X - anchorOffsetX - size.Width
	}

	y := pointer.Y + anchorOffsetY
	if y+size.Height > viewport.Height-edgeInset {
		y = pointer.Y - anchorOffsetY - size.Height
	}

	maxX := viewport.Width - size.Width - edgeInset
	maxY := viewport.Height - size.Height - edgeInset
	if maxX < edgeInset {
		maxX = edgeInset
	}
	if maxY < edgeInset {
		maxY = edgeInset
	}

	return geometry.Point2D{
		X: geometry.Clamp(x, edgeInset, maxX),
		Y: geometry.Clamp(y, edgeInset, maxY),
	}
}
