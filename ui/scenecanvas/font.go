package scenecanvas

import (
	"image"
	"image/color"
)

// glyphs contains 3x5 pixel patterns for the characters marker labels can
// carry. Each glyph is 5 rows of 3 bits.
var glyphs = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

func glyphPattern(ch rune) [5]uint8 {
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := glyphs[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// labelWidth returns the pixel width of a label at the given scale.
func labelWidth(label string, scale int) int {
	n := len([]rune(label))
	if n == 0 {
		return 0
	}
	return n*3*scale + (n-1)*scale
}

// drawLabel renders a label with its horizontal center at centerX and its top
// edge at topY.
func drawLabel(output *image.RGBA, label string, centerX, topY int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	spacing := scale
	startX := centerX - labelWidth(label, scale)/2
	bounds := output.Bounds()

	for i, ch := range []rune(label) {
		pattern := glyphPattern(ch)
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := topY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.Set(px, py, col)
						}
					}
				}
			}
		}
	}
}
