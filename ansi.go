package ansimake

import (
	"fmt"
	"math"
	"strings"
)

const esc = "\x1b"

const (
	glyphUpperHalf = '▀' // ▀
	glyphLowerHalf = '▄' // ▄
	glyphFullBlock = '█' // █
)

// shadeRamp orders block glyphs from empty to solid for shaded block mode.
var shadeRamp = []rune{' ', '░', '▒', '▓', '█'}

// shadeGlyph picks a ramp glyph for a brightness value, gamma corrected
// so mid tones spread across the ramp instead of bunching at the top.
func shadeGlyph(brightness uint8) rune {
	perceptual := math.Pow(float64(brightness)/255.0, 1.0/2.2)
	max := len(shadeRamp) - 1
	idx := int(perceptual*float64(max) + 0.5)
	if idx > max {
		idx = max
	}
	return shadeRamp[idx]
}

func sameRGB(a, b Color) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

// RenderANSI serializes a cell grid into a 24-bit color escape stream.
// Within a row, foreground and background sequences are emitted only when
// the respective color changes from the previous cell; color state never
// carries across rows, since terminals do not reliably preserve it across
// a wrap. Every row ends with a full reset and a newline, so no color can
// bleed past the rendered frame.
func RenderANSI(grid [][]Cell) string {
	var sb strings.Builder

	for _, row := range grid {
		var fg, bg Color
		var fgSet, bgSet bool

		for _, cell := range row {
			// A live color the cell does not use has to be cleared, and
			// the only way to clear one channel is a full reset.
			if (fgSet && !cell.HasFG) || (bgSet && !cell.HasBG) {
				sb.WriteString(esc + "[0m")
				fgSet, bgSet = false, false
			}

			if cell.HasFG && (!fgSet || !sameRGB(fg, cell.FG)) {
				fmt.Fprintf(&sb, "%s[38;2;%d;%d;%dm", esc, cell.FG.R, cell.FG.G, cell.FG.B)
				fg, fgSet = cell.FG, true
			}

			if cell.HasBG && (!bgSet || !sameRGB(bg, cell.BG)) {
				fmt.Fprintf(&sb, "%s[48;2;%d;%d;%dm", esc, cell.BG.R, cell.BG.G, cell.BG.B)
				bg, bgSet = cell.BG, true
			}

			sb.WriteRune(cell.Glyph)
		}

		sb.WriteString(esc + "[0m\n")
	}

	return sb.String()
}
