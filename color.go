package ansimake

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA color value. The alpha channel is only consulted
// against Config.AlphaThreshold; it never participates in color distance.
type Color struct {
	R, G, B, A uint8
}

// Lab is a color in CIELAB space using the conventional axis scale
// (L in [0, 100]), computed against the D65 reference white. It exists
// purely for perceptual distance comparisons and is never serialized.
type Lab struct {
	L, A, B float64
}

// ToLab converts the color to CIELAB via sRGB -> linear RGB -> XYZ -> Lab.
func (c Color) ToLab() Lab {
	l, a, b := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Lab()

	// go-colorful keeps L in [0, 1]; rescale so tolerance values use the
	// textbook delta-E range.
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// Distance returns the CIE76 delta-E between two Lab colors. CIE76 is the
// plain Euclidean distance; it slightly over-weights lightness compared to
// CIEDE2000 but is cheap enough to run inside the quantizer's inner loop.
func (l Lab) Distance(other Lab) float64 {
	dl := l.L - other.L
	da := l.A - other.A
	db := l.B - other.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// luma returns the perceived brightness of the color using the standard
// BT.601 weights, rounded to the nearest integer.
func (c Color) luma() uint8 {
	y := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if y > 255 {
		y = 255
	}
	return uint8(y + 0.5)
}
