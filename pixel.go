package ansimake

import (
	"errors"
	"image"
	"image/draw"

	"github.com/disintegration/gift"
)

// ErrOutOfBounds is returned by Sample for coordinates outside the buffer.
var ErrOutOfBounds = errors.New("ansimake: sample coordinates out of bounds")

// PixelBuffer holds decoded image data as a row-major RGBA grid. Every
// buffer owns its pixel storage; operations that change pixels return a
// new buffer rather than mutating in place, so a source image can be
// reused under multiple conversion configs.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8 // 4 bytes per sample, row-major, len == width*height*4
}

func newPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// PixelBufferFromImage copies an image into a fresh row-major RGBA buffer.
func PixelBufferFromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	buf := newPixelBuffer(bounds.Dx(), bounds.Dy())
	draw.Draw(buf.rgba(), buf.rgba().Bounds(), img, bounds.Min, draw.Src)
	return buf
}

// Width returns the buffer width in pixels.
func (p *PixelBuffer) Width() int { return p.width }

// Height returns the buffer height in pixels.
func (p *PixelBuffer) Height() int { return p.height }

// Sample returns the color at (x, y), or ErrOutOfBounds if the coordinates
// fall outside the buffer. Internal callers stay in bounds; this is the
// checked entry point for external use.
func (p *PixelBuffer) Sample(x, y int) (Color, error) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return Color{}, ErrOutOfBounds
	}
	return p.at(x, y), nil
}

func (p *PixelBuffer) at(x, y int) Color {
	i := (y*p.width + x) * 4
	return Color{R: p.pix[i], G: p.pix[i+1], B: p.pix[i+2], A: p.pix[i+3]}
}

// rgba exposes the buffer as an *image.RGBA sharing the same storage.
// The view is only handed to code that either reads it or draws into it
// as a destination; it never escapes the package.
func (p *PixelBuffer) rgba() *image.RGBA {
	return &image.RGBA{
		Pix:    p.pix,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}

// Grayscale returns a new buffer with every pixel replaced by its BT.601
// luminance. The receiver is left untouched. Applying Grayscale to an
// already gray buffer yields identical pixels.
func (p *PixelBuffer) Grayscale() *PixelBuffer {
	out := newPixelBuffer(p.width, p.height)
	gift.New(gift.Grayscale()).Draw(out.rgba(), p.rgba())
	return out
}
