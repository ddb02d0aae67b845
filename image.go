// Package ansimake converts raster images into terminal text annotated
// with 24-bit color escape sequences. The pipeline decodes an image into
// a pixel buffer, box-filters it onto a character cell grid, optionally
// clusters near-identical colors in CIELAB space, and serializes the grid
// with minimal escape transitions.
package ansimake

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidDimensions is returned when a conversion is requested with no
// usable target grid size.
var ErrInvalidDimensions = errors.New("ansimake: output dimensions must be positive")

// Image is a decoded source image ready for conversion. It owns its pixel
// data; Grayscale returns a derived copy, leaving the receiver reusable
// under multiple configs.
type Image struct {
	buf *PixelBuffer
}

// Load reads and decodes the image at path. PNG, JPEG, GIF, BMP, TIFF and
// WebP are understood. Decode failures are returned with the path attached.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ansimake: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ansimake: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes image bytes from a reader.
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(src), nil
}

// FromImage wraps an already decoded image.
func FromImage(src image.Image) *Image {
	return &Image{buf: PixelBufferFromImage(src)}
}

// Width returns the source width in pixels.
func (img *Image) Width() int { return img.buf.Width() }

// Height returns the source height in pixels.
func (img *Image) Height() int { return img.buf.Height() }

// Buffer returns the image's pixel buffer.
func (img *Image) Buffer() *PixelBuffer { return img.buf }

// Grayscale returns a desaturated copy of the image.
func (img *Image) Grayscale() *Image {
	return &Image{buf: img.buf.Grayscale()}
}

// Config parameterizes a single conversion call.
type Config struct {
	// Width and Height give the target grid in character cells. If one is
	// zero it is derived from the source aspect ratio; both zero is an
	// error.
	Width  int
	Height int

	// UseBlocks selects block mode (one color per cell) instead of the
	// default half-block mode (two stacked colors per cell).
	UseBlocks bool

	// Shade replaces the solid block glyph with a brightness ramp in
	// block mode.
	Shade bool

	// ColorTolerance is the delta-E threshold for clustering near-equal
	// colors. Zero disables quantization.
	ColorTolerance float64

	// BW desaturates the image before resampling.
	BW bool

	// AlphaThreshold is the minimum averaged alpha for a cell region to
	// be drawn. Regions below it render as uncolored blanks.
	AlphaThreshold uint8

	// AspectRatio is the vertical correction used when deriving one grid
	// dimension from the other; zero means DefaultAspectRatio.
	AspectRatio float64

	// Workers bounds the number of goroutines resampling rows. Zero or
	// one keeps the conversion single-threaded. Output does not depend
	// on the value.
	Workers int

	// MaxColors, when positive, caps the number of distinct source colors
	// via libimagequant before resampling. Must not exceed 256.
	MaxColors int
}

// DefaultConfig returns a config with the defaults the CLI uses: half-block
// mode, alpha threshold 128, no quantization.
func DefaultConfig() Config {
	return Config{
		AlphaThreshold: 128,
		AspectRatio:    DefaultAspectRatio,
	}
}

func (c *Config) validate() error {
	if c.Width <= 0 && c.Height <= 0 {
		return ErrInvalidDimensions
	}
	if c.Width < 0 || c.Height < 0 {
		return ErrInvalidDimensions
	}
	if c.MaxColors < 0 || c.MaxColors > 256 {
		return errors.New("ansimake: MaxColors must be between 0 and 256")
	}
	return nil
}

// Convert runs the full pipeline and returns the escape-coded text. The
// source image is not modified; any failure aborts before output exists.
func (img *Image) Convert(cfg Config) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}

	buf := img.buf
	if cfg.BW {
		buf = buf.Grayscale()
	}

	if cfg.MaxColors > 0 {
		reduced, err := ReducePalette(buf, cfg.MaxColors)
		if err != nil {
			return "", err
		}
		buf = reduced
	}

	cols, rows, err := DeriveSize(buf.Width(), buf.Height(),
		cfg.Width, cfg.Height, cfg.AspectRatio)
	if err != nil {
		return "", err
	}

	grid := resampleGrid(buf, cfg, cols, rows)
	quantizeGrid(grid, cfg.ColorTolerance)

	return RenderANSI(grid), nil
}
