package ansimake

import (
	"fmt"

	"github.com/1lann/imagequant"
)

// Palette reduction settings passed to libimagequant. Dithering stays off
// so repeated conversions of the same image produce identical bytes.
const (
	reduceSpeed  = 4
	reduceDither = 0.0
)

// ReducePalette rewrites the buffer so it uses at most maxColors distinct
// colors, chosen by libimagequant. This runs before resampling when
// Config.MaxColors is set, trading color fidelity for a smaller escape
// stream.
func ReducePalette(buf *PixelBuffer, maxColors int) (*PixelBuffer, error) {
	attr, err := imagequant.NewAttributes()
	if err != nil {
		return nil, fmt.Errorf("ansimake: NewAttributes: %w", err)
	}
	defer attr.Release()

	if err := attr.SetSpeed(reduceSpeed); err != nil {
		return nil, fmt.Errorf("ansimake: SetSpeed: %w", err)
	}

	if err := attr.SetMaxColors(maxColors); err != nil {
		return nil, fmt.Errorf("ansimake: SetMaxColors: %w", err)
	}

	src := buf.rgba()
	quant, err := imagequant.NewImage(attr, imagequant.GoImageToRgba32(src),
		buf.Width(), buf.Height(), 0)
	if err != nil {
		return nil, fmt.Errorf("ansimake: NewImage: %w", err)
	}
	defer quant.Release()

	res, err := quant.Quantize(attr)
	if err != nil {
		return nil, fmt.Errorf("ansimake: Quantize: %w", err)
	}

	if err := res.SetDitheringLevel(reduceDither); err != nil {
		return nil, fmt.Errorf("ansimake: SetDitheringLevel: %w", err)
	}

	rgb8data, err := res.WriteRemappedImage()
	if err != nil {
		return nil, fmt.Errorf("ansimake: WriteRemappedImage: %w", err)
	}

	remapped := imagequant.Rgb8PaletteToGoImage(res.GetImageWidth(),
		res.GetImageHeight(), rgb8data, res.GetPalette())
	return PixelBufferFromImage(remapped), nil
}
