package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/jondot/ansimake"
)

var (
	bw        bool
	width     int
	height    int
	tolerance float64
	blocks    bool
	shade     bool
	aspect    float64
	maxColors int
	workers   int
)

func init() {
	flag.BoolVar(&bw, "b", false, "convert to grayscale before rendering")
	flag.BoolVar(&bw, "bw", false, "convert to grayscale before rendering")
	flag.IntVar(&width, "w", 0, "output width in character cells")
	flag.IntVar(&width, "width", 0, "output width in character cells")
	flag.IntVar(&height, "height", 0, "output height in character cells")
	flag.Float64Var(&tolerance, "t", 0, "color quantization tolerance (delta-E, 0 disables)")
	flag.Float64Var(&tolerance, "tolerance", 0, "color quantization tolerance (delta-E, 0 disables)")
	flag.BoolVar(&blocks, "B", false, "use block mode instead of half-block mode")
	flag.BoolVar(&blocks, "blocks", false, "use block mode instead of half-block mode")
	flag.BoolVar(&shade, "shade", false, "use a brightness glyph ramp in block mode")
	flag.Float64Var(&aspect, "aspect", ansimake.DefaultAspectRatio,
		"vertical aspect correction used when deriving one dimension")
	flag.IntVar(&maxColors, "max-colors", 0, "cap the source palette at N colors (0 disables)")
	flag.IntVar(&workers, "workers", 1, "number of resampling goroutines")
}

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	if flag.Arg(0) == "" {
		log.Println("Usage: ansimake [options] input_image")
		log.Println("")
		log.Println("Ansimake converts an image (PNG, JPEG, GIF, BMP, TIFF or WebP) into")
		log.Println("terminal text colored with 24-bit escape sequences. By default each")
		log.Println("character cell renders two stacked pixels via the upper half block;")
		log.Println("-B renders one solid block per cell instead.")
		log.Println("")
		log.Println("With no -w or -height the output is fitted to the terminal.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if tolerance < 0 {
		log.Println("Tolerance cannot be less than 0.")
		os.Exit(1)
	}

	if width < 0 || height < 0 {
		log.Println("Width and height cannot be less than 0.")
		os.Exit(1)
	}

	if maxColors < 0 || maxColors > 256 {
		log.Println("Max colors must be between 0 and 256.")
		os.Exit(1)
	}

	img, err := ansimake.Load(flag.Arg(0))
	if err != nil {
		log.Println("Failed to load image:", err)
		os.Exit(1)
	}

	cfg := ansimake.DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.UseBlocks = blocks
	cfg.Shade = shade
	cfg.ColorTolerance = tolerance
	cfg.BW = bw
	cfg.AspectRatio = aspect
	cfg.MaxColors = maxColors
	cfg.Workers = workers

	if cfg.Width == 0 && cfg.Height == 0 {
		termW, termH := terminalSize()
		cfg.Width, cfg.Height = ansimake.FitSize(img.Width(), img.Height(),
			termW-2, termH-2, cfg.AspectRatio)
	}

	art, err := img.Convert(cfg)
	if err != nil {
		log.Println("Failed to convert image:", err)
		os.Exit(1)
	}

	if _, err := os.Stdout.WriteString(art); err != nil {
		log.Println("Failed to write output:", err)
		os.Exit(1)
	}
}
