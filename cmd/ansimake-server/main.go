package main

import (
	"flag"
	"log"
	"os"

	"github.com/jondot/ansimake"
	"github.com/jondot/ansimake/serve"
)

var (
	addr      = flag.String("addr", ":8194", "listen address")
	imagePath = flag.String("image", "", "path of the image to serve")
	width     = flag.Int("w", 80, "default output width in character cells")
	height    = flag.Int("height", 0, "default output height in character cells")
	tolerance = flag.Float64("t", 0, "default quantization tolerance")
	blocks    = flag.Bool("B", false, "default to block mode")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *imagePath == "" {
		log.Println("Usage: ansimake-server -image <path> [options]")
		log.Println("")
		log.Println("Serves rendered ANSI art over HTTP. GET /api/art renders with")
		log.Println("query parameters layered over the defaults below; GET /api/client")
		log.Println("is a websocket taking JSON render requests; POST /api/source")
		log.Println("switches the served image.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := ansimake.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.ColorTolerance = *tolerance
	cfg.UseBlocks = *blocks

	srv, err := serve.New(*imagePath, cfg)
	if err != nil {
		log.Println("Failed to start server:", err)
		os.Exit(1)
	}

	log.Println("ansimake server listening on", *addr)
	if err := srv.Start(*addr); err != nil {
		log.Println("Server stopped:", err)
		os.Exit(1)
	}
}
