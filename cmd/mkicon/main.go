// mkicon writes the base app icon as a single PNG, using the palette from
// the resolved iconkit config.
// Usage: go run ./cmd/mkicon <output.png> [size]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/local-listen/iconkit/internal/config"
	"github.com/local-listen/iconkit/internal/paths"
	"github.com/local-listen/iconkit/internal/raster"
	"github.com/local-listen/iconkit/internal/render"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: mkicon <output.png> [size]\n")
		os.Exit(1)
	}
	size := 256
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: size must be a number\n")
			os.Exit(1)
		}
		size = n
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	img, err := render.Draw(size, cfg.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := raster.EncodePNG(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := paths.AtomicWrite(os.Args[1], data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
