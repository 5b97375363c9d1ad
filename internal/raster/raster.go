// Package raster resizes and encodes the square bitmaps every icon format
// is built from.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Resize scales a square source to size×size with a Lanczos filter.
func Resize(src image.Image, size int) *image.NRGBA {
	return imaging.Resize(src, size, size, imaging.Lanczos)
}

// Fit scales src to fit inside a transparent size×size canvas, preserving
// its aspect ratio and centring it.
func Fit(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	scale := math.Min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX := (size - w) / 2
	offY := (size - h) / 2
	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+w, offY+h), src, b, xdraw.Over, nil)
	return dst
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Load decodes an image file.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	return img, nil
}

// Ladder produces PNG encodings of one source at many sizes, resizing and
// encoding each size at most once.
type Ladder struct {
	src  image.Image
	pngs map[int][]byte
}

// NewLadder returns a Ladder over a square source image.
func NewLadder(src image.Image) *Ladder {
	return &Ladder{src: src, pngs: make(map[int][]byte)}
}

// Image returns the source resized to size×size.
func (l *Ladder) Image(size int) image.Image {
	if b := l.src.Bounds(); b.Dx() == size && b.Dy() == size {
		return l.src
	}
	return Resize(l.src, size)
}

// PNG returns the PNG encoding of the source at size×size.
func (l *Ladder) PNG(size int) ([]byte, error) {
	if data, ok := l.pngs[size]; ok {
		return data, nil
	}
	if size <= 0 {
		return nil, fmt.Errorf("raster: invalid size %d", size)
	}
	data, err := EncodePNG(l.Image(size))
	if err != nil {
		return nil, err
	}
	l.pngs[size] = data
	return data, nil
}
