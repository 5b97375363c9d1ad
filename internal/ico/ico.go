// Package ico writes Windows ICO files.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	goico "github.com/sergeymakinen/go-ico"

	"github.com/local-listen/iconkit/internal/raster"
)

const (
	headerSize    = 6
	directorySize = 16
	maxDimension  = 256
)

// DefaultSizes is the ICO size ladder Windows shells pick from.
var DefaultSizes = []int{16, 24, 32, 48, 256}

// ErrNoImages is returned by Encode when given no images.
var ErrNoImages = errors.New("ico: no images")

type header struct {
	Reserved  uint16
	ImageType uint16
	Count     uint16
}

type directory struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Encode writes a multi-resolution ICO with one PNG-compressed entry per
// image, in the given order.
func Encode(w io.Writer, images []image.Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}

	pngs := make([][]byte, len(images))
	dirs := make([]directory, len(images))
	offset := uint32(headerSize + directorySize*len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() > maxDimension || b.Dy() > maxDimension || b.Dx() <= 0 || b.Dy() <= 0 {
			return fmt.Errorf("ico: image %d is %dx%d (max %dx%d)", i, b.Dx(), b.Dy(), maxDimension, maxDimension)
		}
		data, err := raster.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("ico: image %d: %w", i, err)
		}
		pngs[i] = data
		dirs[i] = directory{
			// 256 is stored as 0.
			Width:       uint8(b.Dx() % maxDimension),
			Height:      uint8(b.Dy() % maxDimension),
			Planes:      1,
			BitCount:    32,
			BytesInRes:  uint32(len(data)),
			ImageOffset: offset,
		}
		offset += uint32(len(data))
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, header{ImageType: 1, Count: uint16(len(images))})
	binary.Write(&buf, binary.LittleEndian, dirs)
	for _, data := range pngs {
		buf.Write(data)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeSizes resizes src to each size and encodes the result.
func EncodeSizes(w io.Writer, src *raster.Ladder, sizes []int) error {
	images := make([]image.Image, 0, len(sizes))
	for _, s := range sizes {
		images = append(images, src.Image(s))
	}
	return Encode(w, images)
}

// EncodeSingle writes a one-image ICO.
func EncodeSingle(w io.Writer, img image.Image) error {
	if err := goico.Encode(w, img); err != nil {
		return fmt.Errorf("ico: %w", err)
	}
	return nil
}
