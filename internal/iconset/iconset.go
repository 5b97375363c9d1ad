// Package iconset reads and writes Apple .iconset directories and adapts
// them into PNG resolvers for the ICNS writer.
package iconset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/local-listen/iconkit/internal/icns"
	"github.com/local-listen/iconkit/internal/paths"
)

// Slot is one file of an iconset: a point size at a scale factor.
type Slot struct {
	Points int
	Scale  int
}

// Pixels returns the slot's pixel size.
func (s Slot) Pixels() int { return s.Points * s.Scale }

// FileName returns the iconset file name, e.g. icon_16x16@2x.png.
func (s Slot) FileName() string {
	if s.Scale == 1 {
		return fmt.Sprintf("icon_%dx%d.png", s.Points, s.Points)
	}
	return fmt.Sprintf("icon_%dx%d@%dx.png", s.Points, s.Points, s.Scale)
}

// Slots lists the files iconutil expects in an iconset.
var Slots = []Slot{
	{16, 1}, {16, 2},
	{32, 1}, {32, 2},
	{128, 1}, {128, 2},
	{256, 1}, {256, 2},
	{512, 1}, {512, 2},
}

// Memory resolves sizes from an in-memory map.
func Memory(pngs map[int][]byte) icns.Resolver {
	return func(size int) ([]byte, bool) {
		data, ok := pngs[size]
		return data, ok
	}
}

// Dir resolves a pixel size from an iconset directory: icon_NxN.png first,
// then the @2x file of half the size, which has the same pixel count.
// Read errors other than a missing file are passed to onErr (if non-nil)
// and the size is treated as absent.
func Dir(dir string, onErr func(error)) icns.Resolver {
	return func(size int) ([]byte, bool) {
		candidates := []Slot{{size, 1}}
		if size%2 == 0 {
			candidates = append(candidates, Slot{size / 2, 2})
		}
		for _, s := range candidates {
			data, err := os.ReadFile(filepath.Join(dir, s.FileName()))
			if err == nil {
				return data, true
			}
			if !errors.Is(err, fs.ErrNotExist) && onErr != nil {
				onErr(fmt.Errorf("iconset: %w", err))
			}
		}
		return nil, false
	}
}

// PNGSource returns PNG bytes for a pixel size.
type PNGSource interface {
	PNG(size int) ([]byte, error)
}

// Write renders every slot into dir and returns the written paths.
func Write(dir string, src PNGSource) ([]string, error) {
	if err := os.MkdirAll(dir, paths.DirPerm); err != nil {
		return nil, fmt.Errorf("iconset: %w", err)
	}
	written := make([]string, 0, len(Slots))
	for _, s := range Slots {
		data, err := src.PNG(s.Pixels())
		if err != nil {
			return written, fmt.Errorf("iconset: %s: %w", s.FileName(), err)
		}
		p := filepath.Join(dir, s.FileName())
		if err := paths.AtomicWrite(p, data); err != nil {
			return written, fmt.Errorf("iconset: %w", err)
		}
		written = append(written, p)
	}
	return written, nil
}
