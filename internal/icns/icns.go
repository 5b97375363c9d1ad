package icns

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Magic is the four-byte signature at the start of every ICNS file.
const Magic = "icns"

// headerSize is the size of both the file header and each entry header:
// a four-byte type tag followed by a big-endian uint32 length.
const headerSize = 8

var (
	// ErrEmptyInput is returned when no variant resolved to icon data.
	ErrEmptyInput = errors.New("icns: no icon data available")
	// ErrInvalidVariant is returned for a malformed variant list.
	ErrInvalidVariant = errors.New("icns: invalid variant")
)

// MissingVariantError reports a variant whose PNG could not be resolved.
// It is only returned by a strict Writer; the default Writer skips it.
type MissingVariantError struct {
	Variant Variant
}

func (e *MissingVariantError) Error() string {
	return fmt.Sprintf("icns: missing variant %s (%dpx)", e.Variant.Tag, e.Variant.Size)
}

// Variant names an icon slot: its type tag and nominal pixel size.
type Variant struct {
	Tag  string
	Size int
}

// Entry is a resolved variant ready to be written.
type Entry struct {
	Tag  string
	Data []byte
}

// Len returns the on-disk entry length including its header.
func (e Entry) Len() int { return headerSize + len(e.Data) }

// Standard lists the PNG-backed type tags macOS understands, in the order
// they are written.
var Standard = []Variant{
	{"icp4", 16},
	{"icp5", 32},
	{"icp6", 64},
	{"ic07", 128},
	{"ic08", 256},
	{"ic09", 512},
	{"ic10", 1024},
}

// NominalSize returns the pixel size of a Standard tag, or 0 if unknown.
func NominalSize(tag string) int {
	for _, v := range Standard {
		if v.Tag == tag {
			return v.Size
		}
	}
	return 0
}

// Resolver returns the PNG bytes for a pixel size, or false if absent.
type Resolver func(size int) ([]byte, bool)

// Writer assembles ICNS files from a variant list.
type Writer struct {
	// Strict turns a missing variant into a *MissingVariantError.
	Strict bool
	// OnMissing is called for each skipped variant in permissive mode.
	OnMissing func(Variant)
}

// Build resolves variants with the default permissive Writer.
func Build(variants []Variant, resolve Resolver) ([]byte, error) {
	var w Writer
	return w.Build(variants, resolve)
}

// Build resolves each variant in order and returns the encoded file.
// Unresolved variants are skipped unless w.Strict is set.
func (w *Writer) Build(variants []Variant, resolve Resolver) ([]byte, error) {
	if err := validate(variants); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(variants))
	for _, v := range variants {
		data, ok := resolve(v.Size)
		if !ok {
			if w.Strict {
				return nil, &MissingVariantError{Variant: v}
			}
			if w.OnMissing != nil {
				w.OnMissing(v)
			}
			continue
		}
		entries = append(entries, Entry{Tag: v.Tag, Data: data})
	}
	return Encode(entries)
}

// Encode serializes entries verbatim in the given order. A tag may appear
// only once.
func Encode(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyInput
	}
	total := headerSize
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !validTag(e.Tag) {
			return nil, fmt.Errorf("%w: tag %q", ErrInvalidVariant, e.Tag)
		}
		if seen[e.Tag] {
			return nil, fmt.Errorf("%w: duplicate tag %s", ErrInvalidVariant, e.Tag)
		}
		seen[e.Tag] = true
		total += e.Len()
	}
	if uint64(total) > math.MaxUint32 {
		return nil, fmt.Errorf("icns: file too large (%d bytes)", total)
	}

	buf := make([]byte, 0, total)
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(total))
	for _, e := range entries {
		buf = append(buf, e.Tag...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(e.Len()))
		buf = append(buf, e.Data...)
	}
	return buf, nil
}

func validate(variants []Variant) error {
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if !validTag(v.Tag) {
			return fmt.Errorf("%w: tag %q", ErrInvalidVariant, v.Tag)
		}
		if v.Size <= 0 {
			return fmt.Errorf("%w: %s has size %d", ErrInvalidVariant, v.Tag, v.Size)
		}
		if seen[v.Tag] {
			return fmt.Errorf("%w: duplicate tag %s", ErrInvalidVariant, v.Tag)
		}
		seen[v.Tag] = true
	}
	return nil
}

// validTag reports whether tag is four printable ASCII bytes.
func validTag(tag string) bool {
	if len(tag) != 4 {
		return false
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x20 || tag[i] > 0x7e {
			return false
		}
	}
	return true
}
