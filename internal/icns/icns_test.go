package icns

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	jicns "github.com/jackmordaunt/icns/v3"
)

func memResolver(m map[int][]byte) Resolver {
	return func(size int) ([]byte, bool) {
		b, ok := m[size]
		return b, ok
	}
}

func TestBuildTwoVariants(t *testing.T) {
	variants := []Variant{{"ic08", 256}, {"ic09", 512}}
	got, err := Build(variants, memResolver(map[int][]byte{
		256: []byte("PNG256DATA"),
		512: []byte("PNG512DATA"),
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var want bytes.Buffer
	want.WriteString("icns")
	binary.Write(&want, binary.BigEndian, uint32(44))
	want.WriteString("ic08")
	binary.Write(&want, binary.BigEndian, uint32(18))
	want.WriteString("PNG256DATA")
	want.WriteString("ic09")
	binary.Write(&want, binary.BigEndian, uint32(18))
	want.WriteString("PNG512DATA")

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("Build =\n%q\nwant\n%q", got, want.Bytes())
	}
	if len(got) != 44 {
		t.Errorf("len = %d, want 44", len(got))
	}
}

func TestBuildLengthMatchesHeader(t *testing.T) {
	payloads := map[int][]byte{
		16:   bytes.Repeat([]byte{1}, 7),
		32:   bytes.Repeat([]byte{2}, 100),
		128:  {},
		1024: bytes.Repeat([]byte{3}, 4096),
	}
	got, err := Build(Standard, memResolver(payloads))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if string(got[0:4]) != Magic {
		t.Errorf("magic = %q, want %q", got[0:4], Magic)
	}
	total := binary.BigEndian.Uint32(got[4:8])
	if int(total) != len(got) {
		t.Errorf("header length = %d, len(output) = %d", total, len(got))
	}
	want := 8
	for _, p := range payloads {
		want += 8 + len(p)
	}
	if int(total) != want {
		t.Errorf("header length = %d, want %d", total, want)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	payloads := map[int][]byte{
		16:  []byte("sixteen"),
		64:  []byte("sixty-four"),
		512: []byte("five-twelve"),
	}
	data, err := Build(Standard, memResolver(payloads))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantTags := []string{"icp4", "icp6", "ic09"}
	if len(entries) != len(wantTags) {
		t.Fatalf("len(entries) = %d, want %d", len(entries), len(wantTags))
	}
	for i, e := range entries {
		if e.Tag != wantTags[i] {
			t.Errorf("entry %d tag = %q, want %q", i, e.Tag, wantTags[i])
		}
		size := NominalSize(e.Tag)
		if !bytes.Equal(e.Data, payloads[size]) {
			t.Errorf("entry %s payload = %q, want %q", e.Tag, e.Data, payloads[size])
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	resolve := memResolver(map[int][]byte{32: []byte("a"), 256: []byte("bb")})
	first, err := Build(Standard, resolve)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(Standard, resolve)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two builds with identical input differ")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	got, err := Build(Standard, memResolver(nil))
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if got != nil {
		t.Errorf("output = %q, want nil", got)
	}

	if _, err := Build(nil, memResolver(nil)); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("nil variants: err = %v, want ErrEmptyInput", err)
	}
}

func TestBuildReportsMissing(t *testing.T) {
	var missing []string
	w := Writer{OnMissing: func(v Variant) { missing = append(missing, v.Tag) }}
	_, err := w.Build([]Variant{{"ic07", 128}, {"ic08", 256}, {"ic09", 512}},
		memResolver(map[int][]byte{256: []byte("x")}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(missing) != 2 || missing[0] != "ic07" || missing[1] != "ic09" {
		t.Errorf("missing = %v, want [ic07 ic09]", missing)
	}
}

func TestBuildStrict(t *testing.T) {
	w := Writer{Strict: true}
	_, err := w.Build([]Variant{{"ic08", 256}, {"ic09", 512}},
		memResolver(map[int][]byte{256: []byte("x")}))

	var mv *MissingVariantError
	if !errors.As(err, &mv) {
		t.Fatalf("err = %v, want *MissingVariantError", err)
	}
	if mv.Variant.Tag != "ic09" || mv.Variant.Size != 512 {
		t.Errorf("missing variant = %+v", mv.Variant)
	}
}

func TestBuildInvalidVariants(t *testing.T) {
	resolve := memResolver(map[int][]byte{16: []byte("x"), 32: []byte("y")})
	tests := []struct {
		name     string
		variants []Variant
	}{
		{"short tag", []Variant{{"ic8", 16}}},
		{"long tag", []Variant{{"ic088", 16}}},
		{"control byte", []Variant{{"ic\x000", 16}}},
		{"zero size", []Variant{{"icp4", 0}}},
		{"negative size", []Variant{{"icp4", -16}}},
		{"duplicate tag", []Variant{{"icp4", 16}, {"icp4", 32}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.variants, resolve)
			if !errors.Is(err, ErrInvalidVariant) {
				t.Errorf("err = %v, want ErrInvalidVariant", err)
			}
		})
	}
}

func TestBuildPayloadVerbatim(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0, 0xff, 0x00}
	data, err := Build([]Variant{{"ic07", 128}}, memResolver(map[int][]byte{128: payload}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data[16:], payload) {
		t.Errorf("payload = %v, want %v", data[16:], payload)
	}
}

func TestNominalSize(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"icp4", 16}, {"icp5", 32}, {"icp6", 64}, {"ic07", 128},
		{"ic08", 256}, {"ic09", 512}, {"ic10", 1024}, {"is32", 0}, {"", 0},
	}
	for _, tt := range tests {
		if got := NominalSize(tt.tag); got != tt.want {
			t.Errorf("NominalSize(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	valid, err := Build([]Variant{{"ic08", 256}}, memResolver(map[int][]byte{256: []byte("data")}))
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "icnx")

	badTotal := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(badTotal[4:8], uint32(len(valid)+1))

	badEntry := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(badEntry[12:16], 4)

	overrun := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(overrun[12:16], 1000)

	truncated := append(append([]byte(nil), valid...), 'a', 'b')
	binary.BigEndian.PutUint32(truncated[4:8], uint32(len(truncated)))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("icns")},
		{"bad magic", badMagic},
		{"header length mismatch", badTotal},
		{"entry shorter than header", badEntry},
		{"entry overruns file", overrun},
		{"truncated entry header", truncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	data := []byte{'i', 'c', 'n', 's', 0, 0, 0, 8}
	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

// TestParseThirdPartyFile checks that Parse reads files produced by an
// unrelated encoder.
func TestParseThirdPartyFile(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jicns.Encode(&buf, img); err != nil {
		t.Fatalf("jicns.Encode: %v", err)
	}

	entries, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no entries parsed")
	}
	sum := 8
	for _, e := range entries {
		sum += e.Len()
	}
	if sum != buf.Len() {
		t.Errorf("sum of entry lengths = %d, file length %d", sum, buf.Len())
	}
}

func TestEncodeRejectsDuplicateTag(t *testing.T) {
	entries := []Entry{
		{Tag: "icp4", Data: []byte("a")},
		{Tag: "ic07", Data: []byte("b")},
		{Tag: "icp4", Data: []byte("c")},
	}
	if _, err := Encode(entries); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("err = %v, want ErrInvalidVariant", err)
	}
}
