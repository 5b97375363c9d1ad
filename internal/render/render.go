// Package render draws the base application icon: a microphone emblem on a
// two-tone disc with sound waves on either side. All geometry is
// proportional to the requested size.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the hex colours of the emblem.
type Palette struct {
	Background string `json:"background,omitempty" toml:"background"`
	Inner      string `json:"inner,omitempty" toml:"inner"`
	Foreground string `json:"foreground,omitempty" toml:"foreground"`
	Grille     string `json:"grille,omitempty" toml:"grille"`
	Wave       string `json:"wave,omitempty" toml:"wave"`
}

// DefaultPalette is the slate-blue scheme the icon ships with.
var DefaultPalette = Palette{
	Background: "#4A5568",
	Inner:      "#5B6B7F",
	Foreground: "#E2E8F0",
	Grille:     "#A0AEC0",
	Wave:       "#94A3B8",
}

type colors struct {
	background, inner, foreground, grille, wave colorful.Color
}

// Validate reports the first colour that does not parse.
func (p Palette) Validate() error {
	_, err := p.parse()
	return err
}

func (p Palette) parse() (colors, error) {
	var c colors
	for _, f := range []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"background", p.Background, &c.background},
		{"inner", p.Inner, &c.inner},
		{"foreground", p.Foreground, &c.foreground},
		{"grille", p.Grille, &c.grille},
		{"wave", p.Wave, &c.wave},
	} {
		col, err := colorful.Hex(f.hex)
		if err != nil {
			return colors{}, fmt.Errorf("render: palette %s %q: %w", f.name, f.hex, err)
		}
		*f.dst = col
	}
	return c, nil
}

// Draw renders the icon at size×size on a transparent background.
func Draw(size int, p Palette) (image.Image, error) {
	if size < 16 {
		return nil, fmt.Errorf("render: size %d too small (min 16)", size)
	}
	c, err := p.parse()
	if err != nil {
		return nil, err
	}

	s := float64(size)
	dc := gg.NewContext(size, size)
	cx, cy := s/2, s/2

	// Outer disc, shaded from the inner colour at the centre outwards.
	outerR := s/2 - s/8
	grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, outerR)
	grad.AddColorStop(0, c.inner)
	grad.AddColorStop(0.7, c.inner.BlendLab(c.background, 0.6).Clamped())
	grad.AddColorStop(1, c.background)
	dc.DrawCircle(cx, cy, outerR)
	dc.SetFillStyle(grad)
	dc.Fill()

	dc.DrawCircle(cx, cy, s/2-s/6)
	dc.SetColor(c.inner)
	dc.Fill()

	micW := s / 4
	micH := s / 2.5
	micX := (s - micW) / 2
	micY := (s-micH)/2 - s/20

	// Body with grille lines.
	bodyX0, bodyX1 := micX+micW/3, micX+2*micW/3
	dc.DrawRoundedRectangle(bodyX0, micY, bodyX1-bodyX0, micH/2, micW/6)
	dc.SetColor(c.foreground)
	dc.Fill()

	inset := math.Max(1, s/200)
	spacing := micH / 12
	dc.SetLineWidth(math.Max(2, s/200))
	dc.SetColor(c.grille)
	for i := 1; i <= 3; i++ {
		y := micY + spacing*float64(i)
		dc.DrawLine(bodyX0+inset, y, bodyX1-inset, y)
		dc.Stroke()
	}

	// Stand and base.
	standW := micW / 6
	standY := micY + micH/2
	standH := micH / 4
	dc.DrawRectangle((s-standW)/2, standY, standW, standH)
	dc.SetColor(c.foreground)
	dc.Fill()

	baseW := micW / 2
	baseY := standY + standH - s/50
	baseH := s / 20
	dc.DrawEllipse(s/2, baseY+baseH/2, baseW/2, baseH/2)
	dc.Fill()

	// Sound waves: three arcs on each side, widening outwards.
	dc.SetColor(c.wave)
	dc.SetLineWidth(math.Max(3, s/150))
	top := micY - s/20
	bottom := micY + micH/2 + s/20
	ry := (bottom - top) / 2
	midY := top + ry
	for i := 1; i <= 3; i++ {
		offset := float64(i) * s / 16
		rx := offset / 2

		dc.DrawEllipticalArc(micX-rx, midY, rx, ry, gg.Radians(120), gg.Radians(240))
		dc.Stroke()

		dc.DrawEllipticalArc(micX+micW+rx, midY, rx, ry, gg.Radians(-60), gg.Radians(60))
		dc.Stroke()
	}

	return dc.Image(), nil
}
