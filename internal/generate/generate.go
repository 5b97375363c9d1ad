// Package generate drives a full icon build: base image, PNG ladder, ICO,
// iconset and ICNS, recording every written file in the manifest.
package generate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/local-listen/iconkit/internal/config"
	"github.com/local-listen/iconkit/internal/console"
	"github.com/local-listen/iconkit/internal/icns"
	"github.com/local-listen/iconkit/internal/ico"
	"github.com/local-listen/iconkit/internal/iconset"
	"github.com/local-listen/iconkit/internal/iconutil"
	"github.com/local-listen/iconkit/internal/manifest"
	"github.com/local-listen/iconkit/internal/paths"
	"github.com/local-listen/iconkit/internal/raster"
	"github.com/local-listen/iconkit/internal/render"
)

// FixICOSize is the edge length of the single-image ICO written by FixICO.
const FixICOSize = 256

// Report lists what a run wrote.
type Report struct {
	Artifacts []manifest.Artifact
	// ICNSEngine is the engine that produced the ICNS file.
	ICNSEngine string
	RunID      int64
}

// Has reports whether an artifact of the given kind was written.
func (r *Report) Has(kind string) bool {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Generator writes icon assets according to a Config.
type Generator struct {
	cfg   config.Config
	out   *console.Printer
	store manifest.Store

	iconutilAvailable func() bool
	iconutilConvert   func(ctx context.Context, iconsetDir, icnsPath string) error
}

// New returns a Generator. store may be nil to skip recording.
func New(cfg config.Config, out *console.Printer, store manifest.Store) *Generator {
	return &Generator{
		cfg:               cfg,
		out:               out,
		store:             store,
		iconutilAvailable: iconutil.Available,
		iconutilConvert:   iconutil.Convert,
	}
}

// Run performs the full build.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	rep := &Report{}
	outDir := g.cfg.OutDir

	base, err := render.Draw(g.cfg.BaseSize, g.cfg.Palette)
	if err != nil {
		return nil, err
	}
	ladder := raster.NewLadder(base)

	// PNG ladder plus the main icon.png.
	for _, s := range g.cfg.PNGSizes {
		if err := g.writePNG(rep, ladder, s, filepath.Join(outDir, paths.PNGName(s))); err != nil {
			return rep, err
		}
	}
	if err := g.writePNG(rep, ladder, g.cfg.MainSize, filepath.Join(outDir, paths.MainPNGName)); err != nil {
		return rep, err
	}
	g.out.Step("Generated PNG icons")

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	var buf bytes.Buffer
	if err := ico.EncodeSizes(&buf, ladder, g.cfg.ICOSizes); err != nil {
		return rep, err
	}
	icoPath := filepath.Join(outDir, paths.ICOName)
	if err := g.write(rep, icoPath, manifest.KindICO, buf.Bytes()); err != nil {
		return rep, err
	}
	g.out.Step("Generated Windows ICO file")

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	setDir := filepath.Join(outDir, paths.IconsetDirName)
	written, err := iconset.Write(setDir, ladder)
	if err != nil {
		return rep, err
	}
	icnsPath := filepath.Join(outDir, paths.ICNSName)
	engine, err := g.icns(ctx, setDir, icnsPath)
	if err != nil {
		return rep, err
	}
	data, err := os.ReadFile(icnsPath)
	if err != nil {
		return rep, err
	}
	rep.Artifacts = append(rep.Artifacts, manifest.NewArtifact(icnsPath, manifest.KindICNS, data))
	rep.ICNSEngine = engine
	g.out.Step("Generated macOS ICNS file using %s", engine)

	if g.cfg.ICNS.KeepIconset {
		for _, p := range written {
			data, err := os.ReadFile(p)
			if err != nil {
				return rep, err
			}
			rep.Artifacts = append(rep.Artifacts, manifest.NewArtifact(p, manifest.KindIconset, data))
		}
		g.out.Info("PNG files for iconset have been kept in: %s", setDir)
	} else if err := os.RemoveAll(setDir); err != nil {
		g.out.Warn("removing %s: %v", setDir, err)
	}

	rep.RunID = g.record("generate", outDir, rep.Artifacts)
	return rep, nil
}

// icns writes icnsPath from setDir with the configured engine and returns
// the engine used.
func (g *Generator) icns(ctx context.Context, setDir, icnsPath string) (string, error) {
	switch g.cfg.ICNS.Engine {
	case config.EngineIconutil:
		if err := g.iconutilConvert(ctx, setDir, icnsPath); err != nil {
			return "", err
		}
		return config.EngineIconutil, nil
	case config.EngineAuto:
		if g.iconutilAvailable() {
			err := g.iconutilConvert(ctx, setDir, icnsPath)
			if err == nil {
				return config.EngineIconutil, nil
			}
			g.out.Warn("%v; falling back to built-in ICNS writer", err)
		}
	}
	data, err := g.buildICNS(setDir, g.cfg.ICNS.Strict)
	if err != nil {
		return "", err
	}
	if err := paths.AtomicWrite(icnsPath, data); err != nil {
		return "", err
	}
	return config.EngineManual, nil
}

func (g *Generator) buildICNS(setDir string, strict bool) ([]byte, error) {
	w := icns.Writer{
		Strict: strict,
		OnMissing: func(v icns.Variant) {
			g.out.Warn("icns: no %dx%d PNG for %s, skipping", v.Size, v.Size, v.Tag)
		},
	}
	return w.Build(icns.Standard, iconset.Dir(setDir, func(err error) {
		g.out.Warn("%v", err)
	}))
}

// BuildICNS writes an ICNS file from an existing iconset directory with the
// built-in writer.
func (g *Generator) BuildICNS(setDir, icnsPath string, strict bool) (manifest.Artifact, error) {
	data, err := g.buildICNS(setDir, strict)
	if err != nil {
		return manifest.Artifact{}, err
	}
	if err := paths.AtomicWrite(icnsPath, data); err != nil {
		return manifest.Artifact{}, err
	}
	a := manifest.NewArtifact(icnsPath, manifest.KindICNS, data)
	g.record("icns", filepath.Dir(icnsPath), []manifest.Artifact{a})
	return a, nil
}

// FixICO converts a PNG into a single-image 256×256 ICO.
func (g *Generator) FixICO(srcPath, icoPath string) (manifest.Artifact, error) {
	img, err := raster.Load(srcPath)
	if err != nil {
		return manifest.Artifact{}, err
	}
	data, err := encodeFixICO(img)
	if err != nil {
		return manifest.Artifact{}, err
	}
	if err := paths.AtomicWrite(icoPath, data); err != nil {
		return manifest.Artifact{}, err
	}
	a := manifest.NewArtifact(icoPath, manifest.KindICO, data)
	g.record("ico", filepath.Dir(icoPath), []manifest.Artifact{a})
	return a, nil
}

// encodeFixICO fits img into a FixICOSize square and encodes it as ICO.
func encodeFixICO(img image.Image) ([]byte, error) {
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("ico: source image is empty (%dx%d)", b.Dx(), b.Dy())
	}
	var buf bytes.Buffer
	if err := ico.EncodeSingle(&buf, raster.Fit(img, FixICOSize)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writePNG(rep *Report, ladder *raster.Ladder, size int, path string) error {
	data, err := ladder.PNG(size)
	if err != nil {
		return err
	}
	return g.write(rep, path, manifest.KindPNG, data)
}

func (g *Generator) write(rep *Report, path, kind string, data []byte) error {
	if err := paths.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	rep.Artifacts = append(rep.Artifacts, manifest.NewArtifact(path, kind, data))
	return nil
}

// record stores a run in the manifest. Failures are reported but do not
// fail the build.
func (g *Generator) record(command, outDir string, arts []manifest.Artifact) int64 {
	if g.store == nil {
		return 0
	}
	id, err := g.store.Record(manifest.Run{
		Time:      time.Now(),
		Command:   command,
		OutDir:    outDir,
		Artifacts: arts,
	})
	if err != nil {
		g.out.Warn("manifest: %v", err)
		return 0
	}
	return id
}
