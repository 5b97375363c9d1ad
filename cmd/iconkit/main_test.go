package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/local-listen/iconkit/internal/config"
	"github.com/local-listen/iconkit/internal/console"
	"github.com/local-listen/iconkit/internal/generate"
	"github.com/local-listen/iconkit/internal/icns"
	"github.com/local-listen/iconkit/internal/manifest"
	"github.com/local-listen/iconkit/internal/raster"
	"github.com/local-listen/iconkit/internal/render"
)

func TestParseArgs(t *testing.T) {
	opts, rest, err := parseArgs([]string{"-c", "cfg.toml", "icns", "--strict", "in.iconset", "-o", "dist", "out.icns"})
	if err != nil {
		t.Fatal(err)
	}
	want := options{configPath: "cfg.toml", outDir: "dist", strict: true}
	if opts != want {
		t.Errorf("opts = %+v, want %+v", opts, want)
	}
	if !reflect.DeepEqual(rest, []string{"icns", "in.iconset", "out.icns"}) {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseArgsMissingValue(t *testing.T) {
	for _, flag := range []string{"--config", "-c", "--out", "-o"} {
		if _, _, err := parseArgs([]string{flag}); err == nil {
			t.Errorf("parseArgs(%q) should fail without a value", flag)
		}
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	cfg, err := loadConfig(options{outDir: "public/assets", strict: true, noManifest: true})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.OutDir != "public/assets" || !cfg.ICNS.Strict || cfg.Manifest {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ICNS.Engine != config.EngineAuto {
		t.Errorf("Engine = %q, want default", cfg.ICNS.Engine)
	}
}

func TestInspect(t *testing.T) {
	img, err := render.Draw(32, render.DefaultPalette)
	if err != nil {
		t.Fatal(err)
	}
	l := raster.NewLadder(img)
	p16, _ := l.PNG(16)
	p32, _ := l.PNG(32)
	data, err := icns.Encode([]icns.Entry{
		{Tag: "icp4", Data: p16},
		{Tag: "icp5", Data: p32},
		{Tag: "info", Data: []byte("not a png")},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := inspect(&buf, data); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"icp4", "16x16", "icp5", "32x32", "info", "3 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	if err := inspect(&bytes.Buffer{}, []byte("not an icns file")); err == nil {
		t.Error("expected error")
	}
}

func TestHistory(t *testing.T) {
	s, err := manifest.NewSQLiteStore(filepath.Join(t.TempDir(), "iconkit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var buf bytes.Buffer
	if err := history(&buf, s, 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Errorf("empty history output = %q", buf.String())
	}

	_, err = s.Record(manifest.Run{
		Time:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Command:   "generate",
		OutDir:    "assets",
		Artifacts: []manifest.Artifact{manifest.NewArtifact("assets/icon.icns", manifest.KindICNS, []byte("x"))},
	})
	if err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := history(&buf, s, 10); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"#1", "generate", "assets/icon.icns", "icns"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildICNSHonoursConfigStrict(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("APPDATA", t.TempDir())
	cfgPath := filepath.Join(dir, "strict.json")
	if err := os.WriteFile(cfgPath, []byte(`{"icns":{"strict":true},"manifest":false}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(options{configPath: cfgPath})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.ICNS.Strict {
		t.Fatal("icns.strict not loaded from config")
	}

	img, err := render.Draw(16, render.DefaultPalette)
	if err != nil {
		t.Fatal(err)
	}
	png16, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	setDir := filepath.Join(dir, "partial.iconset")
	if err := os.MkdirAll(setDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(setDir, "icon_16x16.png"), png16, 0644); err != nil {
		t.Fatal(err)
	}

	g := generate.New(cfg, console.NewPlain(&bytes.Buffer{}, &bytes.Buffer{}), nil)
	icnsPath := filepath.Join(dir, "out.icns")
	_, err = buildICNS(g, cfg, setDir, icnsPath)
	var missing *icns.MissingVariantError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *icns.MissingVariantError", err)
	}
	if _, err := os.Stat(icnsPath); !os.IsNotExist(err) {
		t.Errorf("ICNS file written despite strict failure: %v", err)
	}
}

func TestOpenHistoryManifestDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Manifest = false
	cfg.ManifestPath = filepath.Join(t.TempDir(), "data", "iconkit.db")

	s, err := openHistory(cfg)
	if !errors.Is(err, errManifestDisabled) {
		t.Fatalf("err = %v, want errManifestDisabled", err)
	}
	if s != nil {
		s.Close()
		t.Error("store returned for disabled manifest")
	}
	if _, err := os.Stat(filepath.Dir(cfg.ManifestPath)); !os.IsNotExist(err) {
		t.Errorf("manifest dir created: %v", err)
	}
}

func TestOpenHistoryManifestEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.ManifestPath = filepath.Join(t.TempDir(), "iconkit.db")

	s, err := openHistory(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Path() != cfg.ManifestPath {
		t.Errorf("Path() = %q, want %q", s.Path(), cfg.ManifestPath)
	}
}
