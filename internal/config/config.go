package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/local-listen/iconkit/internal/ico"
	"github.com/local-listen/iconkit/internal/paths"
	"github.com/local-listen/iconkit/internal/render"
)

// ICNS engines.
const (
	EngineAuto     = "auto"     // iconutil when available, else manual
	EngineManual   = "manual"   // built-in container writer
	EngineIconutil = "iconutil" // macOS iconutil only
)

// DefaultBaseSize is the edge length the base icon is drawn at.
const DefaultBaseSize = 1024

// DefaultMainSize is the edge length of icon.png.
const DefaultMainSize = 512

// DefaultPNGSizes is the PNG ladder written as icon-NxN.png.
var DefaultPNGSizes = []int{16, 24, 32, 48, 64, 128, 256, 512, 1024}

// ICNS holds macOS icon options parsed from the "icns" key.
type ICNS struct {
	Engine      string `json:"engine,omitempty" toml:"engine"`
	Strict      bool   `json:"strict,omitempty" toml:"strict"`
	KeepIconset bool   `json:"keep_iconset,omitempty" toml:"keep_iconset"`
}

// Config holds all generation settings.
type Config struct {
	OutDir       string         `json:"out_dir,omitempty" toml:"out_dir"`
	BaseSize     int            `json:"base_size,omitempty" toml:"base_size"`
	MainSize     int            `json:"main_size,omitempty" toml:"main_size"`
	PNGSizes     []int          `json:"png_sizes,omitempty" toml:"png_sizes"`
	ICOSizes     []int          `json:"ico_sizes,omitempty" toml:"ico_sizes"`
	ICNS         ICNS           `json:"icns" toml:"icns"`
	Palette      render.Palette `json:"palette" toml:"palette"`
	Manifest     bool           `json:"manifest" toml:"manifest"`
	ManifestPath string         `json:"manifest_path,omitempty" toml:"manifest_path"`

	// Source is the file the config was read from, empty for defaults.
	Source string `json:"-" toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutDir:   "assets",
		BaseSize: DefaultBaseSize,
		MainSize: DefaultMainSize,
		PNGSizes: append([]int(nil), DefaultPNGSizes...),
		ICOSizes: append([]int(nil), ico.DefaultSizes...),
		ICNS:     ICNS{Engine: EngineAuto},
		Palette:  render.DefaultPalette,
		Manifest: true,
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	*c = Default()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// ManifestFile returns the manifest database path.
func (c Config) ManifestFile() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return filepath.Join(paths.DataDir(), paths.ManifestFileName)
}

// Validate checks sizes, engine and palette.
func (c Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("out_dir must not be empty")
	}
	if c.BaseSize < 16 {
		return fmt.Errorf("base_size must be at least 16, got %d", c.BaseSize)
	}
	if c.MainSize <= 0 {
		return fmt.Errorf("main_size must be positive, got %d", c.MainSize)
	}
	for _, s := range c.PNGSizes {
		if s <= 0 {
			return fmt.Errorf("png_sizes: invalid size %d", s)
		}
	}
	if len(c.ICOSizes) == 0 {
		return fmt.Errorf("ico_sizes must not be empty")
	}
	for _, s := range c.ICOSizes {
		if s <= 0 || s > 256 {
			return fmt.Errorf("ico_sizes: %d out of range 1-256", s)
		}
	}
	switch c.ICNS.Engine {
	case EngineAuto, EngineManual, EngineIconutil:
	default:
		return fmt.Errorf("icns.engine: unknown engine %q (want auto, manual or iconutil)", c.ICNS.Engine)
	}
	return c.Palette.Validate()
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. iconkit.json, then iconkit.toml, in the working directory
//  3. iconkit.json in the user data directory
//
// If none exists the defaults are returned.
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}
	for _, p := range []string{
		paths.ConfigFileName,
		paths.TOMLConfigName,
		filepath.Join(paths.DataDir(), paths.ConfigFileName),
	} {
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}
	return Default(), nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg = Default()
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}
