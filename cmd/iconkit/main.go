package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"

	"github.com/local-listen/iconkit/internal/config"
	"github.com/local-listen/iconkit/internal/console"
	"github.com/local-listen/iconkit/internal/generate"
	"github.com/local-listen/iconkit/internal/manifest"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// options holds the global flags.
type options struct {
	configPath string
	outDir     string
	strict     bool
	noManifest bool
}

// parseArgs splits global flags from the command and its arguments.
func parseArgs(args []string) (options, []string, error) {
	var opts options
	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--config requires a file path")
			}
			opts.configPath = args[i+1]
			i++
		case "--out", "-o":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--out requires a directory")
			}
			opts.outDir = args[i+1]
			i++
		case "--strict":
			opts.strict = true
		case "--no-manifest":
			opts.noManifest = true
		default:
			filtered = append(filtered, args[i])
		}
	}
	return opts, filtered, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.outDir != "" {
		cfg.OutDir = opts.outDir
	}
	if opts.strict {
		cfg.ICNS.Strict = true
	}
	if opts.noManifest {
		cfg.Manifest = false
	}
	return cfg, cfg.Validate()
}

func main() {
	opts, args, err := parseArgs(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	cmd := "generate"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "generate":
		runGenerate(opts)
	case "icns":
		if len(args) != 2 {
			fatal(fmt.Errorf("usage: iconkit icns <iconset-dir> <out.icns> [--strict]"))
		}
		runICNS(opts, args[0], args[1])
	case "ico":
		if len(args) != 2 {
			fatal(fmt.Errorf("usage: iconkit ico <src.png> <out.ico>"))
		}
		runICO(opts, args[0], args[1])
	case "inspect":
		if len(args) != 1 {
			fatal(fmt.Errorf("usage: iconkit inspect <file.icns>"))
		}
		runInspect(args[0])
	case "history":
		limit := 10
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				fatal(fmt.Errorf("history count must be a non-negative number"))
			}
			limit = n
		}
		runHistory(opts, limit)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		fmt.Fprintf(os.Stderr, "Run 'iconkit help' for usage.\n")
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// openStore opens the manifest store, or returns nil if disabled or
// unavailable. The manifest is best-effort and never blocks a build.
func openStore(cfg config.Config, out *console.Printer) manifest.Store {
	if !cfg.Manifest {
		return nil
	}
	s, err := manifest.NewSQLiteStore(cfg.ManifestFile())
	if err != nil {
		out.Warn("manifest: %v", err)
		return nil
	}
	return s
}

func newGenerator(opts options) (*generate.Generator, config.Config, func()) {
	cfg, err := loadConfig(opts)
	if err != nil {
		fatal(err)
	}
	out := console.New()
	store := openStore(cfg, out)
	closeFn := func() {}
	if store != nil {
		closeFn = func() { store.Close() }
	}
	return generate.New(cfg, out, store), cfg, closeFn
}

func runGenerate(opts options) {
	g, cfg, closeStore := newGenerator(opts)
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := console.New()
	out.Info("Generating app icons in %s...", cfg.OutDir)
	rep, err := g.Run(ctx)
	if err != nil {
		closeStore()
		fatal(err)
	}

	out.Info("")
	out.Step("Icon generation complete!")
	out.Info("Generated files:")
	out.Item("PNG icons (various sizes)")
	if rep.Has(manifest.KindICO) {
		out.Item("icon.ico (Windows)")
	}
	if rep.Has(manifest.KindICNS) {
		out.Item("icon.icns (macOS, %s)", rep.ICNSEngine)
	}
}

func runICNS(opts options, iconsetDir, icnsPath string) {
	g, cfg, closeStore := newGenerator(opts)
	defer closeStore()

	a, err := buildICNS(g, cfg, iconsetDir, icnsPath)
	if err != nil {
		closeStore()
		fatal(err)
	}
	console.New().Step("Created ICNS file: %s (%d bytes)", a.Path, a.Bytes)
}

// buildICNS runs the built-in writer over an iconset. cfg.ICNS.Strict
// already includes --strict (see loadConfig).
func buildICNS(g *generate.Generator, cfg config.Config, iconsetDir, icnsPath string) (manifest.Artifact, error) {
	return g.BuildICNS(iconsetDir, icnsPath, cfg.ICNS.Strict)
}

func runICO(opts options, srcPath, icoPath string) {
	g, _, closeStore := newGenerator(opts)
	defer closeStore()

	a, err := g.FixICO(srcPath, icoPath)
	if err != nil {
		closeStore()
		fatal(err)
	}
	console.New().Step("Created Windows ICO with %dx%d icon: %s", generate.FixICOSize, generate.FixICOSize, a.Path)
}

func printVersion() {
	fmt.Printf("iconkit %s (%s) %s/%s\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("iconkit %s - Generate application icon assets\n", version)
	fmt.Println(`
Usage:
  iconkit [options] [command]

Options:
  --config, -c <path>    Path to iconkit.json or iconkit.toml
  --out, -o <dir>        Output directory (overrides out_dir)
  --strict               Fail if an ICNS size is missing instead of skipping it
  --no-manifest          Do not record this run in the manifest database

Commands:
  generate               Draw the base icon and write PNG, ICO and ICNS (default)
  icns <dir> <out>       Build an ICNS file from an existing .iconset directory
  ico <png> <out>        Convert a PNG into a single 256x256 ICO
  inspect <file.icns>    List the entries of an ICNS file
  history [n]            Show the last n generation runs (default 10)
  version, -V            Show version and build date
  help, -h, --help       Show this help message

Config resolution:
  1. --config <path>              (explicit)
  2. ./iconkit.json, ./iconkit.toml (project)
  3. ~/.config/iconkit/iconkit.json (user default)
  4. built-in defaults

Examples:
  iconkit                                  Generate into ./assets
  iconkit -o public/assets generate        Generate into public/assets
  iconkit icns icon.iconset icon.icns      Portable iconutil replacement
  iconkit ico icon-256x256.png icon.ico    Rebuild icon.ico from a PNG`)
}
