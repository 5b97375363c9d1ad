package main

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"text/tabwriter"

	"github.com/local-listen/iconkit/internal/config"
	"github.com/local-listen/iconkit/internal/console"
	"github.com/local-listen/iconkit/internal/icns"
	"github.com/local-listen/iconkit/internal/manifest"
)

func runInspect(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	if err := inspect(os.Stdout, data); err != nil {
		fatal(err)
	}
}

// inspect prints one line per ICNS entry: tag, nominal size, length and,
// for PNG payloads, the actual pixel dimensions.
func inspect(w io.Writer, data []byte) error {
	entries, err := icns.Parse(data)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tNOMINAL\tBYTES\tPNG")
	for _, e := range entries {
		nominal := "-"
		if s := icns.NominalSize(e.Tag); s > 0 {
			nominal = fmt.Sprintf("%dx%d", s, s)
		}
		dims := "-"
		if cfg, err := png.DecodeConfig(bytes.NewReader(e.Data)); err == nil {
			dims = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Tag, nominal, e.Len(), dims)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d entries, %d bytes\n", len(entries), len(data))
	return nil
}

func runHistory(opts options, limit int) {
	cfg, err := loadConfig(opts)
	if err != nil {
		fatal(err)
	}
	s, err := openHistory(cfg)
	if errors.Is(err, errManifestDisabled) {
		fmt.Println("Manifest disabled; no history recorded.")
		return
	}
	if err != nil {
		fatal(err)
	}
	defer s.Close()
	if err := history(os.Stdout, s, limit); err != nil {
		s.Close()
		fatal(err)
	}
}

var errManifestDisabled = errors.New("manifest disabled")

// openHistory opens the manifest store for reading. It never creates the
// database when the manifest is disabled.
func openHistory(cfg config.Config) (*manifest.SQLiteStore, error) {
	if !cfg.Manifest {
		return nil, errManifestDisabled
	}
	return manifest.NewSQLiteStore(cfg.ManifestFile())
}

// history prints the most recent runs with their artifacts.
func history(w io.Writer, s manifest.Store, limit int) error {
	runs, err := s.Runs(limit)
	if err != nil {
		return err
	}
	out := console.NewPlain(w, io.Discard)
	if len(runs) == 0 {
		out.Info("No runs recorded in %s", s.Path())
		return nil
	}
	for _, r := range runs {
		arts, err := s.Artifacts(r.ID)
		if err != nil {
			return err
		}
		out.Step("#%d  %s  %s  %s", r.ID, r.Time.Local().Format("2006-01-02 15:04:05"), r.Command, r.OutDir)
		for _, a := range arts {
			out.Item("%-8s %8d  %.12s  %s", a.Kind, a.Bytes, a.SHA256, a.Path)
		}
	}
	return nil
}
