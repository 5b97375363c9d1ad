// Package console prints progress and warnings for the command-line tools.
// Output is coloured only when stdout is a terminal and NO_COLOR is unset.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer writes status lines to out and warnings to errw.
type Printer struct {
	out  *termenv.Output
	errw io.Writer
}

// New returns a Printer for the process's stdout and stderr.
func New() *Printer {
	profile := termenv.Ascii
	if os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		profile = termenv.ANSI
	}
	return &Printer{
		out:  termenv.NewOutput(os.Stdout, termenv.WithProfile(profile)),
		errw: os.Stderr,
	}
}

// NewPlain returns an uncoloured Printer over arbitrary writers.
func NewPlain(out, errw io.Writer) *Printer {
	return &Printer{
		out:  termenv.NewOutput(out, termenv.WithProfile(termenv.Ascii)),
		errw: errw,
	}
}

// Step prints a progress line.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.out, p.out.String(fmt.Sprintf(format, args...)).Bold())
}

// Item prints an indented list entry.
func (p *Printer) Item(format string, args ...any) {
	fmt.Fprintf(p.out, "- %s\n", p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("2")))
}

// Info prints a plain line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a warning to stderr.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.errw, "Warning: "+format+"\n", args...)
}
