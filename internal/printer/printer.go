// Package printer formats CLI output with colour.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// Printer writes user-facing messages. Colour follows fatih/color's
// detection, so NO_COLOR and non-terminal writers print plain text.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New returns a Printer writing normal output to out and errors to errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Out returns the normal output writer.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Success prints a message in green with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}

	green.Fprint(p.out, msg)
}

// Info prints a message in the default colour.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Warning prints a message in yellow with a warning prefix.
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠") {
		msg = "⚠️  " + msg
	}

	yellow.Fprint(p.out, msg)
}

// Step prints an emphasised progress line.
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.out, "→ %s", fmt.Sprintf(format, a...))
}

// Heading prints a bold section title followed by a newline.
func (p *Printer) Heading(title string) {
	bold.Fprintln(p.out, title)
}

// Error prints a title, an explanation and optional suggestions to the error
// writer, and returns a short error for cobra (which runs with
// SilenceErrors).
func (p *Printer) Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(p.err, "%s\n", title)

	if explanation != "" {
		fmt.Fprintf(p.err, "\n%s\n", explanation)
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(p.err, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(p.err, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(p.err, "  %d. %s\n", i+1, s)
		}
	}

	return fmt.Errorf("%s", title)
}
