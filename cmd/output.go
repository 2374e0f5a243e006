package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/kamusis/cindex-cli/internal/transport"
)

// Icon semantics shared by every command:
//
//	✓  success / healthy
//	✗  error / failure          (written to stderr)
//	⚠  warning
//	○  skipped / not applicable
//	-  not found / missing
//	~  neutral info

func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

func printLine(w io.Writer, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

func printOK(name, msg string)   { printLine(os.Stdout, "✓", name, msg) }
func printErr(name, msg string)  { printLine(os.Stderr, "✗", name, msg) }
func printWarn(name, msg string) { printLine(os.Stdout, "⚠", name, msg) }
func printSkip(name, msg string) { printLine(os.Stdout, "○", name, msg) }
func printMiss(name, msg string) { printLine(os.Stdout, "-", name, msg) }
func printInfo(name, msg string) { printLine(os.Stdout, "~", name, msg) }

// writeManifest prints a manifest header followed by one line per facet in
// type order:
//
//	=== fuchsia:hello
//	 - fuchsia:component: {"name":"hello"}
func writeManifest(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintf(w, "=== %s\n", m.ID)
	for _, t := range m.FacetTypes() {
		v, _ := m.Facet(t)
		fmt.Fprintf(w, " - %s: %s\n", t, v)
	}
}

// failureReason names the stage at which a lookup failed.
func failureReason(err error) string {
	var (
		te *transport.Error
		de *manifest.DecodeError
		pe *manifest.ParseError
	)
	switch {
	case transport.IsNotFound(err):
		return "not found"
	case errors.As(err, &te):
		return "cannot fetch"
	case errors.As(err, &de):
		return "cannot decode"
	case errors.As(err, &pe):
		return "cannot parse"
	default:
		return "failed"
	}
}
