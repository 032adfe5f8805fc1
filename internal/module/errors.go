package module

import (
	"fmt"
	"strings"

	"ripple/internal/diag"
)

// LoadError reports a module that could not be resolved or read, or an
// import cycle.
type LoadError struct {
	Module   string
	Searched []string // candidate paths, when resolution failed
	Chain    []string // import chain, for cycles
	Err      error
}

func (e *LoadError) Error() string {
	if len(e.Chain) > 0 {
		return "import cycle: " + strings.Join(e.Chain, " -> ")
	}
	msg := fmt.Sprintf("cannot load module %q: %v", e.Module, e.Err)
	if len(e.Searched) > 0 {
		msg += " (searched " + strings.Join(e.Searched, ", ") + ")"
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// SyntaxError carries every parse diagnostic of one file.
type SyntaxError struct {
	File        string
	Diagnostics []diag.Diagnostic
}

func (e *SyntaxError) Error() string {
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, d.Format(e.File))
	}
	return strings.Join(lines, "\n")
}
