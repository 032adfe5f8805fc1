package lsp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ripple/internal/compiler"
	"ripple/internal/config"
	"ripple/internal/diag"
	"ripple/internal/gfx"
	"ripple/internal/host"
	"ripple/internal/module"
	"ripple/internal/parser"
)

// CodeLoad marks diagnostics for modules that could not be loaded.
const CodeLoad = "RL0001"

// Workspace knows the source roots of the project being edited.
type Workspace struct {
	Root  string
	Roots []string
}

// NewWorkspace uses the roots of the nearest ripple.toml, or root itself.
func NewWorkspace(root string) *Workspace {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	ws := &Workspace{Root: root, Roots: []string{root}}
	if cfg, err := config.FindAndLoad(root); err == nil && cfg != nil {
		ws.Roots = cfg.SourceRootPaths()
	} else if err != nil {
		log.Warning("ignoring manifest", "error", err.Error())
	}
	return ws
}

// moduleFor names the module stored at path and the roots to load it from.
// Files outside every root are loaded from their own directory.
func (w *Workspace) moduleFor(path string) (string, []string) {
	for _, r := range w.Roots {
		rel, err := filepath.Rel(r, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		name := strings.ReplaceAll(strings.TrimSuffix(filepath.ToSlash(rel), ".rpl"), "/", ".")
		if module.ValidateName(name) == nil {
			return name, w.Roots
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), ".rpl")
	return name, append([]string{filepath.Dir(path)}, w.Roots...)
}

// Analyze parses text as the file at path and, when it parses, loads and
// compiles it with its imports. overlays holds unsaved text of other open
// files by path.
func (w *Workspace) Analyze(path, text string, overlays map[string]string) []diag.Diagnostic {
	prog, ds := parser.Parse(path, text)
	if len(ds) > 0 {
		return ds
	}
	warnings := host.HookWarnings(prog)

	name, roots := w.moduleFor(path)
	loader := module.NewLoader()
	for _, r := range roots {
		loader.AddSourceRoot(r)
	}
	for p, t := range overlays {
		loader.Overlay(p, t)
	}
	loader.Overlay(path, text)

	fs, err := loader.Load(name)
	if err != nil {
		return append(errorDiagnostics(path, err), warnings...)
	}
	if _, err := compiler.CompileFiles(fs, compiler.Options{HostOps: gfx.Ops}); err != nil {
		return append(errorDiagnostics(path, err), warnings...)
	}
	return warnings
}

// errorDiagnostics places err in the file at path. Failures in other files
// are reported on the first line.
func errorDiagnostics(path string, err error) []diag.Diagnostic {
	var se *module.SyntaxError
	if errors.As(err, &se) {
		if samePath(se.File, path) {
			return se.Diagnostics
		}
		return []diag.Diagnostic{fileLevel(parser.CodeSyntax, fmt.Sprintf("syntax errors in %s", se.File))}
	}
	var ce *compiler.Error
	if errors.As(err, &ce) {
		if samePath(ce.File, path) {
			return []diag.Diagnostic{ce.Diagnostic()}
		}
		return []diag.Diagnostic{fileLevel(compiler.CodeCompile, ce.Error())}
	}
	return []diag.Diagnostic{fileLevel(CodeLoad, err.Error())}
}

func fileLevel(code, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     code,
		Message:  msg,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: 1, Col: 1, Length: 1},
	}
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
