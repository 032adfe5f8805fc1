// Package host runs a ripple program inside the gfx event loop: it loads and
// compiles the entry module, executes its top level, binds the event hooks
// the module defines and hands a dispatcher to the loop.
package host

import (
	"errors"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"ripple/internal/compiler"
	"ripple/internal/diag"
	"ripple/internal/gfx"
	"ripple/internal/module"
	"ripple/internal/object"
	"ripple/internal/vm"
)

var log = commonlog.GetLogger("ripple.host")

type Options struct {
	Roots  []string
	Module string
	Window gfx.Options

	// Loop defaults to gfx.EbitenLoop.
	Loop gfx.Loop
	// Output receives script print output; nil keeps the VM default.
	Output io.Writer
}

// Check loads and compiles the program without running it.
func Check(roots []string, moduleName string) (*module.FileSet, *object.CompiledFunction, error) {
	loader := module.NewLoader()
	for _, r := range roots {
		loader.AddSourceRoot(r)
	}

	log.Info("loading", "module", moduleName)
	fs, err := loader.Load(moduleName)
	if err != nil {
		return nil, nil, loadDiagnostic(err)
	}

	log.Info("compiling", "files", len(fs.Files))
	unit, err := compiler.CompileFiles(fs, compiler.Options{HostOps: gfx.Ops})
	if err != nil {
		return fs, nil, compileDiagnostic(fs, err)
	}
	return fs, unit, nil
}

// Run executes the program until the loop exits. Every failure is returned
// as a *diag.Error.
func Run(opts Options) error {
	_, unit, err := Check(opts.Roots, opts.Module)
	if err != nil {
		return err
	}

	ctx := gfx.NewContext(opts.Window)
	// the VM and hooks are unreachable once Run returns
	defer ctx.Close()

	m := vm.New(&handler{ctx: ctx})
	if opts.Output != nil {
		m.SetOutput(opts.Output)
	}

	log.Info("executing top level", "module", opts.Module)
	if _, err := m.Execute(unit); err != nil {
		return withTrace(m, err)
	}

	hooks, err := ResolveHooks(m, opts.Module)
	if err != nil {
		return err
	}
	bound := hooks.Bound()
	names := make([]string, len(bound))
	for i, k := range bound {
		names[i] = k.String()
	}
	log.Info("hooks bound", "module", opts.Module, "hooks", strings.Join(names, ","))

	loop := opts.Loop
	if loop == nil {
		loop = gfx.EbitenLoop{}
	}
	d := NewDispatcher(m, hooks)
	err = loop.Run(ctx, d)
	d.logStats()
	if err == nil {
		return nil
	}

	var de *diag.Error
	if errors.As(err, &de) {
		return de
	}
	return &diag.Error{Kind: diag.KindHost, Message: "ERROR: " + err.Error()}
}

func loadDiagnostic(err error) error {
	var se *module.SyntaxError
	if errors.As(err, &se) {
		de := &diag.Error{Kind: diag.KindCompile, Message: "syntax error"}
		for _, d := range se.Diagnostics {
			de.Marks = append(de.Marks, diag.Mark{File: se.File, Line: d.Range.Line, Col: d.Range.Col})
		}
		if len(se.Diagnostics) > 0 {
			de.Message = se.Diagnostics[0].Message
		}
		return de
	}

	de := &diag.Error{Kind: diag.KindLoad, Message: err.Error()}
	var le *module.LoadError
	if errors.As(err, &le) && len(le.Chain) == 0 {
		de.Help = "check the module name and the source roots"
	}
	return de
}

func compileDiagnostic(fs *module.FileSet, err error) error {
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		return &diag.Error{Kind: diag.KindCompile, Message: err.Error()}
	}
	mark := diag.Mark{File: ce.File, Line: ce.Line, Col: ce.Col}
	for _, f := range fs.Files {
		if f.Path != ce.File {
			continue
		}
		lines := strings.Split(f.Source, "\n")
		if ce.Line >= 1 && ce.Line <= len(lines) {
			mark.Snippet = strings.TrimRight(lines[ce.Line-1], "\r")
		}
	}
	return &diag.Error{Kind: diag.KindCompile, Marks: []diag.Mark{mark}, Message: ce.Message}
}
