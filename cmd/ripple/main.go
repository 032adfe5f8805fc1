// Command ripple runs ripple programs in a window.
//
//	ripple [run] [flags] [dir|module]
//	ripple check [flags] [dir|module]
//	ripple init [--name <name>] [--module <module>] [--force]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"ripple/internal/config"
	"ripple/internal/diag"
	"ripple/internal/gfx"
	"ripple/internal/host"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the only place that decides the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := "run"
	if len(args) > 0 {
		switch args[0] {
		case "run", "check", "init":
			cmd = args[0]
			args = args[1:]
		}
	}

	var err error
	switch cmd {
	case "init":
		err = runInit(args, stdout)
	case "check":
		err = runCheck(args, stdout)
	default:
		err = runProgram(args, stdout)
	}
	if err == nil {
		return 0
	}

	var de *diag.Error
	if errors.As(err, &de) {
		fmt.Fprint(stderr, de.Format(colorProfile(stderr)))
	} else {
		fmt.Fprintf(stderr, "%s error: %v\n", cmd, err)
	}
	return 1
}

// colorProfile styles diagnostics only for a terminal.
func colorProfile(w io.Writer) termenv.Profile {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// verbosity counts repeated -v flags; -v=N sets it.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

// target is a resolved program to load: where to look and what to load.
type target struct {
	cfg   *config.Config
	roots []string
}

func parseTarget(name string, args []string) (*target, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var roots stringList
	var v verbosity
	fs.Var(&roots, "root", "additional source root (repeatable)")
	fs.Var(&v, "v", "increase log verbosity (repeatable)")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return nil, fmt.Errorf("usage: ripple %s [-root <dir>]... [-v] [dir|module]", name)
	}
	arg := "."
	if fs.NArg() == 1 {
		arg = fs.Arg(0)
	}

	t, err := resolveTarget(arg)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, abs)
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	level := int(v)
	if level == 0 {
		level = t.cfg.Log.Verbosity
	}
	commonlog.Configure(level, t.cfg.LogFile())
	return t, nil
}

// resolveTarget accepts a project directory or a module name. A module name
// is looked up in the project around the working directory, or in the
// working directory itself when there is no manifest.
func resolveTarget(arg string) (*target, error) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		cfg, err := config.FindAndLoad(arg)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, fmt.Errorf("no %s found in %s or its parents", config.FileName, arg)
		}
		return &target{cfg: cfg, roots: cfg.SourceRootPaths()}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
		cfg.Dir = cwd
	}
	cfg.Project.Module = strings.TrimSuffix(arg, ".rpl")
	return &target{cfg: cfg, roots: cfg.SourceRootPaths()}, nil
}

func runProgram(args []string, stdout io.Writer) error {
	t, err := parseTarget("run", args)
	if err != nil {
		return err
	}
	return host.Run(host.Options{
		Roots:  t.roots,
		Module: t.cfg.Project.Module,
		Window: gfx.Options{
			Width:          t.cfg.Window.Width,
			Height:         t.cfg.Window.Height,
			Title:          t.cfg.Window.Title,
			RepeatDelay:    t.cfg.Input.RepeatDelay,
			RepeatInterval: t.cfg.Input.RepeatInterval,
		},
		Output: stdout,
	})
}

func runCheck(args []string, stdout io.Writer) error {
	t, err := parseTarget("check", args)
	if err != nil {
		return err
	}
	fs, _, err := host.Check(t.roots, t.cfg.Project.Module)
	if err != nil {
		return err
	}
	entry, _ := fs.Lookup(fs.Entry)
	for _, d := range host.HookWarnings(entry.Program) {
		fmt.Fprintln(stdout, d.Format(entry.Path))
	}
	fmt.Fprintf(stdout, "ok: %s (%d files)\n", t.cfg.Project.Module, len(fs.Files))
	return nil
}

func runInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "project name")
	mod := fs.String("module", "", "entry module (defaults to the name)")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errors.New("usage: ripple init [--name <name>] [--module <module>] [--force]")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if *name == "" {
		*name = sanitizeName(filepath.Base(cwd))
	}

	cfg := config.Default()
	cfg.Project.Name = *name
	cfg.Project.Module = *mod
	if cfg.Project.Module == "" {
		cfg.Project.Module = *name
	}
	cfg.Window.Title = *name
	if err := cfg.Validate(); err != nil {
		return err
	}

	manifestPath := filepath.Join(cwd, config.FileName)
	exists, err := pathExists(manifestPath)
	if err != nil {
		return err
	}
	if exists && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return err
	}

	entryPath := filepath.Join(cwd, filepath.FromSlash(strings.ReplaceAll(cfg.Project.Module, ".", "/"))+".rpl")
	if err := ensureDir(entryPath); err != nil {
		return err
	}
	exists, err = pathExists(entryPath)
	if err != nil {
		return err
	}
	if !exists || *force {
		if err := os.WriteFile(entryPath, []byte(starterProgram), 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "created %s and %s\n", config.FileName, filepath.Base(entryPath))
	return nil
}

// sanitizeName turns a directory name into a valid module name.
func sanitizeName(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "main"
	}
	return b.String()
}

const starterProgram = `x = 10
dx = 2

func Update() {
  x = x + dx
  if (x > 600 or x < 10) {
    dx = 0 - dx
  }
}

func Draw() {
  gfx_clear(20, 20, 30)
  gfx_rect(x, 220, 40, 40, 240, 200, 80)
  gfx_text("Esc quits", 10, 10)
}

func KeyDown(key, repeat) {
  if (key == "Space" and not repeat) {
    dx = 0 - dx
  }
}

func KeyUp(key) {}

func TextInput(ch) {}
`

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
