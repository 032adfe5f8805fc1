package module

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, src string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDependencyOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.rpl", "import lib.util\nimport shapes\nx = util.f()\n")
	writeFile(t, root, "lib/util.rpl", "import shapes\nfunc f() { return 1 }\n")
	writeFile(t, root, "shapes.rpl", "size = 4\n")

	l := NewLoader()
	l.AddSourceRoot(root)
	fs, err := l.Load("main")
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, f := range fs.Files {
		got = append(got, f.Module)
	}
	want := "shapes,lib.util,main"
	if strings.Join(got, ",") != want {
		t.Fatalf("load order = %v, want %s", got, want)
	}
	if fs.Entry != "main" {
		t.Fatalf("entry = %q", fs.Entry)
	}
	if _, ok := fs.Lookup("lib.util"); !ok {
		t.Fatal("lib.util not in file set")
	}
}

func TestLoadFirstRootWins(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeFile(t, a, "main.rpl", "x = 1\n")
	writeFile(t, b, "main.rpl", "x = 2\n")

	l := NewLoader()
	l.AddSourceRoot(a)
	l.AddSourceRoot(b)
	fs, err := l.Load("main")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Files[0].Source != "x = 1\n" {
		t.Fatalf("loaded %q from the wrong root", fs.Files[0].Source)
	}
}

func TestLoadNotFound(t *testing.T) {
	root := t.TempDir()
	l := NewLoader()
	l.AddSourceRoot(root)

	_, err := l.Load("missing.mod")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T (%v)", err, err)
	}
	if len(le.Searched) != 1 || le.Searched[0] != filepath.Join(root, "missing", "mod.rpl") {
		t.Fatalf("searched = %v", le.Searched)
	}
}

func TestLoadCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rpl", "import b\n")
	writeFile(t, root, "b.rpl", "import a\n")

	l := NewLoader()
	l.AddSourceRoot(root)
	_, err := l.Load("a")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T (%v)", err, err)
	}
	if err.Error() != "import cycle: a -> b -> a" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoadSyntaxError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.rpl", "x = \n")

	l := NewLoader()
	l.AddSourceRoot(root)
	_, err := l.Load("main")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
	if len(se.Diagnostics) == 0 || se.Diagnostics[0].Range.Line != 1 {
		t.Fatalf("diagnostics = %+v", se.Diagnostics)
	}
	if !strings.HasPrefix(err.Error(), se.File+":1:") {
		t.Fatalf("message %q lacks a file position", err.Error())
	}
}

func TestLoadOverlay(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "main.rpl", "x = \n")

	l := NewLoader()
	l.AddSourceRoot(root)
	l.Overlay(p, "x = 1\n")
	fs, err := l.Load("main")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Files[0].Source != "x = 1\n" {
		t.Fatalf("overlay not used: %q", fs.Files[0].Source)
	}
}

func TestDuplicateFuncIsSyntaxError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.rpl", "func f() {}\nfunc f() {}\n")

	l := NewLoader()
	l.AddSourceRoot(root)
	_, err := l.Load("main")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if se.Diagnostics[0].Range.Line != 2 {
		t.Fatalf("duplicate reported at line %d", se.Diagnostics[0].Range.Line)
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"main", "a.b", "_x.y2"} {
		if err := ValidateName(ok); err != nil {
			t.Fatalf("%q: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a..b", "1a", "a/b", "a.b."} {
		if err := ValidateName(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
