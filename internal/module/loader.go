package module

import (
	"os"
	"path/filepath"

	"ripple/internal/ast"
	"ripple/internal/parser"
)

// File is one parsed module source.
type File struct {
	Module  string
	Path    string
	Source  string
	Program *ast.Program
}

// FileSet is the result of loading an entry module: every reachable file,
// imports before importers, each exactly once. The entry module is last.
type FileSet struct {
	Entry string
	Files []*File
}

// Lookup returns the file of a loaded module.
func (fs *FileSet) Lookup(module string) (*File, bool) {
	for _, f := range fs.Files {
		if f.Module == module {
			return f, true
		}
	}
	return nil, false
}

type Loader struct {
	Resolver *Resolver
	overlays map[string]string // key: abs path
}

func NewLoader() *Loader {
	return &Loader{Resolver: NewResolver(nil), overlays: map[string]string{}}
}

func (l *Loader) AddSourceRoot(path string) {
	l.Resolver.Roots = append(l.Resolver.Roots, path)
}

// Overlay makes Load use text instead of the on-disk content of path.
func (l *Loader) Overlay(path, text string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	l.overlays[path] = text
}

// Load parses module and, transitively, everything it imports.
func (l *Loader) Load(module string) (*FileSet, error) {
	st := &loadState{
		loader: l,
		done:   map[string]bool{},
		active: map[string]int{},
	}
	if err := st.visit(module); err != nil {
		return nil, err
	}
	return &FileSet{Entry: module, Files: st.files}, nil
}

type loadState struct {
	loader *Loader
	files  []*File
	done   map[string]bool
	active map[string]int // module -> index in stack
	stack  []string
}

func (st *loadState) visit(module string) error {
	if st.done[module] {
		return nil
	}
	if idx, ok := st.active[module]; ok {
		chain := append([]string{}, st.stack[idx:]...)
		chain = append(chain, module)
		return &LoadError{Module: module, Chain: chain}
	}
	st.active[module] = len(st.stack)
	st.stack = append(st.stack, module)
	defer func() {
		delete(st.active, module)
		st.stack = st.stack[:len(st.stack)-1]
	}()

	f, err := st.loader.parse(module)
	if err != nil {
		return err
	}
	for _, imp := range f.Program.Imports() {
		if err := st.visit(imp.Module()); err != nil {
			return err
		}
	}

	st.done[module] = true
	st.files = append(st.files, f)
	return nil
}

func (l *Loader) parse(module string) (*File, error) {
	path, searched, err := l.Resolver.Resolve(module)
	if err != nil {
		return nil, &LoadError{Module: module, Searched: searched, Err: err}
	}

	src, ok := l.overlays[path]
	if !ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Module: module, Err: err}
		}
		src = string(b)
	}

	prog, diags := parser.Parse(path, src)
	if len(diags) > 0 {
		return nil, &SyntaxError{File: path, Diagnostics: diags}
	}
	if err := CheckDuplicateFuncs(prog, path); err != nil {
		return nil, err
	}
	return &File{Module: module, Path: path, Source: src, Program: prog}, nil
}
