package module

import (
	"fmt"

	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/token"
)

// Definition is a name a file's top level binds as a module global.
type Definition struct {
	Name  string
	Token token.Token
}

// Definitions lists the globals a file's top level defines, in source order
// and without duplicates. Blocks of top-level if/while/try statements do not
// open a scope, so names assigned inside them count too.
func Definitions(program *ast.Program) []Definition {
	if program == nil {
		return nil
	}
	var out []Definition
	seen := map[string]bool{}
	add := func(id *ast.Identifier) {
		if id == nil || seen[id.Value] {
			return
		}
		seen[id.Value] = true
		out = append(out, Definition{Name: id.Value, Token: id.Token})
	}

	var walk func(stmts []ast.Statement)
	var walkStmt func(s ast.Statement)
	walkStmt = func(s ast.Statement) {
		switch s := s.(type) {
		case *ast.AssignStatement:
			add(s.Name)
		case *ast.FuncStatement:
			add(s.Name)
		case *ast.IfStatement:
			walk(s.Consequence.Statements)
			if s.Alternative != nil {
				walkStmt(s.Alternative)
			}
		case *ast.BlockStatement:
			walk(s.Statements)
		case *ast.WhileStatement:
			walk(s.Body.Statements)
		case *ast.TryStatement:
			walk(s.TryBlock.Statements)
			add(s.CatchName)
			walk(s.CatchBlock.Statements)
		}
	}
	walk = func(stmts []ast.Statement) {
		for _, s := range stmts {
			walkStmt(s)
		}
	}
	walk(program.Statements)
	return out
}

// CheckDuplicateFuncs rejects two top-level func statements with the same
// name in one file.
func CheckDuplicateFuncs(program *ast.Program, file string) error {
	if program == nil {
		return nil
	}
	seen := map[string]token.Token{}
	for _, stmt := range program.Statements {
		fs, ok := stmt.(*ast.FuncStatement)
		if !ok {
			continue
		}
		tok := fs.Name.Token
		if prev, exists := seen[fs.Name.Value]; exists {
			return &SyntaxError{File: file, Diagnostics: []diag.Diagnostic{{
				Code: "RP0002",
				Message: fmt.Sprintf("duplicate func %q (previous at %d:%d)",
					fs.Name.Value, prev.Line, prev.Col),
				Severity: diag.SeverityError,
				Range:    diag.Range{Line: tok.Line, Col: tok.Col, Length: len(fs.Name.Value)},
			}}}
		}
		seen[fs.Name.Value] = tok
	}
	return nil
}
