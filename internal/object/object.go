package object

import (
	"bytes"
	"strconv"

	"ripple/internal/code"
)

type Type string

const (
	INTEGER_OBJ           Type = "INTEGER"
	FLOAT_OBJ             Type = "FLOAT"
	STRING_OBJ            Type = "STRING"
	BOOLEAN_OBJ           Type = "BOOLEAN"
	NIL_OBJ               Type = "NIL"
	ARRAY_OBJ             Type = "ARRAY"
	COMPILED_FUNCTION_OBJ Type = "COMPILED_FUNCTION"
	CLOSURE_OBJ           Type = "CLOSURE"
	BUILTIN_OBJ           Type = "BUILTIN"
	ERROR_OBJ             Type = "ERROR"
)

type Object interface {
	Type() Type
	Inspect() string
}

type Integer struct{ Value int64 }

func (*Integer) Type() Type        { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (*Float) Type() Type { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

type String struct{ Value string }

func (*String) Type() Type        { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

type Boolean struct{ Value bool }

func (*Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Nil struct{}

func (*Nil) Type() Type      { return NIL_OBJ }
func (*Nil) Inspect() string { return "nil" }

// Shared immutable singletons.
var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type Array struct {
	Elements []Object
}

func (*Array) Type() Type { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		if s, ok := el.(*String); ok {
			out.WriteString(strconv.Quote(s.Value))
			continue
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

// Program is the state shared by every function of one compiled unit. It is
// built once by the compiler and never mutated afterwards.
type Program struct {
	Constants []Object
	// Globals lists the qualified global names ("module#name") by slot.
	Globals []string
	// Sources holds the source lines of every compiled file, keyed by path,
	// for trace snippets.
	Sources map[string][]string
}

// GlobalSlot returns the slot of a qualified global name.
func (p *Program) GlobalSlot(name string) (int, bool) {
	for i, g := range p.Globals {
		if g == name {
			return i, true
		}
	}
	return 0, false
}

// SourceLine returns the 1-based line of file, or "" when unknown.
func (p *Program) SourceLine(file string, line int) string {
	lines := p.Sources[file]
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

type CompiledFunction struct {
	Instructions  code.Instructions
	NumLocals     int
	NumParameters int
	Name          string
	File          string
	Pos           []code.SourcePos
	Program       *Program
}

func (*CompiledFunction) Type() Type { return COMPILED_FUNCTION_OBJ }
func (f *CompiledFunction) Inspect() string {
	return "<compiled " + f.Name + ">"
}

type Closure struct {
	Fn   *CompiledFunction
	Free []Object
}

func (*Closure) Type() Type { return CLOSURE_OBJ }
func (c *Closure) Inspect() string {
	return "<func " + c.Fn.Name + ">"
}

// BuiltinFunction returns a script failure as a non-nil error.
type BuiltinFunction func(args ...Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (*Builtin) Type() Type        { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "<builtin " + b.Name + ">" }

// IsCallable reports whether obj can be applied by the VM.
func IsCallable(obj Object) bool {
	switch obj.(type) {
	case *Closure, *Builtin:
		return true
	}
	return false
}

// BuiltinNames lists the builtin functions by OpGetBuiltin index.
var BuiltinNames = []string{"print", "len", "str", "push", "error", "type"}

// BuiltinIndex returns the OpGetBuiltin index of name.
func BuiltinIndex(name string) (int, bool) {
	for i, n := range BuiltinNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
