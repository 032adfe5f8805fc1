package vm

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"ripple/internal/object"
)

// newBuiltins returns the builtin table in object.BuiltinNames order. print
// writes to out.
func newBuiltins(out func() io.Writer) []*object.Builtin {
	fns := map[string]object.BuiltinFunction{
		"print": func(args ...object.Object) (object.Object, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.Inspect()
			}
			fmt.Fprintln(out(), strings.Join(parts, " "))
			return object.NIL, nil
		},
		"len":   builtinLen,
		"str":   builtinStr,
		"push":  builtinPush,
		"error": builtinError,
		"type":  builtinType,
	}
	table := make([]*object.Builtin, len(object.BuiltinNames))
	for i, name := range object.BuiltinNames {
		table[i] = &object.Builtin{Name: name, Fn: fns[name]}
	}
	return table
}

func arity(name string, args []object.Object, want int) error {
	if len(args) != want {
		return object.Errorf("%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func builtinLen(args ...object.Object) (object.Object, error) {
	if err := arity("len", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *object.String:
		return &object.Integer{Value: int64(utf8.RuneCountInString(v.Value))}, nil
	case *object.Array:
		return &object.Integer{Value: int64(len(v.Elements))}, nil
	default:
		return nil, object.Errorf("len: unsupported type %s", v.Type())
	}
}

func builtinStr(args ...object.Object) (object.Object, error) {
	if err := arity("str", args, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(*object.String); ok {
		return s, nil
	}
	return &object.String{Value: args[0].Inspect()}, nil
}

func builtinPush(args ...object.Object) (object.Object, error) {
	if err := arity("push", args, 2); err != nil {
		return nil, err
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return nil, object.Errorf("push: first argument must be ARRAY, got %s", args[0].Type())
	}
	arr.Elements = append(arr.Elements, args[1])
	return arr, nil
}

// builtinError constructs an error value; it does not raise it.
func builtinError(args ...object.Object) (object.Object, error) {
	if err := arity("error", args, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(*object.String); ok {
		return &object.Error{Message: s.Value}, nil
	}
	return &object.Error{Message: args[0].Inspect(), Value: args[0]}, nil
}

func builtinType(args ...object.Object) (object.Object, error) {
	if err := arity("type", args, 1); err != nil {
		return nil, err
	}
	return &object.String{Value: string(args[0].Type())}, nil
}
