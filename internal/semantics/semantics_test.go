package semantics

import (
	"math"
	"testing"

	"ripple/internal/object"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj  object.Object
		want bool
	}{
		{object.TRUE, true},
		{object.FALSE, false},
		{object.NIL, false},
		{&object.Integer{Value: 0}, true},
		{&object.Float{Value: 0}, true},
		{&object.String{Value: ""}, true},
		{&object.Array{}, true},
	}
	for i, tt := range tests {
		if got := IsTruthy(tt.obj); got != tt.want {
			t.Fatalf("tests[%d] expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestBinaryOpNumbers(t *testing.T) {
	tests := []struct {
		op    string
		left  object.Object
		right object.Object
		want  object.Object
	}{
		{"+", &object.Integer{Value: 1}, &object.Integer{Value: 2}, &object.Integer{Value: 3}},
		{"-", &object.Integer{Value: 5}, &object.Integer{Value: 3}, &object.Integer{Value: 2}},
		{"*", &object.Integer{Value: 2}, &object.Integer{Value: 4}, &object.Integer{Value: 8}},
		{"/", &object.Integer{Value: 5}, &object.Integer{Value: 2}, &object.Integer{Value: 2}},
		{"%", &object.Integer{Value: 5}, &object.Integer{Value: 2}, &object.Integer{Value: 1}},
		{"+", &object.Integer{Value: 1}, &object.Float{Value: 2.5}, &object.Float{Value: 3.5}},
		{"/", &object.Float{Value: 5.0}, &object.Integer{Value: 2}, &object.Float{Value: 2.5}},
		{"+", &object.String{Value: "ab"}, &object.String{Value: "c"}, &object.String{Value: "abc"}},
	}
	for i, tt := range tests {
		got, err := BinaryOp(tt.op, tt.left, tt.right)
		if err != nil {
			t.Fatalf("tests[%d] unexpected error: %v", i, err)
		}
		if got.Type() != tt.want.Type() || got.Inspect() != tt.want.Inspect() {
			t.Fatalf("tests[%d] expected %T(%s), got %T(%s)", i, tt.want, tt.want.Inspect(), got, got.Inspect())
		}
	}
}

func TestBinaryOpErrors(t *testing.T) {
	tests := []struct {
		op      string
		left    object.Object
		right   object.Object
		wantErr string
	}{
		{"/", &object.Integer{Value: 1}, &object.Integer{Value: 0}, "division by zero"},
		{"/", &object.Float{Value: 1}, &object.Integer{Value: 0}, "division by zero"},
		{"%", &object.Integer{Value: 1}, &object.Integer{Value: 0}, "modulo by zero"},
		{"%", &object.Float{Value: 1}, &object.Integer{Value: 2}, "modulo requires INTEGER operands"},
		{"+", &object.String{Value: "a"}, &object.Integer{Value: 1}, "type mismatch: STRING + INTEGER"},
		{"-", &object.String{Value: "a"}, &object.String{Value: "b"}, "unknown operator for strings: -"},
		{"+", object.TRUE, object.FALSE, "unknown operator: BOOLEAN + BOOLEAN"},
	}
	for i, tt := range tests {
		_, err := BinaryOp(tt.op, tt.left, tt.right)
		if err == nil {
			t.Fatalf("tests[%d] expected error, got nil", i)
		}
		if err.Error() != tt.wantErr {
			t.Fatalf("tests[%d] expected %q, got %q", i, tt.wantErr, err.Error())
		}
	}
}

func TestCompare(t *testing.T) {
	arr := &object.Array{}
	tests := []struct {
		op    string
		left  object.Object
		right object.Object
		want  bool
	}{
		{"==", &object.Integer{Value: 1}, &object.Float{Value: 1.0}, true},
		{"!=", &object.Integer{Value: 1}, &object.Float{Value: 1.5}, true},
		{">", &object.Float{Value: 1.5}, &object.Integer{Value: 1}, true},
		{"<", &object.Float{Value: 1.5}, &object.Integer{Value: 2}, true},
		{">=", &object.Float{Value: 2.0}, &object.Integer{Value: 2}, true},
		{"<=", &object.Float{Value: 2.0}, &object.Integer{Value: 1}, false},
		{"<", &object.String{Value: "a"}, &object.String{Value: "b"}, true},
		{"==", &object.String{Value: "a"}, &object.String{Value: "a"}, true},
		{"==", object.TRUE, &object.Boolean{Value: true}, true},
		{"==", object.NIL, &object.Nil{}, true},
		{"!=", object.NIL, &object.Integer{Value: 1}, true},
		{"==", arr, arr, true},
		{"==", arr, &object.Array{}, false},
		{"<", &object.Float{Value: math.NaN()}, &object.Integer{Value: 1}, false},
	}
	for i, tt := range tests {
		got, err := Compare(tt.op, tt.left, tt.right)
		if err != nil {
			t.Fatalf("tests[%d] unexpected error: %v", i, err)
		}
		if got != tt.want {
			t.Fatalf("tests[%d] expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestCompareErrors(t *testing.T) {
	tests := []struct {
		op      string
		left    object.Object
		right   object.Object
		wantErr string
	}{
		{"<", &object.String{Value: "a"}, &object.Integer{Value: 1}, "type mismatch: STRING < INTEGER"},
		{">", object.NIL, object.NIL, "unknown operator: NIL > NIL"},
	}
	for i, tt := range tests {
		_, err := Compare(tt.op, tt.left, tt.right)
		if err == nil || err.Error() != tt.wantErr {
			t.Fatalf("tests[%d] expected %q, got %v", i, tt.wantErr, err)
		}
	}
}
