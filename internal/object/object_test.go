package object

import (
	"errors"
	"testing"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		obj  Object
		want string
	}{
		{&Integer{Value: -42}, "-42"},
		{&Float{Value: 1.5}, "1.5"},
		{&String{Value: "a"}, "a"},
		{TRUE, "true"},
		{NIL, "nil"},
		{&Array{Elements: []Object{&Integer{Value: 1}, &String{Value: "x"}}}, `[1, "x"]`},
		{Errorf("bad %d", 1), "error: bad 1"},
	}
	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.want {
			t.Fatalf("Inspect() = %q, want %q", got, tt.want)
		}
	}
}

func TestThrownWrapsPlainValues(t *testing.T) {
	e := Thrown(&String{Value: "boom"})
	if e.Message != "boom" {
		t.Fatalf("message = %q", e.Message)
	}
	v, ok := e.Member("value")
	if !ok || v.Inspect() != "boom" {
		t.Fatalf("value member = %v", v)
	}

	orig := Errorf("x")
	if Thrown(orig) != orig {
		t.Fatal("throwing an error value must not wrap it again")
	}

	var err error = orig
	var target *Error
	if !errors.As(err, &target) {
		t.Fatal("*Error must satisfy errors.As")
	}
}

func TestProgramLookups(t *testing.T) {
	p := &Program{
		Globals: []string{"main#x", "main#Update"},
		Sources: map[string][]string{"main.rpl": {"x = 1", "func Update() {}"}},
	}
	if slot, ok := p.GlobalSlot("main#Update"); !ok || slot != 1 {
		t.Fatalf("GlobalSlot = %d, %v", slot, ok)
	}
	if _, ok := p.GlobalSlot("main#Draw"); ok {
		t.Fatal("unexpected slot for undefined global")
	}
	if got := p.SourceLine("main.rpl", 2); got != "func Update() {}" {
		t.Fatalf("SourceLine = %q", got)
	}
	if got := p.SourceLine("main.rpl", 3); got != "" {
		t.Fatalf("SourceLine out of range = %q", got)
	}
}
