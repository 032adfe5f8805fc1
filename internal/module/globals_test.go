package module

import (
	"testing"

	"ripple/internal/parser"
)

func TestDefinitions(t *testing.T) {
	src := `x = 1
func Update() { y = 2 }
if (x) {
  z = 3
} else {
  w = 4
}
try { v = 5 } catch (e) { }
x = 6`
	prog, diags := parser.Parse("m.rpl", src)
	if len(diags) != 0 {
		t.Fatalf("parse errors: %v", diags)
	}

	var got []string
	for _, d := range Definitions(prog) {
		got = append(got, d.Name)
	}
	want := []string{"x", "Update", "z", "w", "v", "e"}
	if len(got) != len(want) {
		t.Fatalf("definitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("definitions = %v, want %v", got, want)
		}
	}
}
