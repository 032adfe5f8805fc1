package diag

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestDiagnosticFormat(t *testing.T) {
	d := Diagnostic{Code: "RP0001", Message: "expected expression", Range: Range{Line: 3, Col: 7}}
	if got := d.Format("main.rpl"); got != "main.rpl:3:7: error RP0001: expected expression" {
		t.Fatalf("Format = %q", got)
	}
	d.Code = ""
	d.Severity = SeverityWarning
	if got := d.Format("main.rpl"); got != "main.rpl:3:7: warning: expected expression" {
		t.Fatalf("Format = %q", got)
	}
}

func TestErrorFormatPlain(t *testing.T) {
	e := &Error{
		Kind:    KindRuntime,
		Message: "division by zero",
		Marks: []Mark{
			{Function: "main#div", File: "main.rpl", Line: 2, Col: 12, Snippet: "    return a / b"},
			{Function: "main#Update", File: "main.rpl", Line: 5, Col: 5},
		},
		Help: "check the divisor",
	}
	want := "error[runtime]: division by zero\n" +
		"  --> main.rpl:2:12 in main#div\n" +
		"  |\n" +
		"2 |     return a / b\n" +
		"  |            ^\n" +
		"  --> main.rpl:5:5 in main#Update\n" +
		"help: check the divisor\n"
	if got := e.Error(); got != want {
		t.Fatalf("Error() =\n%s\nwant\n%s", got, want)
	}
}

func TestErrorFormatNoTrace(t *testing.T) {
	e := &Error{Kind: KindHost, Message: "ERROR: no display"}
	if got := e.Error(); got != "error[host]: ERROR: no display\n" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestErrorFormatColor(t *testing.T) {
	e := &Error{Kind: KindLoad, Message: "cannot load module"}
	got := e.Format(termenv.ANSI)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape sequences in %q", got)
	}
	if !strings.Contains(got, "cannot load module") {
		t.Fatalf("message missing from %q", got)
	}
}

func TestMarkString(t *testing.T) {
	m := Mark{Line: 1, Col: 2}
	if got := m.String(); got != "<unknown>:1:2" {
		t.Fatalf("String() = %q", got)
	}
	m = Mark{Function: "main#Draw", File: "main.rpl", Line: 4, Col: 9}
	if got := m.String(); got != "main.rpl:4:9 in main#Draw" {
		t.Fatalf("String() = %q", got)
	}
}

func TestErrorFormatTabIndentedSnippet(t *testing.T) {
	e := &Error{
		Kind:    KindRuntime,
		Message: "division by zero",
		Marks:   []Mark{{File: "main.rpl", Line: 3, Col: 10, Snippet: "\t\treturn 1 / 0"}},
	}
	lines := strings.Split(e.Error(), "\n")
	if len(lines) < 5 {
		t.Fatalf("Error() = %q", e.Error())
	}
	src, caret := lines[3], lines[4]
	if strings.Contains(src, "\t") {
		t.Fatalf("snippet keeps a tab: %q", src)
	}
	// column 10 is the 1 after the expanded tabs
	at := strings.Index(caret, "^")
	if at < 0 || at >= len(src) || src[at] != '1' {
		t.Fatalf("caret misaligned:\n%s\n%s", src, caret)
	}
}

func TestCaretOffset(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want int
	}{
		{"x = 1", 5, 4},
		{"\tx", 2, 4},
		{"\t\tx", 3, 8},
		{"\"é\" + x", 8, 6},
		{"ab", 5, 4},
		{"\tb", 4, 6},
	}
	for _, tt := range tests {
		if got := caretOffset(tt.line, tt.col); got != tt.want {
			t.Fatalf("caretOffset(%q, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}
