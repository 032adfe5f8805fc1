package diag

import "fmt"

// Severity separates diagnostics that stop a build from advice.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Range is a span of source, 1-based, in byte columns.
type Range struct {
	Line   int
	Col    int
	Length int // 1 when unknown
}

// Diagnostic is a finding at a source position. Parse and compile errors
// and hook signature warnings are reported this way; the LSP publishes
// them and `ripple check` prints them with Format.
type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Range    Range
}

// Format renders d as "path:line:col: severity CODE: message".
func (d Diagnostic) Format(path string) string {
	head := d.Severity.String()
	if d.Code != "" {
		head += " " + d.Code
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Range.Line, d.Range.Col, head, d.Message)
}
