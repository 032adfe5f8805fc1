package compiler

import (
	"fmt"

	"ripple/internal/diag"
)

// CodeCompile is the diagnostic code of every compile error.
const CodeCompile = "RC0001"

// Error is a compile error at a source position.
type Error struct {
	File    string
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
}

func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Code:     CodeCompile,
		Message:  e.Message,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: e.Line, Col: e.Col, Length: 1},
	}
}
