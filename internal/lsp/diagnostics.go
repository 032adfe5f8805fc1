package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ripple/internal/diag"
)

// ToLspDiagnostics converts diagnostics of text to LSP form.
func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		severity := protocol.DiagnosticSeverityError
		if d.Severity == diag.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}

		pd := protocol.Diagnostic{
			Range:    rangeAt(text, d.Range.Line, d.Range.Col, d.Range.Length),
			Severity: &severity,
			Source:   ptrString("ripple"),
			Message:  d.Message,
		}
		if d.Code != "" {
			code := protocol.IntegerOrString{Value: d.Code}
			pd.Code = &code
		}
		out = append(out, pd)
	}
	return out
}

func ptrString(s string) *string { return &s }
