package host

import (
	"errors"

	"ripple/internal/diag"
)

// Tracer exposes the call trace of the last uncaught failure.
type Tracer interface {
	Trace() []diag.Mark
}

// withTrace turns a VM failure into a runtime diagnostic carrying the trace
// as it is right now; the buffer is overwritten by the next VM call. A nil
// err stays nil.
func withTrace(t Tracer, err error) error {
	if err == nil {
		return nil
	}
	var d *diag.Error
	if errors.As(err, &d) {
		return d
	}
	return &diag.Error{
		Kind:    diag.KindRuntime,
		Marks:   t.Trace(),
		Message: err.Error(),
	}
}
