package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/diag"
)

type fixedTracer []diag.Mark

func (t fixedTracer) Trace() []diag.Mark { return t }

func TestWithTrace(t *testing.T) {
	tr := fixedTracer{{Function: "main#Draw", File: "main.rpl", Line: 3, Col: 5}}

	assert.NoError(t, withTrace(tr, nil))

	err := withTrace(tr, errors.New("division by zero"))
	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diag.KindRuntime, de.Kind)
	assert.Equal(t, "division by zero", de.Message)
	assert.Equal(t, []diag.Mark(tr), de.Marks)
	assert.Empty(t, de.Help)

	bind := &diag.Error{Kind: diag.KindBind, Message: "Draw is INTEGER, not a function"}
	assert.Same(t, bind, withTrace(tr, bind), "existing diagnostics pass through untouched")
}
