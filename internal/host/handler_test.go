package host

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/gfx"
	"ripple/internal/object"
)

type heldKeys map[ebiten.Key]bool

func (h heldKeys) IsKeyPressed(key ebiten.Key) bool { return h[key] }
func (heldKeys) CursorPosition() (int, int)         { return 12, 34 }

func ints(vs ...int64) []object.Object {
	out := make([]object.Object, len(vs))
	for i, v := range vs {
		out[i] = &object.Integer{Value: v}
	}
	return out
}

func str(s string) object.Object { return &object.String{Value: s} }

func TestHandlerOperations(t *testing.T) {
	ctx := gfx.NewContext(gfx.Options{})
	ctx.SetInput(heldKeys{ebiten.KeySpace: true})
	h := &handler{ctx: ctx}

	tests := []struct {
		op   uint32
		args []object.Object
		want string
	}{
		{gfx.OpClear, ints(0, 0, 0), "nil"},
		{gfx.OpClear, ints(0, 0, 0, 128), "nil"},
		{gfx.OpRect, ints(1, 2, 3, 4, 255, 0, 0), "nil"},
		{gfx.OpRect, append([]object.Object{&object.Float{Value: 1.5}}, ints(2, 3, 4, 255, 0, 0, 10)...), "nil"},
		{gfx.OpPixel, ints(1, 1, 0, 0, 0), "nil"},
		{gfx.OpLine, ints(0, 0, 5, 5, 1, 2, 3), "nil"},
		{gfx.OpCircle, ints(5, 5, 3, 1, 2, 3), "nil"},
		{gfx.OpText, []object.Object{str("hi"), &object.Integer{Value: 1}, &object.Integer{Value: 2}}, "nil"},
		{gfx.OpTitle, []object.Object{str("pong")}, "nil"},
		{gfx.OpSize, ints(320, 200), "nil"},
		{gfx.OpMouse, nil, "[12, 34]"},
		{gfx.OpKeyDown, []object.Object{str("space")}, "true"},
		{gfx.OpKeyDown, []object.Object{str("a")}, "false"},
		{gfx.OpQuit, nil, "nil"},
	}
	for _, tt := range tests {
		res, err := h.Send(tt.op, tt.args)
		require.NoError(t, err, gfx.OpName(tt.op))
		got := "nil"
		if res != nil {
			got = res.Inspect()
		}
		assert.Equal(t, tt.want, got, gfx.OpName(tt.op))
	}

	assert.Equal(t, "pong", ctx.Title())
	w, hh := ctx.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, hh)
	assert.True(t, ctx.QuitRequested())

	res, err := h.Send(gfx.OpTime, nil)
	require.NoError(t, err)
	assert.Equal(t, object.FLOAT_OBJ, res.Type())
}

func TestHandlerArgumentErrors(t *testing.T) {
	h := &handler{ctx: gfx.NewContext(gfx.Options{})}

	tests := []struct {
		op   uint32
		args []object.Object
		want string
	}{
		{gfx.OpTitle, nil, "Expected 1 args but got 0"},
		{gfx.OpClear, ints(1, 2), "Expected 3 to 4 args but got 2"},
		{gfx.OpTitle, ints(1), "argument 1 must be STRING, got INTEGER"},
		{gfx.OpPixel, []object.Object{str("x"), str("y"), str("r"), str("g"), str("b")}, "argument 1 must be a number, got STRING"},
		{gfx.OpClear, ints(0, 300, 0), "color channels must be 0..255, got 300"},
		{gfx.OpKeyDown, []object.Object{str("nope")}, `unknown key "nope"`},
		{gfx.OpSize, ints(0, 1), "window size must be positive, got 0x1"},
		{99, nil, "unknown host operation 99"},
	}
	for _, tt := range tests {
		_, err := h.Send(tt.op, tt.args)
		assert.EqualError(t, err, tt.want)
	}
}

func TestHandlerAfterClose(t *testing.T) {
	ctx := gfx.NewContext(gfx.Options{})
	h := &handler{ctx: ctx}
	ctx.Close()

	_, err := h.Send(gfx.OpRect, ints(0, 0, 1, 1, 0, 0, 0))
	assert.ErrorIs(t, err, gfx.ErrClosed)
}
