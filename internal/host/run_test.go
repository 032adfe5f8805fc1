package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/diag"
	"ripple/internal/gfx"
)

// fakeLoop replays a fixed event script into the sink.
type fakeLoop struct {
	ctx     *gfx.Context
	present []bool
	events  func(sink gfx.EventSink) error
}

func (l *fakeLoop) Run(ctx *gfx.Context, sink gfx.EventSink) error {
	l.ctx = ctx
	return l.events(sink)
}

func runScript(t *testing.T, src string, loop gfx.Loop) (*bytes.Buffer, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(Options{
		Roots:  []string{writeScript(t, src)},
		Module: "main",
		Window: gfx.Options{Width: 100, Height: 100},
		Loop:   loop,
		Output: &out,
	})
	return &out, err
}

func TestRunDispatchesEvents(t *testing.T) {
	src := `
gfx_title("demo")
print("ready")
func Update() { print("update") }
func Draw() { gfx_rect(0, 0, 10, 10, 255, 255, 255) }
func KeyDown(k, r) { print("down", k, r) }
func KeyUp(k) { print("up", k) }
func TextInput(c) { print("text", c) }
`
	loop := &fakeLoop{}
	loop.events = func(sink gfx.EventSink) error {
		if _, err := sink.OnKeyDown(ebiten.KeyA, false); err != nil {
			return err
		}
		if _, err := sink.OnKeyDown(ebiten.KeyA, true); err != nil {
			return err
		}
		if err := sink.OnKeyUp(ebiten.KeyA); err != nil {
			return err
		}
		if err := sink.OnTextInput('a'); err != nil {
			return err
		}
		if err := sink.OnUpdate(); err != nil {
			return err
		}
		present, err := sink.OnDraw()
		if err != nil {
			return err
		}
		loop.present = append(loop.present, present)
		quit, err := sink.OnKeyDown(ebiten.KeyEscape, false)
		if err != nil || !quit {
			return errors.New("escape did not quit")
		}
		return nil
	}

	out, err := runScript(t, src, loop)
	require.NoError(t, err)
	assert.Equal(t, "ready\ndown A false\ndown A true\nup A\ntext a\nupdate\n", out.String())
	assert.Equal(t, []bool{true}, loop.present)
	assert.Equal(t, "demo", loop.ctx.Title())
	assert.True(t, loop.ctx.Closed(), "the context is closed when Run returns")
}

func TestRunReturnsHookFailure(t *testing.T) {
	loop := &fakeLoop{events: func(sink gfx.EventSink) error {
		return sink.OnUpdate()
	}}
	_, err := runScript(t, "func helper() { throw \"boom\" }\nfunc Update() { helper() }\n", loop)

	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.KindRuntime, de.Kind)
	assert.Equal(t, "boom", de.Message)
	assert.Len(t, de.Marks, 2)
}

func TestRunHostLoopError(t *testing.T) {
	loop := &fakeLoop{events: func(gfx.EventSink) error { return errors.New("no display") }}
	_, err := runScript(t, "x = 1\n", loop)

	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.KindHost, de.Kind)
	assert.Equal(t, "error[host]: ERROR: no display\n", de.Error())
}

func TestRunBootstrapFailures(t *testing.T) {
	never := &fakeLoop{events: func(gfx.EventSink) error {
		t.Fatal("loop must not start")
		return nil
	}}

	tests := []struct {
		name    string
		src     string
		kind    diag.Kind
		message string
	}{
		{"syntax", "func (\n", diag.KindCompile, ""},
		{"compile", "x = 1\ny = missing + 1\n", diag.KindCompile, "unknown identifier: missing"},
		{"top level", "x = 1 / 0\n", diag.KindRuntime, "division by zero"},
		{"bind", "Draw = 5\n", diag.KindBind, "main#Draw is INTEGER, not a function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runScript(t, tt.src, never)
			var de *diag.Error
			require.True(t, errors.As(err, &de), "err = %v", err)
			assert.Equal(t, tt.kind, de.Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, de.Message)
			}
		})
	}
}

func TestRunCompileErrorSnippet(t *testing.T) {
	never := &fakeLoop{events: func(gfx.EventSink) error { return nil }}
	_, err := runScript(t, "x = 1\ny = missing + 1\n", never)

	var de *diag.Error
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Marks, 1)
	assert.Equal(t, 2, de.Marks[0].Line)
	assert.Equal(t, 5, de.Marks[0].Col)
	assert.Equal(t, "y = missing + 1", de.Marks[0].Snippet)
}

func TestRunMissingModule(t *testing.T) {
	err := Run(Options{Roots: []string{t.TempDir()}, Module: "nothere"})
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.KindLoad, de.Kind)
	assert.Contains(t, de.Message, `cannot load module "nothere"`)
	assert.NotEmpty(t, de.Help)
}

func TestCheckUsesEveryRoot(t *testing.T) {
	lib := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(lib, "util.rpl"), []byte("size = 3\n"), 0o644))
	app := writeScript(t, "import util\nx = util.size\n")

	fs, unit, err := Check([]string{app, lib}, "main")
	require.NoError(t, err)
	require.NotNil(t, unit)
	require.Len(t, fs.Files, 2)
	assert.Equal(t, "util", fs.Files[0].Module)
}
