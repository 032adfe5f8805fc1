package gfx

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyboard struct {
	justPressed  []ebiten.Key
	pressed      []ebiten.Key
	justReleased []ebiten.Key
	durations    map[ebiten.Key]int
	chars        []rune
}

func (f *fakeKeyboard) JustPressed(keys []ebiten.Key) []ebiten.Key {
	return append(keys, f.justPressed...)
}

func (f *fakeKeyboard) Pressed(keys []ebiten.Key) []ebiten.Key {
	return append(keys, f.pressed...)
}

func (f *fakeKeyboard) JustReleased(keys []ebiten.Key) []ebiten.Key {
	return append(keys, f.justReleased...)
}

func (f *fakeKeyboard) Duration(key ebiten.Key) int { return f.durations[key] }

func (f *fakeKeyboard) Chars(runes []rune) []rune { return append(runes, f.chars...) }

type recordingSink struct {
	events  []string
	ctx     *Context
	present bool
	quitOn  ebiten.Key
	failOn  string
}

func (s *recordingSink) record(ev string) error {
	s.events = append(s.events, ev)
	if ev == s.failOn {
		return errors.New("failed in " + ev)
	}
	return nil
}

func (s *recordingSink) OnUpdate() error { return s.record("update") }

func (s *recordingSink) OnDraw() (bool, error) {
	if err := s.record("draw"); err != nil {
		return false, err
	}
	_ = s.ctx.Rect(0, 0, 1, 1, color.RGBA{A: 255})
	return s.present, nil
}

func (s *recordingSink) OnKeyDown(key ebiten.Key, repeat bool) (bool, error) {
	if key == s.quitOn {
		return true, nil
	}
	return false, s.record(fmt.Sprintf("down %s %t", key, repeat))
}

func (s *recordingSink) OnKeyUp(key ebiten.Key) error { return s.record("up " + key.String()) }

func (s *recordingSink) OnTextInput(r rune) error { return s.record("text " + string(r)) }

func newTestGame(kb *fakeKeyboard) (*game, *recordingSink) {
	ctx := NewContext(Options{RepeatDelay: 3, RepeatInterval: 2})
	sink := &recordingSink{ctx: ctx, quitOn: ebiten.KeyEscape}
	return newGame(ctx, sink, kb), sink
}

func TestUpdateEventOrder(t *testing.T) {
	kb := &fakeKeyboard{
		justPressed:  []ebiten.Key{ebiten.KeyA},
		pressed:      []ebiten.Key{ebiten.KeyA, ebiten.KeyB},
		justReleased: []ebiten.Key{ebiten.KeyC},
		durations:    map[ebiten.Key]int{ebiten.KeyA: 1, ebiten.KeyB: 5},
		chars:        []rune("hé"),
	}
	g, sink := newTestGame(kb)

	require.NoError(t, g.Update())
	assert.Equal(t, []string{
		"down A false",
		"down B true",
		"up C",
		"text h",
		"text é",
		"update",
	}, sink.events)
}

func TestIsRepeat(t *testing.T) {
	tests := []struct {
		d    int
		want bool
	}{
		{1, false},
		{30, false},
		{31, false},
		{34, true},
		{35, false},
		{38, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRepeat(tt.d, 30, 4), "duration %d", tt.d)
	}
}

func TestUpdateStopsOnQuitKey(t *testing.T) {
	kb := &fakeKeyboard{justPressed: []ebiten.Key{ebiten.KeyEscape, ebiten.KeyA}}
	g, sink := newTestGame(kb)

	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.Empty(t, sink.events, "nothing runs after a quit key")
}

func TestUpdateStopsOnSinkError(t *testing.T) {
	kb := &fakeKeyboard{justReleased: []ebiten.Key{ebiten.KeyA}, chars: []rune("x")}
	g, sink := newTestGame(kb)
	sink.failOn = "up A"

	assert.EqualError(t, g.Update(), "failed in up A")
	assert.Equal(t, []string{"up A"}, sink.events)
}

func TestScriptQuitEndsLoopAfterEvent(t *testing.T) {
	g, sink := newTestGame(&fakeKeyboard{chars: []rune("ab")})
	require.NoError(t, g.ctx.Quit())

	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.Empty(t, sink.events)
}

func TestDrawPresentsOnlyWhenAsked(t *testing.T) {
	g, sink := newTestGame(&fakeKeyboard{})

	_, cmds, present := g.drawFrame()
	assert.False(t, present)
	assert.Nil(t, cmds)

	sink.present = true
	clr, cmds, present := g.drawFrame()
	assert.True(t, present)
	assert.Len(t, cmds, 1, "commands from earlier frames are dropped")
	assert.Equal(t, color.RGBA{A: 255}, clr)
}

func TestDrawErrorReturnedByNextUpdate(t *testing.T) {
	g, sink := newTestGame(&fakeKeyboard{justPressed: []ebiten.Key{ebiten.KeyA}})
	sink.failOn = "draw"

	_, _, present := g.drawFrame()
	assert.False(t, present)

	assert.EqualError(t, g.Update(), "failed in draw")
	assert.Equal(t, []string{"draw"}, sink.events, "no event runs after a draw failure")

	_, _, present = g.drawFrame()
	assert.False(t, present)
	assert.Len(t, sink.events, 1)
}

func TestLayoutFollowsContext(t *testing.T) {
	g, _ := newTestGame(&fakeKeyboard{})
	require.NoError(t, g.ctx.SetSize(320, 200))
	w, h := g.Layout(1000, 1000)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
}
