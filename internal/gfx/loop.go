package gfx

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EventSink receives host events, one at a time, on the loop goroutine.
type EventSink interface {
	OnUpdate() error
	// OnDraw reports whether the recorded frame should be presented.
	OnDraw() (present bool, err error)
	// OnKeyDown reports whether the loop should stop.
	OnKeyDown(key ebiten.Key, repeat bool) (quit bool, err error)
	OnKeyUp(key ebiten.Key) error
	OnTextInput(r rune) error
}

// Loop drives a sink until it quits or fails.
type Loop interface {
	Run(ctx *Context, sink EventSink) error
}

// EbitenLoop runs the sink inside ebiten.RunGame.
type EbitenLoop struct{}

func (EbitenLoop) Run(ctx *Context, sink EventSink) error {
	if ctx.Closed() {
		return ErrClosed
	}
	w, h := ctx.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(ctx.Title())
	// frames that are not presented keep the previous image
	ebiten.SetScreenClearedEveryFrame(false)

	ctx.restartClock()
	log.Notice("loop started")
	err := ebiten.RunGame(newGame(ctx, sink, ebitenKeyboard{}))
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	log.Notice("loop stopped")
	return err
}

// keyboard is the per-tick input source. ebitenKeyboard reads inpututil.
type keyboard interface {
	JustPressed(keys []ebiten.Key) []ebiten.Key
	Pressed(keys []ebiten.Key) []ebiten.Key
	JustReleased(keys []ebiten.Key) []ebiten.Key
	Duration(key ebiten.Key) int
	Chars(runes []rune) []rune
}

type ebitenKeyboard struct{}

func (ebitenKeyboard) JustPressed(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustPressedKeys(keys)
}

func (ebitenKeyboard) Pressed(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendPressedKeys(keys)
}

func (ebitenKeyboard) JustReleased(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustReleasedKeys(keys)
}

func (ebitenKeyboard) Duration(key ebiten.Key) int { return inpututil.KeyPressDuration(key) }

func (ebitenKeyboard) Chars(runes []rune) []rune { return ebiten.AppendInputChars(runes) }

type game struct {
	ctx  *Context
	sink EventSink
	kb   keyboard

	// err holds a failure from Draw, which cannot return one; the next
	// Update returns it before dispatching anything else.
	err error

	keys  []ebiten.Key
	runes []rune
}

func newGame(ctx *Context, sink EventSink, kb keyboard) *game {
	return &game{ctx: ctx, sink: sink, kb: kb}
}

// isRepeat reports whether a key held for d ticks fires an auto-repeat.
func isRepeat(d, delay, interval int) bool {
	if d <= delay {
		return false
	}
	return (d-delay)%interval == 0
}

func (g *game) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.ctx.QuitRequested() {
		return ebiten.Termination
	}

	g.keys = g.kb.JustPressed(g.keys[:0])
	for _, k := range g.keys {
		if err := g.keyDown(k, false); err != nil {
			return err
		}
	}

	delay, interval := g.ctx.RepeatSettings()
	g.keys = g.kb.Pressed(g.keys[:0])
	for _, k := range g.keys {
		if !isRepeat(g.kb.Duration(k), delay, interval) {
			continue
		}
		if err := g.keyDown(k, true); err != nil {
			return err
		}
	}

	g.keys = g.kb.JustReleased(g.keys[:0])
	for _, k := range g.keys {
		if err := g.after(g.sink.OnKeyUp(k)); err != nil {
			return err
		}
	}

	g.runes = g.kb.Chars(g.runes[:0])
	for _, r := range g.runes {
		if err := g.after(g.sink.OnTextInput(r)); err != nil {
			return err
		}
	}

	if err := g.after(g.sink.OnUpdate()); err != nil {
		return err
	}

	if w, h, title, ok := g.ctx.takeWindowChange(); ok {
		ebiten.SetWindowSize(w, h)
		ebiten.SetWindowTitle(title)
	}
	return nil
}

func (g *game) keyDown(k ebiten.Key, repeat bool) error {
	quit, err := g.sink.OnKeyDown(k, repeat)
	if err != nil {
		return err
	}
	if quit {
		return ebiten.Termination
	}
	return g.after(nil)
}

// after turns a quit requested by script during the last event into
// termination.
func (g *game) after(err error) error {
	if err != nil {
		return err
	}
	if g.ctx.QuitRequested() {
		return ebiten.Termination
	}
	return nil
}

// drawFrame runs the draw event and returns the commands to replay, or
// false when nothing should be presented.
func (g *game) drawFrame() (color.RGBA, []command, bool) {
	if g.err != nil || g.ctx.QuitRequested() {
		return color.RGBA{}, nil, false
	}
	g.ctx.beginFrame()
	present, err := g.sink.OnDraw()
	if err != nil {
		g.err = err
		return color.RGBA{}, nil, false
	}
	if !present {
		return color.RGBA{}, nil, false
	}
	clr, cmds := g.ctx.frame()
	return clr, cmds, true
}

func (g *game) Draw(screen *ebiten.Image) {
	clr, cmds, present := g.drawFrame()
	if !present {
		return
	}
	screen.Fill(clr)
	for _, c := range cmds {
		c.draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ctx.Size()
}
