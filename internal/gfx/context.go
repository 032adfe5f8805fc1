// Package gfx is the ebiten side of the host: the resource context that
// script operations draw into, and the loop that feeds input events to an
// EventSink.
package gfx

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ripple.gfx")

// ErrClosed is returned by every Context operation after Close.
var ErrClosed = errors.New("gfx: context closed")

type Options struct {
	Width  int
	Height int
	Title  string

	// RepeatDelay and RepeatInterval are in ticks.
	RepeatDelay    int
	RepeatInterval int
}

// Input is the live device state queried by script operations.
type Input interface {
	IsKeyPressed(key ebiten.Key) bool
	CursorPosition() (x, y int)
}

type ebitenInput struct{}

func (ebitenInput) IsKeyPressed(key ebiten.Key) bool { return ebiten.IsKeyPressed(key) }
func (ebitenInput) CursorPosition() (int, int)       { return ebiten.CursorPosition() }

// Context owns everything script can touch on the host side. It is created
// before the VM and closed after the loop returns.
type Context struct {
	mu sync.Mutex

	width  int
	height int
	title  string
	// windowDirty is set when script changes the title or size; the loop
	// applies it on its own goroutine.
	windowDirty bool

	commands []command
	clear    color.RGBA

	start  time.Time
	now    func() time.Time
	input  Input
	quit   bool
	closed bool

	repeatDelay    int
	repeatInterval int
}

func NewContext(opts Options) *Context {
	c := &Context{
		width:          opts.Width,
		height:         opts.Height,
		title:          opts.Title,
		clear:          color.RGBA{A: 255},
		now:            time.Now,
		input:          ebitenInput{},
		repeatDelay:    opts.RepeatDelay,
		repeatInterval: opts.RepeatInterval,
	}
	if c.width <= 0 {
		c.width = 640
	}
	if c.height <= 0 {
		c.height = 480
	}
	if c.title == "" {
		c.title = "ripple"
	}
	if c.repeatDelay <= 0 {
		c.repeatDelay = 30
	}
	if c.repeatInterval <= 0 {
		c.repeatInterval = 4
	}
	c.start = c.now()
	log.Debug("context created", "width", c.width, "height", c.height)
	return c
}

// SetInput replaces the device state source. Tests use it to fake input.
func (c *Context) SetInput(in Input) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = in
}

// SetClock replaces the time source and restarts the clock.
func (c *Context) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	c.start = now()
}

// Close releases the context. Later operations fail with ErrClosed.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.commands = nil
	log.Debug("context closed")
}

func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Context) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Context) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

func (c *Context) RepeatSettings() (delay, interval int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeatDelay, c.repeatInterval
}

func (c *Context) Clear(clr color.RGBA) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.clear = clr
	return nil
}

func (c *Context) Rect(x, y, w, h float32, clr color.RGBA) error {
	return c.push(rectCmd{x: x, y: y, w: w, h: h, c: clr})
}

func (c *Context) Pixel(x, y int, clr color.RGBA) error {
	return c.push(pixelCmd{x: x, y: y, c: clr})
}

func (c *Context) Line(x1, y1, x2, y2 float32, clr color.RGBA) error {
	return c.push(lineCmd{x1: x1, y1: y1, x2: x2, y2: y2, c: clr})
}

func (c *Context) Circle(x, y, r float32, clr color.RGBA) error {
	if r < 0 {
		return fmt.Errorf("circle radius must not be negative, got %g", r)
	}
	return c.push(circleCmd{x: x, y: y, r: r, c: clr})
}

func (c *Context) Text(s string, x, y int) error {
	return c.push(textCmd{s: s, x: x, y: y})
}

func (c *Context) push(cmd command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.commands = append(c.commands, cmd)
	return nil
}

func (c *Context) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.title = title
	c.windowDirty = true
	return nil
}

func (c *Context) SetSize(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", w, h)
	}
	c.width, c.height = w, h
	c.windowDirty = true
	return nil
}

// Time returns the seconds elapsed since the loop started.
func (c *Context) Time() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.now().Sub(c.start).Seconds(), nil
}

func (c *Context) Mouse() (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, 0, ErrClosed
	}
	x, y := c.input.CursorPosition()
	return x, y, nil
}

// KeyDown reports whether the named key is held. Names are ebiten's,
// matched case-insensitively ("a", "Space", "ArrowLeft", "left").
func (c *Context) KeyDown(name string) (bool, error) {
	key, err := ParseKey(name)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	return c.input.IsKeyPressed(key), nil
}

// Quit asks the loop to exit normally once the current event is handled.
func (c *Context) Quit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.quit = true
	return nil
}

func (c *Context) QuitRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quit
}

func (c *Context) restartClock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
}

func (c *Context) beginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = c.commands[:0]
}

// frame returns the clear color and a copy of the recorded commands.
func (c *Context) frame() (color.RGBA, []command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmds := make([]command, len(c.commands))
	copy(cmds, c.commands)
	return c.clear, cmds
}

// takeWindowChange reports a pending title or size change and clears it.
func (c *Context) takeWindowChange() (w, h int, title string, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed = c.windowDirty
	c.windowDirty = false
	return c.width, c.height, c.title, changed
}

// ParseKey maps a key name to its ebiten key.
func ParseKey(name string) (ebiten.Key, error) {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// RGBA builds a color from 0..255 channel values.
func RGBA(r, g, b, a int64) (color.RGBA, error) {
	rr, err := toByte(r)
	if err != nil {
		return color.RGBA{}, err
	}
	gg, err := toByte(g)
	if err != nil {
		return color.RGBA{}, err
	}
	bb, err := toByte(b)
	if err != nil {
		return color.RGBA{}, err
	}
	aa, err := toByte(a)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: rr, G: gg, B: bb, A: aa}, nil
}

func toByte(v int64) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("color channels must be 0..255, got %d", v)
	}
	return uint8(v), nil
}
