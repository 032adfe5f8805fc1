package gfx

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// command is one recorded draw call, replayed onto the screen when the
// frame is presented.
type command interface {
	draw(dst *ebiten.Image)
}

type rectCmd struct {
	x, y, w, h float32
	c          color.RGBA
}

func (r rectCmd) draw(dst *ebiten.Image) {
	vector.DrawFilledRect(dst, r.x, r.y, r.w, r.h, r.c, false)
}

type pixelCmd struct {
	x, y int
	c    color.RGBA
}

func (p pixelCmd) draw(dst *ebiten.Image) {
	vector.DrawFilledRect(dst, float32(p.x), float32(p.y), 1, 1, p.c, false)
}

type lineCmd struct {
	x1, y1, x2, y2 float32
	c              color.RGBA
}

func (l lineCmd) draw(dst *ebiten.Image) {
	vector.StrokeLine(dst, l.x1, l.y1, l.x2, l.y2, 1, l.c, true)
}

type circleCmd struct {
	x, y, r float32
	c       color.RGBA
}

func (cc circleCmd) draw(dst *ebiten.Image) {
	vector.DrawFilledCircle(dst, cc.x, cc.y, cc.r, cc.c, true)
}

type textCmd struct {
	s    string
	x, y int
}

func (t textCmd) draw(dst *ebiten.Image) {
	ebitenutil.DebugPrintAt(dst, t.s, t.x, t.y)
}
