package gfx

// Host operation codes. Script calls gfx_<name>(...) compile to a send of
// the matching code.
const (
	OpClear uint32 = iota + 1
	OpRect
	OpPixel
	OpLine
	OpCircle
	OpText
	OpTitle
	OpSize
	OpTime
	OpMouse
	OpKeyDown
	OpQuit
)

// Ops maps script-visible names to operation codes.
var Ops = map[string]uint32{
	"gfx_clear":    OpClear,
	"gfx_rect":     OpRect,
	"gfx_pixel":    OpPixel,
	"gfx_line":     OpLine,
	"gfx_circle":   OpCircle,
	"gfx_text":     OpText,
	"gfx_title":    OpTitle,
	"gfx_size":     OpSize,
	"gfx_time":     OpTime,
	"gfx_mouse":    OpMouse,
	"gfx_key_down": OpKeyDown,
	"gfx_quit":     OpQuit,
}

// OpName returns the script name of op, or "" if it is not a gfx op.
func OpName(op uint32) string {
	for name, code := range Ops {
		if code == op {
			return name
		}
	}
	return ""
}
