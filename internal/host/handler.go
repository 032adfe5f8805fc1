package host

import (
	"fmt"
	"image/color"
	"math"

	"ripple/internal/gfx"
	"ripple/internal/object"
)

// handler carries out gfx operations for the VM. It holds the context for
// the lifetime of the VM; Run closes the context only after the loop, and
// with it every VM call, has returned.
type handler struct {
	ctx *gfx.Context
}

func (h *handler) Send(op uint32, args []object.Object) (object.Object, error) {
	switch op {
	case gfx.OpClear:
		if err := checkArgc(args, 3, 4); err != nil {
			return nil, err
		}
		clr, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Clear(clr)

	case gfx.OpRect:
		if err := checkArgc(args, 7, 8); err != nil {
			return nil, err
		}
		xywh, err := floatArgs(args[:4])
		if err != nil {
			return nil, err
		}
		clr, err := colorArg(args, 4)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Rect(xywh[0], xywh[1], xywh[2], xywh[3], clr)

	case gfx.OpPixel:
		if err := checkArgc(args, 5, 5); err != nil {
			return nil, err
		}
		x, err := intArg(args, 0)
		if err != nil {
			return nil, err
		}
		y, err := intArg(args, 1)
		if err != nil {
			return nil, err
		}
		clr, err := colorArg(args, 2)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Pixel(int(x), int(y), clr)

	case gfx.OpLine:
		if err := checkArgc(args, 7, 7); err != nil {
			return nil, err
		}
		pts, err := floatArgs(args[:4])
		if err != nil {
			return nil, err
		}
		clr, err := colorArg(args, 4)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Line(pts[0], pts[1], pts[2], pts[3], clr)

	case gfx.OpCircle:
		if err := checkArgc(args, 6, 6); err != nil {
			return nil, err
		}
		xyr, err := floatArgs(args[:3])
		if err != nil {
			return nil, err
		}
		clr, err := colorArg(args, 3)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Circle(xyr[0], xyr[1], xyr[2], clr)

	case gfx.OpText:
		if err := checkArgc(args, 3, 3); err != nil {
			return nil, err
		}
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		x, err := intArg(args, 1)
		if err != nil {
			return nil, err
		}
		y, err := intArg(args, 2)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.Text(s, int(x), int(y))

	case gfx.OpTitle:
		if err := checkArgc(args, 1, 1); err != nil {
			return nil, err
		}
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.SetTitle(s)

	case gfx.OpSize:
		if err := checkArgc(args, 2, 2); err != nil {
			return nil, err
		}
		w, err := intArg(args, 0)
		if err != nil {
			return nil, err
		}
		hh, err := intArg(args, 1)
		if err != nil {
			return nil, err
		}
		return nil, h.ctx.SetSize(int(w), int(hh))

	case gfx.OpTime:
		if err := checkArgc(args, 0, 0); err != nil {
			return nil, err
		}
		secs, err := h.ctx.Time()
		if err != nil {
			return nil, err
		}
		return &object.Float{Value: secs}, nil

	case gfx.OpMouse:
		if err := checkArgc(args, 0, 0); err != nil {
			return nil, err
		}
		x, y, err := h.ctx.Mouse()
		if err != nil {
			return nil, err
		}
		return &object.Array{Elements: []object.Object{
			&object.Integer{Value: int64(x)},
			&object.Integer{Value: int64(y)},
		}}, nil

	case gfx.OpKeyDown:
		if err := checkArgc(args, 1, 1); err != nil {
			return nil, err
		}
		name, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		down, err := h.ctx.KeyDown(name)
		if err != nil {
			return nil, err
		}
		return object.NativeBool(down), nil

	case gfx.OpQuit:
		if err := checkArgc(args, 0, 0); err != nil {
			return nil, err
		}
		return nil, h.ctx.Quit()
	}
	return nil, fmt.Errorf("unknown host operation %d", op)
}

func checkArgc(args []object.Object, min, max int) error {
	if len(args) >= min && len(args) <= max {
		return nil
	}
	if min == max {
		return fmt.Errorf("Expected %d args but got %d", min, len(args))
	}
	return fmt.Errorf("Expected %d to %d args but got %d", min, max, len(args))
}

func convErr(i int, want string, got object.Object) error {
	return fmt.Errorf("argument %d must be %s, got %s", i+1, want, got.Type())
}

func intArg(args []object.Object, i int) (int64, error) {
	switch v := args[i].(type) {
	case *object.Integer:
		return v.Value, nil
	case *object.Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return 0, fmt.Errorf("argument %d must be finite", i+1)
		}
		return int64(v.Value), nil
	}
	return 0, convErr(i, "a number", args[i])
}

func floatArg(args []object.Object, i int) (float32, error) {
	switch v := args[i].(type) {
	case *object.Integer:
		return float32(v.Value), nil
	case *object.Float:
		return float32(v.Value), nil
	}
	return 0, convErr(i, "a number", args[i])
}

func floatArgs(args []object.Object) ([]float32, error) {
	out := make([]float32, len(args))
	for i := range args {
		f, err := floatArg(args, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func stringArg(args []object.Object, i int) (string, error) {
	if s, ok := args[i].(*object.String); ok {
		return s.Value, nil
	}
	return "", convErr(i, "STRING", args[i])
}

// colorArg reads r, g, b and an optional alpha starting at args[i].
func colorArg(args []object.Object, i int) (color.RGBA, error) {
	var ch [4]int64
	ch[3] = 255
	for j := 0; j < 4 && i+j < len(args); j++ {
		v, err := intArg(args, i+j)
		if err != nil {
			return color.RGBA{}, err
		}
		ch[j] = v
	}
	return gfx.RGBA(ch[0], ch[1], ch[2], ch[3])
}
