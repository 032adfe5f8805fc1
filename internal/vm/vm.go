// Package vm executes compiled units. A VM owns its global scope, call stack
// and trace buffer, and bridges OpSend to a host Handler.
package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"ripple/internal/code"
	"ripple/internal/diag"
	"ripple/internal/object"
	"ripple/internal/semantics"
)

const StackSize = 2048
const MaxFrames = 1024

// ErrReentrant is returned by a public call made while another one is in
// flight, for example from inside Handler.Send.
var ErrReentrant = errors.New("vm: call while another call is in flight")

// Handler performs host operations requested by OpSend. A non-nil error
// becomes a script failure at the call site.
type Handler interface {
	Send(op uint32, args []object.Object) (object.Object, error)
}

type VM struct {
	handler  Handler
	builtins []*object.Builtin
	out      io.Writer

	program   *object.Program
	constants []object.Object
	globals   []object.Object

	stack []object.Object
	sp    int

	frames      []*Frame
	framesIndex int

	traps []trap
	trace []diag.Mark

	busy bool
}

type trap struct {
	catchIP  int
	sp       int
	frameIdx int
}

// New returns a VM that sends host operations to h. The VM owns h for its
// whole lifetime.
func New(h Handler) *VM {
	m := &VM{
		handler: h,
		out:     os.Stdout,
		stack:   make([]object.Object, StackSize),
		frames:  make([]*Frame, MaxFrames),
	}
	m.builtins = newBuiltins(func() io.Writer { return m.out })
	return m
}

// SetOutput redirects the print builtin.
func (m *VM) SetOutput(w io.Writer) {
	m.out = w
}

// Execute installs the global table of unit's program and runs it.
func (m *VM) Execute(unit *object.CompiledFunction) (object.Object, error) {
	if m.busy {
		return nil, ErrReentrant
	}
	if unit == nil || unit.Program == nil {
		return nil, fmt.Errorf("vm: unit has no program")
	}
	m.program = unit.Program
	m.constants = unit.Program.Constants
	m.globals = make([]object.Object, len(unit.Program.Globals))
	return m.call(&object.Closure{Fn: unit}, nil)
}

// Exec runs a zero-argument callback.
func (m *VM) Exec(cl *object.Closure) (object.Object, error) {
	return m.call(cl, nil)
}

// Apply calls fn with args.
func (m *VM) Apply(fn object.Object, args []object.Object) (object.Object, error) {
	return m.call(fn, args)
}

// Trace returns the call stack captured at the most recent uncaught failure,
// innermost frame first. It is cleared at the start of every call.
func (m *VM) Trace() []diag.Mark {
	out := make([]diag.Mark, len(m.trace))
	copy(out, m.trace)
	return out
}

// Global returns the value of a qualified global ("module#name"). Unassigned
// globals report false.
func (m *VM) Global(name string) (object.Object, bool) {
	if m.program == nil {
		return nil, false
	}
	slot, ok := m.program.GlobalSlot(name)
	if !ok || m.globals[slot] == nil {
		return nil, false
	}
	return m.globals[slot], true
}

func (m *VM) call(fn object.Object, args []object.Object) (object.Object, error) {
	if m.busy {
		return nil, ErrReentrant
	}
	m.busy = true
	defer func() { m.busy = false }()

	m.trace = nil
	m.sp = 0
	m.framesIndex = 0
	m.traps = m.traps[:0]

	switch f := fn.(type) {
	case *object.Builtin:
		res, err := f.Fn(args...)
		if err != nil {
			return nil, scriptError(err)
		}
		return orNil(res), nil

	case *object.Closure:
		if f.Fn.Program != m.program {
			return nil, fmt.Errorf("vm: %s does not belong to the executed program", f.Fn.Name)
		}
		if len(args) != f.Fn.NumParameters {
			return nil, object.Errorf("wrong number of arguments: expected %d, got %d", f.Fn.NumParameters, len(args))
		}
		if 1+f.Fn.NumLocals >= StackSize {
			return nil, object.Errorf("stack overflow")
		}
		m.stack[0] = f
		copy(m.stack[1:], args)
		clear(m.stack[1+len(args) : 1+f.Fn.NumLocals])
		m.pushFrame(NewFrame(f, 1))
		m.sp = 1 + f.Fn.NumLocals

		if err := m.run(0); err != nil {
			return nil, err
		}
		return m.pop(), nil

	default:
		typeName := "<nil>"
		if fn != nil {
			typeName = string(fn.Type())
		}
		return nil, object.Errorf("attempted to call non-function: %s", typeName)
	}
}

func (m *VM) currentFrame() *Frame {
	return m.frames[m.framesIndex-1]
}

func (m *VM) pushFrame(f *Frame) {
	m.frames[m.framesIndex] = f
	m.framesIndex++
}

func (m *VM) popFrame() *Frame {
	m.framesIndex--
	f := m.frames[m.framesIndex]
	m.frames[m.framesIndex] = nil
	return f
}

// push raises a stack overflow instead of failing; callers continue the
// loop either way.
func (m *VM) push(o object.Object) error {
	if m.sp >= StackSize {
		return m.raise(object.Errorf("stack overflow"))
	}
	m.stack[m.sp] = o
	m.sp++
	return nil
}

func (m *VM) pop() object.Object {
	m.sp--
	o := m.stack[m.sp]
	m.stack[m.sp] = nil
	return o
}

func (m *VM) run(stopFrames int) error {
	for m.framesIndex > stopFrames {
		frame := m.currentFrame()
		ins := frame.Instructions()
		if frame.ip+1 >= len(ins) {
			return fmt.Errorf("vm: unexpected end of instructions in %s", frame.cl.Fn.Name)
		}
		frame.ip++
		op := code.Opcode(ins[frame.ip])

		var err error
		switch op {
		case code.OpConstant:
			idx := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			err = m.push(m.constants[idx])

		case code.OpPop:
			m.pop()

		case code.OpTrue:
			err = m.push(object.TRUE)

		case code.OpFalse:
			err = m.push(object.FALSE)

		case code.OpNil:
			err = m.push(object.NIL)

		case code.OpAdd, code.OpSub, code.OpMul, code.OpDiv, code.OpMod:
			right := m.pop()
			left := m.pop()
			res, opErr := semantics.BinaryOp(opSymbol[op], left, right)
			if opErr != nil {
				err = m.raise(object.Errorf("%s", opErr.Error()))
				break
			}
			err = m.push(res)

		case code.OpEqual, code.OpNotEqual, code.OpGreaterThan, code.OpGreaterEqual,
			code.OpLessThan, code.OpLessEqual:
			right := m.pop()
			left := m.pop()
			res, cmpErr := semantics.Compare(opSymbol[op], left, right)
			if cmpErr != nil {
				err = m.raise(object.Errorf("%s", cmpErr.Error()))
				break
			}
			err = m.push(object.NativeBool(res))

		case code.OpMinus:
			switch v := m.pop().(type) {
			case *object.Integer:
				err = m.push(&object.Integer{Value: -v.Value})
			case *object.Float:
				err = m.push(&object.Float{Value: -v.Value})
			default:
				err = m.raise(object.Errorf("unsupported type for negation: %s", v.Type()))
			}

		case code.OpNot:
			err = m.push(object.NativeBool(!semantics.IsTruthy(m.pop())))

		case code.OpJumpNotTruthy:
			pos := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			if !semantics.IsTruthy(m.pop()) {
				frame.ip = pos - 1
			}

		case code.OpJump:
			pos := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip = pos - 1

		case code.OpJumpFalseOrPop, code.OpJumpTruthyOrPop:
			pos := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			if semantics.IsTruthy(m.stack[m.sp-1]) == (op == code.OpJumpTruthyOrPop) {
				frame.ip = pos - 1
			} else {
				m.pop()
			}

		case code.OpSetGlobal:
			idx := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			m.globals[idx] = m.pop()

		case code.OpGetGlobal:
			idx := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			val := m.globals[idx]
			if val == nil {
				err = m.raise(object.Errorf("undefined global %s", m.program.Globals[idx]))
				break
			}
			err = m.push(val)

		case code.OpSetLocal:
			idx := int(ins[frame.ip+1])
			frame.ip++
			m.stack[frame.basePointer+idx] = m.pop()

		case code.OpGetLocal:
			idx := int(ins[frame.ip+1])
			frame.ip++
			err = m.push(orNil(m.stack[frame.basePointer+idx]))

		case code.OpGetFree:
			idx := int(ins[frame.ip+1])
			frame.ip++
			err = m.push(frame.cl.Free[idx])

		case code.OpGetBuiltin:
			idx := int(ins[frame.ip+1])
			frame.ip++
			err = m.push(m.builtins[idx])

		case code.OpCurrentClosure:
			err = m.push(frame.cl)

		case code.OpClosure:
			constIndex := int(code.ReadUint16(ins[frame.ip+1:]))
			numFree := int(ins[frame.ip+3])
			frame.ip += 3

			fn, ok := m.constants[constIndex].(*object.CompiledFunction)
			if !ok {
				return fmt.Errorf("vm: constant %d is not a function", constIndex)
			}
			free := make([]object.Object, numFree)
			copy(free, m.stack[m.sp-numFree:m.sp])
			for i := 0; i < numFree; i++ {
				m.pop()
			}
			err = m.push(&object.Closure{Fn: fn, Free: free})

		case code.OpCall:
			numArgs := int(ins[frame.ip+1])
			frame.ip++
			err = m.callValue(numArgs)

		case code.OpReturnValue:
			ret := m.pop()
			m.leaveFrame()
			err = m.push(ret)

		case code.OpReturn:
			m.leaveFrame()
			err = m.push(object.NIL)

		case code.OpSend:
			hostOp := code.ReadUint32(ins[frame.ip+1:])
			numArgs := int(ins[frame.ip+5])
			frame.ip += 5
			err = m.send(hostOp, numArgs)

		case code.OpArray:
			n := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			elems := make([]object.Object, n)
			copy(elems, m.stack[m.sp-n:m.sp])
			for i := 0; i < n; i++ {
				m.pop()
			}
			err = m.push(&object.Array{Elements: elems})

		case code.OpIndex:
			index := m.pop()
			left := m.pop()
			res, idxErr := indexValue(left, index)
			if idxErr != nil {
				err = m.raise(idxErr)
				break
			}
			err = m.push(res)

		case code.OpSetIndex:
			val := m.pop()
			index := m.pop()
			left := m.pop()
			if setErr := setIndex(left, index, val); setErr != nil {
				err = m.raise(setErr)
			}

		case code.OpGetMember:
			nameIdx := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			name := m.constants[nameIdx].(*object.String).Value
			recv := m.pop()
			if e, ok := recv.(*object.Error); ok {
				if v, ok := e.Member(name); ok {
					err = m.push(v)
					break
				}
			}
			err = m.raise(object.Errorf("%s has no member %s", recv.Type(), name))

		case code.OpTry:
			catch := int(code.ReadUint16(ins[frame.ip+1:]))
			frame.ip += 2
			m.traps = append(m.traps, trap{
				catchIP:  catch,
				sp:       m.sp,
				frameIdx: m.framesIndex,
			})

		case code.OpEndTry:
			if len(m.traps) == 0 {
				return fmt.Errorf("vm: OpEndTry with no active trap")
			}
			m.traps = m.traps[:len(m.traps)-1]

		case code.OpThrow:
			err = m.raise(object.Thrown(m.pop()))

		default:
			return fmt.Errorf("vm: unknown opcode %d", op)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

var opSymbol = map[code.Opcode]string{
	code.OpAdd:          "+",
	code.OpSub:          "-",
	code.OpMul:          "*",
	code.OpDiv:          "/",
	code.OpMod:          "%",
	code.OpEqual:        "==",
	code.OpNotEqual:     "!=",
	code.OpGreaterThan:  ">",
	code.OpGreaterEqual: ">=",
	code.OpLessThan:     "<",
	code.OpLessEqual:    "<=",
}

func (m *VM) callValue(numArgs int) error {
	callee := m.stack[m.sp-1-numArgs]
	switch fn := callee.(type) {
	case *object.Closure:
		if numArgs != fn.Fn.NumParameters {
			return m.raise(object.Errorf("wrong number of arguments: expected %d, got %d", fn.Fn.NumParameters, numArgs))
		}
		basePointer := m.sp - numArgs
		if m.framesIndex >= MaxFrames || basePointer+fn.Fn.NumLocals >= StackSize {
			return m.raise(object.Errorf("stack overflow"))
		}
		clear(m.stack[m.sp : basePointer+fn.Fn.NumLocals])
		m.pushFrame(NewFrame(fn, basePointer))
		m.sp = basePointer + fn.Fn.NumLocals
		return nil

	case *object.Builtin:
		args := make([]object.Object, numArgs)
		copy(args, m.stack[m.sp-numArgs:m.sp])
		for i := 0; i <= numArgs; i++ {
			m.pop()
		}
		res, err := fn.Fn(args...)
		if err != nil {
			return m.raise(scriptError(err))
		}
		return m.push(orNil(res))

	default:
		return m.raise(object.Errorf("attempted to call non-function: %s", callee.Type()))
	}
}

func (m *VM) send(op uint32, numArgs int) error {
	args := make([]object.Object, numArgs)
	copy(args, m.stack[m.sp-numArgs:m.sp])
	for i := 0; i < numArgs; i++ {
		m.pop()
	}
	if m.handler == nil {
		return m.raise(object.Errorf("no host handler for operation %d", op))
	}
	res, err := m.handler.Send(op, args)
	if err != nil {
		return m.raise(scriptError(err))
	}
	return m.push(orNil(res))
}

// leaveFrame pops the current frame along with the traps it installed.
func (m *VM) leaveFrame() {
	top := m.framesIndex
	for len(m.traps) > 0 && m.traps[len(m.traps)-1].frameIdx >= top {
		m.traps = m.traps[:len(m.traps)-1]
	}
	f := m.popFrame()
	for m.sp > f.basePointer-1 {
		m.pop()
	}
}

// raise transfers control to the innermost trap. Without one, it records
// the trace, unwinds every frame and returns the failure.
func (m *VM) raise(e *object.Error) error {
	if len(m.traps) > 0 {
		t := m.traps[len(m.traps)-1]
		m.traps = m.traps[:len(m.traps)-1]
		for m.framesIndex > t.frameIdx {
			m.popFrame()
		}
		for m.sp > t.sp {
			m.pop()
		}
		m.currentFrame().ip = t.catchIP - 1
		m.stack[m.sp] = e
		m.sp++
		return nil
	}

	m.trace = m.captureTrace()
	for m.framesIndex > 0 {
		m.popFrame()
	}
	for m.sp > 0 {
		m.pop()
	}
	return e
}

func (m *VM) captureTrace() []diag.Mark {
	var marks []diag.Mark
	for i := m.framesIndex - 1; i >= 0; i-- {
		fn := m.frames[i].cl.Fn
		if fn.File == "" {
			// synthetic units have no source
			continue
		}
		line, col := lookupPos(fn.Pos, m.frames[i].ip)
		snippet := ""
		if fn.Program != nil {
			snippet = strings.TrimRight(fn.Program.SourceLine(fn.File, line), "\r")
		}
		marks = append(marks, diag.Mark{
			Function: fn.Name,
			File:     fn.File,
			Line:     line,
			Col:      col,
			Snippet:  snippet,
		})
	}
	return marks
}

func lookupPos(pos []code.SourcePos, ip int) (line, col int) {
	l, r := 0, len(pos)-1
	best := -1
	for l <= r {
		m := (l + r) / 2
		if pos[m].Offset <= ip {
			best = m
			l = m + 1
		} else {
			r = m - 1
		}
	}
	if best == -1 {
		return 0, 0
	}
	return pos[best].Line, pos[best].Col
}

func indexValue(left, index object.Object) (object.Object, *object.Error) {
	i, ok := index.(*object.Integer)
	if !ok {
		return nil, object.Errorf("index must be INTEGER, got %s", index.Type())
	}
	switch l := left.(type) {
	case *object.Array:
		if i.Value < 0 || i.Value >= int64(len(l.Elements)) {
			return nil, object.Errorf("index out of range: %d", i.Value)
		}
		return l.Elements[i.Value], nil
	case *object.String:
		if i.Value < 0 || i.Value >= int64(utf8.RuneCountInString(l.Value)) {
			return nil, object.Errorf("index out of range: %d", i.Value)
		}
		return &object.String{Value: string([]rune(l.Value)[i.Value])}, nil
	default:
		return nil, object.Errorf("index operator not supported: %s", left.Type())
	}
}

func setIndex(left, index, val object.Object) *object.Error {
	arr, ok := left.(*object.Array)
	if !ok {
		return object.Errorf("index assignment not supported: %s", left.Type())
	}
	i, ok := index.(*object.Integer)
	if !ok {
		return object.Errorf("index must be INTEGER, got %s", index.Type())
	}
	if i.Value < 0 || i.Value >= int64(len(arr.Elements)) {
		return object.Errorf("index out of range: %d", i.Value)
	}
	arr.Elements[i.Value] = val
	return nil
}

func scriptError(err error) *object.Error {
	var e *object.Error
	if errors.As(err, &e) {
		return e
	}
	return &object.Error{Message: err.Error()}
}

func orNil(o object.Object) object.Object {
	if o == nil {
		return object.NIL
	}
	return o
}
