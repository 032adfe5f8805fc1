package host

import (
	"fmt"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"

	"ripple/internal/diag"
	"ripple/internal/object"
)

// VM is what the dispatcher needs from the script machine.
type VM interface {
	Apply(fn object.Object, args []object.Object) (object.Object, error)
	Trace() []diag.Mark
}

type dispatchState int

const (
	stateIdle dispatchState = iota
	stateInCall
	stateTerminated
)

// Dispatcher turns host events into hook calls. Any failure that escapes a
// hook is fatal: the dispatcher stops and keeps returning that failure.
type Dispatcher struct {
	vm    VM
	hooks Hooks
	keys  *KeyNames[ebiten.Key]
	yield func()

	state dispatchState
	fatal error
	calls [numEvents]int
}

func NewDispatcher(m VM, hooks Hooks) *Dispatcher {
	return &Dispatcher{
		vm:    m,
		hooks: hooks,
		keys:  NewKeyNames(formatKey),
		yield: runtime.Gosched,
	}
}

func (d *Dispatcher) OnUpdate() error {
	return d.call(EventUpdate)
}

// OnDraw presents the frame only when a Draw hook ran successfully.
func (d *Dispatcher) OnDraw() (bool, error) {
	defer d.yield()
	if _, ok := d.hooks.Get(EventDraw); !ok {
		return false, d.fatal
	}
	if err := d.call(EventDraw); err != nil {
		return false, err
	}
	return true, nil
}

// OnKeyDown quits on Escape without consulting the script.
func (d *Dispatcher) OnKeyDown(key ebiten.Key, repeat bool) (bool, error) {
	if d.fatal != nil {
		return false, d.fatal
	}
	if key == ebiten.KeyEscape {
		return true, nil
	}
	name := d.keys.Name(key)
	return false, d.call(EventKeyDown, &object.String{Value: name}, object.NativeBool(repeat))
}

func (d *Dispatcher) OnKeyUp(key ebiten.Key) error {
	if d.fatal != nil {
		return d.fatal
	}
	name := d.keys.Name(key)
	return d.call(EventKeyUp, &object.String{Value: name})
}

func (d *Dispatcher) OnTextInput(r rune) error {
	return d.call(EventTextInput, &object.String{Value: string(r)})
}

func (d *Dispatcher) call(kind EventKind, args ...object.Object) error {
	switch d.state {
	case stateTerminated:
		return d.fatal
	case stateInCall:
		return d.terminate(&diag.Error{
			Kind:    diag.KindHost,
			Message: fmt.Sprintf("%s event raised while another hook is running", kind),
		})
	}
	fn, ok := d.hooks.Get(kind)
	if !ok {
		return nil
	}

	d.state = stateInCall
	d.calls[kind]++
	_, err := d.vm.Apply(fn, args)
	err = withTrace(d.vm, err)
	if d.state == stateTerminated {
		return d.fatal
	}
	d.state = stateIdle
	if err != nil {
		return d.terminate(err)
	}
	return nil
}

func (d *Dispatcher) terminate(err error) error {
	d.state = stateTerminated
	d.fatal = err
	return err
}

// Err returns the failure that stopped the dispatcher, if any.
func (d *Dispatcher) Err() error { return d.fatal }

// Calls returns how many times the hook of kind was applied.
func (d *Dispatcher) Calls(kind EventKind) int { return d.calls[kind] }

func (d *Dispatcher) logStats() {
	for k := EventKind(0); k < numEvents; k++ {
		if d.calls[k] > 0 {
			log.Debug("hook calls", "event", k.String(), "count", d.calls[k])
		}
	}
	log.Debug("key names cached", "count", d.keys.Len())
}
