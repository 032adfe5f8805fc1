package host

import (
	"fmt"
	"strings"

	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/object"
)

// EventKind is one of the host events a script can hook.
type EventKind int

const (
	EventUpdate EventKind = iota
	EventDraw
	EventKeyDown
	EventKeyUp
	EventTextInput

	numEvents
)

var eventNames = [numEvents]string{"Update", "Draw", "KeyDown", "KeyUp", "TextInput"}

// eventParams lists the arguments the dispatcher passes to each hook.
var eventParams = [numEvents][]string{
	EventKeyDown:   {"key", "repeat"},
	EventKeyUp:     {"key"},
	EventTextInput: {"text"},
}

// CodeHookArity marks a hook whose parameter list does not fit its event.
const CodeHookArity = "RH0001"

func (k EventKind) String() string {
	if k < 0 || k >= numEvents {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventNames[k]
}

// Hooks holds the callback bound to each event kind; nil means the event
// is a no-op.
type Hooks [numEvents]object.Object

func (h *Hooks) Get(k EventKind) (object.Object, bool) {
	fn := h[k]
	return fn, fn != nil
}

// Bound lists the kinds that have a callback.
func (h *Hooks) Bound() []EventKind {
	var kinds []EventKind
	for k := EventKind(0); k < numEvents; k++ {
		if h[k] != nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Globals is the part of the VM the resolver needs.
type Globals interface {
	Global(name string) (object.Object, bool)
}

// HookName is the global a script defines to handle kind.
func HookName(module string, kind EventKind) string {
	return module + "#" + kind.String()
}

// ResolveHooks looks up every hook of module once. A missing global leaves
// the hook unbound; a global that is not callable is a bind error.
func ResolveHooks(g Globals, module string) (Hooks, error) {
	var hooks Hooks
	for k := EventKind(0); k < numEvents; k++ {
		name := HookName(module, k)
		v, ok := g.Global(name)
		if !ok {
			continue
		}
		if !object.IsCallable(v) {
			return Hooks{}, &diag.Error{
				Kind:    diag.KindBind,
				Message: fmt.Sprintf("%s is %s, not a function", name, v.Type()),
				Help:    fmt.Sprintf("define it with `func %s(...) { ... }` or rename the global", k),
			}
		}
		hooks[k] = v
	}
	return hooks, nil
}

// HookWarnings reports hook functions in prog declared with the wrong
// number of parameters. Such a hook compiles but fails on its first event.
func HookWarnings(prog *ast.Program) []diag.Diagnostic {
	var ds []diag.Diagnostic
	for _, st := range prog.Statements {
		fn, ok := st.(*ast.FuncStatement)
		if !ok {
			continue
		}
		kind, ok := eventKind(fn.Name.Value)
		if !ok || len(fn.Parameters) == len(eventParams[kind]) {
			continue
		}
		want := "no parameters"
		if ps := eventParams[kind]; len(ps) > 0 {
			want = fmt.Sprintf("%d parameter", len(ps))
			if len(ps) > 1 {
				want += "s"
			}
			want += " (" + strings.Join(ps, ", ") + ")"
		}
		ds = append(ds, diag.Diagnostic{
			Code:     CodeHookArity,
			Severity: diag.SeverityWarning,
			Message:  fmt.Sprintf("%s hook takes %s, declared with %d", kind, want, len(fn.Parameters)),
			Range:    diag.Range{Line: fn.Name.Token.Line, Col: fn.Name.Token.Col, Length: len(fn.Name.Value)},
		})
	}
	return ds
}

func eventKind(name string) (EventKind, bool) {
	for k := EventKind(0); k < numEvents; k++ {
		if eventNames[k] == name {
			return k, true
		}
	}
	return 0, false
}
