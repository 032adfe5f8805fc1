package object

import "fmt"

// Error is a script failure. It is both a script value (catchable, and
// constructible with the error builtin) and a Go error once it escapes a VM
// call.
type Error struct {
	Message string
	// Value is the thrown value when it was not itself an error.
	Value Object
}

func (*Error) Type() Type { return ERROR_OBJ }

func (e *Error) Inspect() string { return "error: " + e.Message }

func (e *Error) Error() string { return e.Message }

// Errorf builds a failure with a formatted message.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Thrown converts a thrown value into a failure.
func Thrown(v Object) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return &Error{Message: v.Inspect(), Value: v}
}

// Member resolves e.message and e.value.
func (e *Error) Member(name string) (Object, bool) {
	switch name {
	case "message":
		return &String{Value: e.Message}, true
	case "value":
		if e.Value == nil {
			return NIL, true
		}
		return e.Value, true
	}
	return nil, false
}
