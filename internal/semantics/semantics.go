// Package semantics holds the value rules shared by the VM and its builtins:
// truthiness, arithmetic, comparison and equality.
package semantics

import (
	"fmt"
	"math"

	"ripple/internal/object"
)

func IsTruthy(obj object.Object) bool {
	switch v := obj.(type) {
	case *object.Boolean:
		return v.Value
	case *object.Nil:
		return false
	default:
		return true
	}
}

func BinaryOp(op string, left, right object.Object) (object.Object, error) {
	if ls, ok := left.(*object.String); ok {
		if rs, ok := right.(*object.String); ok {
			if op == "+" {
				return &object.String{Value: ls.Value + rs.Value}, nil
			}
			return nil, fmt.Errorf("unknown operator for strings: %s", op)
		}
	}

	if li, lok := left.(*object.Integer); lok {
		if ri, rok := right.(*object.Integer); rok {
			switch op {
			case "+":
				return &object.Integer{Value: li.Value + ri.Value}, nil
			case "-":
				return &object.Integer{Value: li.Value - ri.Value}, nil
			case "*":
				return &object.Integer{Value: li.Value * ri.Value}, nil
			case "/":
				if ri.Value == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				return &object.Integer{Value: li.Value / ri.Value}, nil
			case "%":
				if ri.Value == 0 {
					return nil, fmt.Errorf("modulo by zero")
				}
				return &object.Integer{Value: li.Value % ri.Value}, nil
			default:
				return nil, fmt.Errorf("unknown operator for integers: %s", op)
			}
		}
	}

	if isNumeric(left) && isNumeric(right) {
		lf := ToFloat(left)
		rf := ToFloat(right)
		switch op {
		case "+":
			return &object.Float{Value: lf + rf}, nil
		case "-":
			return &object.Float{Value: lf - rf}, nil
		case "*":
			return &object.Float{Value: lf * rf}, nil
		case "/":
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return &object.Float{Value: lf / rf}, nil
		case "%":
			return nil, fmt.Errorf("modulo requires INTEGER operands")
		default:
			return nil, fmt.Errorf("unknown operator for numbers: %s", op)
		}
	}

	if left.Type() != right.Type() {
		return nil, fmt.Errorf("type mismatch: %s %s %s", left.Type(), op, right.Type())
	}
	return nil, fmt.Errorf("unknown operator: %s %s %s", left.Type(), op, right.Type())
}

// Compare evaluates an ordering or equality operator.
func Compare(op string, left, right object.Object) (bool, error) {
	switch op {
	case "==":
		return Equal(left, right), nil
	case "!=":
		return !Equal(left, right), nil
	}

	if li, lok := left.(*object.Integer); lok {
		if ri, rok := right.(*object.Integer); rok {
			return ordered(op, cmp3(li.Value, ri.Value))
		}
	}
	if isNumeric(left) && isNumeric(right) {
		lf, rf := ToFloat(left), ToFloat(right)
		if math.IsNaN(lf) || math.IsNaN(rf) {
			// NaN compares false under every ordering
			return false, nil
		}
		return ordered(op, cmp3(lf, rf))
	}
	if ls, ok := left.(*object.String); ok {
		if rs, ok := right.(*object.String); ok {
			return ordered(op, cmp3(ls.Value, rs.Value))
		}
	}

	if left.Type() != right.Type() {
		return false, fmt.Errorf("type mismatch: %s %s %s", left.Type(), op, right.Type())
	}
	return false, fmt.Errorf("unknown operator: %s %s %s", left.Type(), op, right.Type())
}

// Equal is value equality for scalars and identity for everything else.
// Integers and floats compare numerically.
func Equal(left, right object.Object) bool {
	if left == nil || right == nil {
		return left == right
	}
	if isNumeric(left) && isNumeric(right) {
		if li, ok := left.(*object.Integer); ok {
			if ri, ok := right.(*object.Integer); ok {
				return li.Value == ri.Value
			}
		}
		return ToFloat(left) == ToFloat(right)
	}

	switch l := left.(type) {
	case *object.Nil:
		_, ok := right.(*object.Nil)
		return ok
	case *object.Boolean:
		r, ok := right.(*object.Boolean)
		return ok && l.Value == r.Value
	case *object.String:
		r, ok := right.(*object.String)
		return ok && l.Value == r.Value
	default:
		return left == right
	}
}

func ToFloat(o object.Object) float64 {
	switch v := o.(type) {
	case *object.Float:
		return v.Value
	case *object.Integer:
		return float64(v.Value)
	default:
		return 0
	}
}

func isNumeric(o object.Object) bool {
	switch o.(type) {
	case *object.Integer, *object.Float:
		return true
	default:
		return false
	}
}

func cmp3[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ordered(op string, c int) (bool, error) {
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison operator: %s", op)
}
