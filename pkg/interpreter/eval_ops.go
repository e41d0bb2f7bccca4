package interpreter

import (
	"math"

	"github.com/zurustar/bangla/pkg/object"
)

func evalPrefixExpression(operator string, right object.Object) (object.Object, error) {
	switch operator {
	case "!", "na":
		return object.NativeBool(!object.IsTruthy(right)), nil
	case "-":
		num, ok := right.(*object.Number)
		if !ok {
			return nil, object.NewTypeError("unknown operator: -%s", right.Type())
		}
		return &object.Number{Value: -num.Value}, nil
	}
	return nil, object.NewTypeError("unknown operator: %s%s", operator, right.Type())
}

func evalInfixExpression(operator string, left, right object.Object) (object.Object, error) {
	switch operator {
	case "ebong":
		return object.NativeBool(object.IsTruthy(left) && object.IsTruthy(right)), nil
	case "ba":
		return object.NativeBool(object.IsTruthy(left) || object.IsTruthy(right)), nil
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if lok && rok {
		return evalNumberInfixExpression(operator, l.Value, r.Value)
	}

	_, lstr := left.(*object.String)
	_, rstr := right.(*object.String)
	if operator == "+" && (lstr || rstr) {
		return &object.String{Value: left.Inspect() + right.Inspect()}, nil
	}
	if lstr && rstr {
		return evalStringInfixExpression(operator, left.(*object.String).Value, right.(*object.String).Value)
	}

	switch operator {
	case "==", "!=":
		if left.Type() != right.Type() && left != object.NULL && right != object.NULL {
			return nil, object.NewTypeError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
		}
		eq := left == right
		if operator == "==" {
			return object.NativeBool(eq), nil
		}
		return object.NativeBool(!eq), nil
	}

	if left.Type() != right.Type() {
		return nil, object.NewTypeError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
	}
	return nil, object.NewTypeError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func evalNumberInfixExpression(operator string, l, r float64) (object.Object, error) {
	switch operator {
	case "+":
		return &object.Number{Value: l + r}, nil
	case "-":
		return &object.Number{Value: l - r}, nil
	case "*":
		return &object.Number{Value: l * r}, nil
	case "/":
		if r == 0 {
			return nil, object.NewDivisionByZeroError()
		}
		return &object.Number{Value: l / r}, nil
	case "%":
		if r == 0 {
			return nil, object.NewDivisionByZeroError()
		}
		return &object.Number{Value: math.Mod(l, r)}, nil
	case "**":
		return &object.Number{Value: math.Pow(l, r)}, nil
	case "<":
		return object.NativeBool(l < r), nil
	case ">":
		return object.NativeBool(l > r), nil
	case "<=":
		return object.NativeBool(l <= r), nil
	case ">=":
		return object.NativeBool(l >= r), nil
	case "==":
		return object.NativeBool(l == r), nil
	case "!=":
		return object.NativeBool(l != r), nil
	}
	return nil, object.NewTypeError("unknown operator: NUMBER %s NUMBER", operator)
}

func evalStringInfixExpression(operator string, l, r string) (object.Object, error) {
	switch operator {
	case "==":
		return object.NativeBool(l == r), nil
	case "!=":
		return object.NativeBool(l != r), nil
	case "<":
		return object.NativeBool(l < r), nil
	case ">":
		return object.NativeBool(l > r), nil
	case "<=":
		return object.NativeBool(l <= r), nil
	case ">=":
		return object.NativeBool(l >= r), nil
	}
	return nil, object.NewTypeError("unknown operator: STRING %s STRING", operator)
}

// objectsEqual is the equality ache and khojo use: numbers and strings by
// value, everything else by identity.
func objectsEqual(a, b object.Object) bool {
	switch a := a.(type) {
	case *object.Number:
		if b, ok := b.(*object.Number); ok {
			return a.Value == b.Value
		}
		return false
	case *object.String:
		if b, ok := b.(*object.String); ok {
			return a.Value == b.Value
		}
		return false
	}
	return a == b
}
