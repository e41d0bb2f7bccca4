package interpreter

import (
	"strconv"
	"strings"

	"github.com/zurustar/bangla/pkg/object"
)

// builtinTable maps builtin names to their implementations.
type builtinTable map[string]object.BuiltinFunction

// defaultBuiltins returns the standard library every interpreter starts with.
func defaultBuiltins() builtinTable {
	t := make(builtinTable)
	t.registerCoreBuiltins()
	t.registerStringBuiltins()
	t.registerArrayBuiltins()
	t.registerMathBuiltins()
	t.registerHostBuiltins()
	return t
}

// registerCoreBuiltins registers output and conversion builtins.
func (t builtinTable) registerCoreBuiltins() {
	// dekho(args...) prints its arguments on one line separated by spaces
	t["dekho"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = arg.Inspect()
		}
		h.Print(strings.Join(parts, " "))
		return object.NULL, nil
	}

	// dhoron(x) returns the type name, e.g. "NUMBER"
	t["dhoron"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("dhoron", args, 1); err != nil {
			return nil, err
		}
		return str(string(args[0].Type())), nil
	}

	t["lekha"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("lekha", args, 1); err != nil {
			return nil, err
		}
		return str(args[0].Inspect()), nil
	}

	// sonkha(x) converts text to a number. Numbers pass through; sotti and
	// mittha become 1 and 0.
	t["sonkha"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("sonkha", args, 1); err != nil {
			return nil, err
		}
		switch arg := args[0].(type) {
		case *object.Number:
			return arg, nil
		case *object.Boolean:
			if arg.Value {
				return num(1), nil
			}
			return num(0), nil
		case *object.String:
			v, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
			if err != nil {
				return nil, object.NewTypeError("cannot convert %q to a number", arg.Value)
			}
			return num(v), nil
		}
		return nil, object.NewTypeError("cannot convert %s to a number", args[0].Type())
	}
}

func num(v float64) *object.Number { return &object.Number{Value: v} }

func str(s string) *object.String { return &object.String{Value: s} }

// wantArgs checks an exact argument count.
func wantArgs(name string, args []object.Object, n int) error {
	if len(args) != n {
		return object.NewArityError(name, strconv.Itoa(n), len(args))
	}
	return nil
}

// wantArgsRange checks that lo <= len(args) <= hi.
func wantArgsRange(name string, args []object.Object, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return object.NewArityError(name, strconv.Itoa(lo)+"-"+strconv.Itoa(hi), len(args))
	}
	return nil
}

func numberArg(name string, args []object.Object, i int) (float64, error) {
	n, ok := args[i].(*object.Number)
	if !ok {
		return 0, object.NewTypeError("argument %d to %s must be NUMBER, got %s", i+1, name, args[i].Type())
	}
	return n.Value, nil
}

// intArg is numberArg restricted to integers.
func intArg(name string, args []object.Object, i int) (int, error) {
	v, err := numberArg(name, args, i)
	if err != nil {
		return 0, err
	}
	if !object.IsInteger(v) {
		return 0, object.NewTypeError("argument %d to %s must be an integer, got %s", i+1, name, object.FormatNumber(v))
	}
	return int(v), nil
}

func stringArg(name string, args []object.Object, i int) (string, error) {
	s, ok := args[i].(*object.String)
	if !ok {
		return "", object.NewTypeError("argument %d to %s must be STRING, got %s", i+1, name, args[i].Type())
	}
	return s.Value, nil
}

func arrayArg(name string, args []object.Object, i int) (*object.Array, error) {
	a, ok := args[i].(*object.Array)
	if !ok {
		return nil, object.NewTypeError("argument %d to %s must be ARRAY, got %s", i+1, name, args[i].Type())
	}
	return a, nil
}

func mapArg(name string, args []object.Object, i int) (*object.Map, error) {
	m, ok := args[i].(*object.Map)
	if !ok {
		return nil, object.NewTypeError("argument %d to %s must be MAP, got %s", i+1, name, args[i].Type())
	}
	return m, nil
}

// clampRange converts start/end, where negative values count from the end,
// into a valid [start, end) over length items.
func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	start = max(0, min(start, length))
	end = max(start, min(end, length))
	return start, end
}
