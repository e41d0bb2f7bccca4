package interpreter

import (
	"math"

	"github.com/zurustar/bangla/pkg/object"
)

// registerMathBuiltins registers numeric builtins.
func (t builtinTable) registerMathBuiltins() {
	unary := map[string]func(float64) float64{
		"porom": math.Abs,
		"niche": math.Floor,
		"upore": math.Ceil,
		// halves round up, so -2.5 becomes -2
		"kachakachi": func(v float64) float64 { return math.Floor(v + 0.5) },
	}
	for name, fn := range unary {
		t[name] = func(h object.Host, args ...object.Object) (object.Object, error) {
			if err := wantArgs(name, args, 1); err != nil {
				return nil, err
			}
			v, err := numberArg(name, args, 0)
			if err != nil {
				return nil, err
			}
			return num(fn(v)), nil
		}
	}

	t["borgomul"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("borgomul", args, 1); err != nil {
			return nil, err
		}
		v, err := numberArg("borgomul", args, 0)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, object.NewTypeError("borgomul of negative number %s", object.FormatNumber(v))
		}
		return num(math.Sqrt(v)), nil
	}

	t["choto"] = extremum("choto", func(a, b float64) bool { return a < b })
	t["boro"] = extremum("boro", func(a, b float64) bool { return a > b })

	// lotto() returns a pseudo-random number in [0, 1).
	t["lotto"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("lotto", args, 0); err != nil {
			return nil, err
		}
		return num(h.Random()), nil
	}
}

// extremum builds choto/boro. Arguments may be numbers or a single array
// of numbers.
func extremum(name string, better func(a, b float64) bool) object.BuiltinFunction {
	return func(h object.Host, args ...object.Object) (object.Object, error) {
		if len(args) == 1 {
			if arr, ok := args[0].(*object.Array); ok {
				args = arr.Elements
			}
		}
		if len(args) == 0 {
			return nil, object.NewArityError(name, "at least 1", 0)
		}

		best, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			v, err := numberArg(name, args, i)
			if err != nil {
				return nil, err
			}
			if better(v, best) {
				best = v
			}
		}
		return num(best), nil
	}
}
