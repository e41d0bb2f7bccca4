package interpreter

import (
	"sort"
	"strings"

	"github.com/zurustar/bangla/pkg/object"
)

// registerArrayBuiltins registers builtins for arrays and maps, plus those
// that accept either an array or a string.
func (t builtinTable) registerArrayBuiltins() {
	t["lambai"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("lambai", args, 1); err != nil {
			return nil, err
		}
		switch arg := args[0].(type) {
		case *object.String:
			return num(float64(runeLen(arg.Value))), nil
		case *object.Array:
			return num(float64(len(arg.Elements))), nil
		case *object.Map:
			return num(float64(arg.Len())), nil
		}
		return nil, object.NewTypeError("argument to lambai not supported, got %s", args[0].Type())
	}

	// dhokao(arr, v...) appends in place and returns the new length.
	t["dhokao"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if len(args) < 2 {
			return nil, object.NewArityError("dhokao", "at least 2", len(args))
		}
		arr, err := arrayArg("dhokao", args, 0)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, args[1:]...)
		return num(float64(len(arr.Elements))), nil
	}

	// berKoro(arr) removes and returns the last element.
	t["berKoro"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("berKoro", args, 1); err != nil {
			return nil, err
		}
		arr, err := arrayArg("berKoro", args, 0)
		if err != nil {
			return nil, err
		}
		n := len(arr.Elements)
		if n == 0 {
			return nil, object.NewError(object.ErrOutOfBounds, "berKoro from empty array")
		}
		last := arr.Elements[n-1]
		arr.Elements = arr.Elements[:n-1]
		return last, nil
	}

	// kato(x, start[, end]) slices an array or string. Negative positions
	// count from the end.
	t["kato"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgsRange("kato", args, 2, 3); err != nil {
			return nil, err
		}
		start, err := intArg("kato", args, 1)
		if err != nil {
			return nil, err
		}
		end := -1
		hasEnd := len(args) == 3
		if hasEnd {
			if end, err = intArg("kato", args, 2); err != nil {
				return nil, err
			}
		}

		switch x := args[0].(type) {
		case *object.Array:
			if !hasEnd {
				end = len(x.Elements)
			}
			from, to := clampRange(start, end, len(x.Elements))
			elements := make([]object.Object, to-from)
			copy(elements, x.Elements[from:to])
			return &object.Array{Elements: elements}, nil
		case *object.String:
			runes := []rune(x.Value)
			if !hasEnd {
				end = len(runes)
			}
			from, to := clampRange(start, end, len(runes))
			return str(string(runes[from:to])), nil
		}
		return nil, object.NewTypeError("argument 1 to kato must be ARRAY or STRING, got %s", args[0].Type())
	}

	// joro(arr[, sep]) joins the textual forms of the elements; sep defaults to ",".
	t["joro"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgsRange("joro", args, 1, 2); err != nil {
			return nil, err
		}
		arr, err := arrayArg("joro", args, 0)
		if err != nil {
			return nil, err
		}
		sep := ","
		if len(args) == 2 {
			if sep, err = stringArg("joro", args, 1); err != nil {
				return nil, err
			}
		}
		parts := make([]string, len(arr.Elements))
		for i, el := range arr.Elements {
			parts[i] = el.Inspect()
		}
		return str(strings.Join(parts, sep)), nil
	}

	// khojo(x, needle) returns the position of needle, or -1.
	t["khojo"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("khojo", args, 2); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case *object.String:
			needle, err := stringArg("khojo", args, 1)
			if err != nil {
				return nil, err
			}
			return num(float64(runeIndex(x.Value, needle))), nil
		case *object.Array:
			for i, el := range x.Elements {
				if objectsEqual(el, args[1]) {
					return num(float64(i)), nil
				}
			}
			return num(-1), nil
		}
		return nil, object.NewTypeError("argument 1 to khojo must be ARRAY or STRING, got %s", args[0].Type())
	}

	// ache(x, item) reports array membership, substring or map key.
	t["ache"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("ache", args, 2); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case *object.Array:
			for _, el := range x.Elements {
				if objectsEqual(el, args[1]) {
					return object.TRUE, nil
				}
			}
			return object.FALSE, nil
		case *object.String:
			needle, err := stringArg("ache", args, 1)
			if err != nil {
				return nil, err
			}
			return object.NativeBool(strings.Contains(x.Value, needle)), nil
		case *object.Map:
			key, err := stringArg("ache", args, 1)
			if err != nil {
				return nil, err
			}
			return object.NativeBool(x.Has(key)), nil
		}
		return nil, object.NewTypeError("argument 1 to ache must be ARRAY, STRING or MAP, got %s", args[0].Type())
	}

	// ulto(x) returns a reversed copy of an array or string.
	t["ulto"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("ulto", args, 1); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case *object.Array:
			n := len(x.Elements)
			elements := make([]object.Object, n)
			for i, el := range x.Elements {
				elements[n-1-i] = el
			}
			return &object.Array{Elements: elements}, nil
		case *object.String:
			return str(reverseString(x.Value)), nil
		}
		return nil, object.NewTypeError("argument to ulto must be ARRAY or STRING, got %s", args[0].Type())
	}

	// saja(arr[, cmp]) sorts arr in place and returns it. Without cmp the
	// elements must be all numbers or all strings; cmp(a, b) returns a
	// negative number when a sorts first.
	t["saja"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgsRange("saja", args, 1, 2); err != nil {
			return nil, err
		}
		arr, err := arrayArg("saja", args, 0)
		if err != nil {
			return nil, err
		}
		if len(args) == 2 {
			return arr, sortWith(h, arr, args[1])
		}
		return arr, sortNatural(arr)
	}

	t["chabi"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("chabi", args, 1); err != nil {
			return nil, err
		}
		m, err := mapArg("chabi", args, 0)
		if err != nil {
			return nil, err
		}
		keys := m.Keys()
		elements := make([]object.Object, len(keys))
		for i, k := range keys {
			elements[i] = str(k)
		}
		return &object.Array{Elements: elements}, nil
	}

	t["man"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("man", args, 1); err != nil {
			return nil, err
		}
		m, err := mapArg("man", args, 0)
		if err != nil {
			return nil, err
		}
		keys := m.Keys()
		elements := make([]object.Object, len(keys))
		for i, k := range keys {
			elements[i], _ = m.Get(k)
		}
		return &object.Array{Elements: elements}, nil
	}
}

func sortNatural(arr *object.Array) error {
	if len(arr.Elements) == 0 {
		return nil
	}
	switch arr.Elements[0].(type) {
	case *object.Number:
		for _, el := range arr.Elements {
			if _, ok := el.(*object.Number); !ok {
				return object.NewTypeError("saja cannot compare NUMBER with %s", el.Type())
			}
		}
		sort.SliceStable(arr.Elements, func(i, j int) bool {
			return arr.Elements[i].(*object.Number).Value < arr.Elements[j].(*object.Number).Value
		})
	case *object.String:
		for _, el := range arr.Elements {
			if _, ok := el.(*object.String); !ok {
				return object.NewTypeError("saja cannot compare STRING with %s", el.Type())
			}
		}
		sort.SliceStable(arr.Elements, func(i, j int) bool {
			return arr.Elements[i].(*object.String).Value < arr.Elements[j].(*object.String).Value
		})
	default:
		return object.NewTypeError("saja needs a comparator for %s elements", arr.Elements[0].Type())
	}
	return nil
}

// sortWith sorts using a user comparator. The first comparator failure
// stops the sort and is returned.
func sortWith(h object.Host, arr *object.Array, cmp object.Object) error {
	// the comparator may mutate arr, so it only ever sees this copy.
	sorted := make([]object.Object, len(arr.Elements))
	copy(sorted, arr.Elements)

	var failure error
	sort.SliceStable(sorted, func(i, j int) bool {
		if failure != nil {
			return false
		}
		result, err := h.Call(cmp, sorted[i], sorted[j])
		if err != nil {
			failure = err
			return false
		}
		n, ok := result.(*object.Number)
		if !ok {
			failure = object.NewTypeError("saja comparator must return NUMBER, got %s", result.Type())
			return false
		}
		return n.Value < 0
	})
	if failure != nil {
		return failure
	}
	arr.Elements = sorted
	return nil
}
