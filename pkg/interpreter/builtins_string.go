package interpreter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zurustar/bangla/pkg/object"
)

// registerStringBuiltins registers builtins that work on text. Positions
// and lengths count characters, not bytes.
func (t builtinTable) registerStringBuiltins() {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	t["boroHater"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("boroHater", args, 1); err != nil {
			return nil, err
		}
		s, err := stringArg("boroHater", args, 0)
		if err != nil {
			return nil, err
		}
		return str(upper.String(s)), nil
	}

	t["chotoHater"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("chotoHater", args, 1); err != nil {
			return nil, err
		}
		s, err := stringArg("chotoHater", args, 0)
		if err != nil {
			return nil, err
		}
		return str(lower.String(s)), nil
	}

	t["chhanto"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("chhanto", args, 1); err != nil {
			return nil, err
		}
		s, err := stringArg("chhanto", args, 0)
		if err != nil {
			return nil, err
		}
		return str(strings.TrimSpace(s)), nil
	}

	// bhag(str, sep) splits str around sep. An empty sep splits into characters.
	t["bhag"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("bhag", args, 2); err != nil {
			return nil, err
		}
		s, err := stringArg("bhag", args, 0)
		if err != nil {
			return nil, err
		}
		sep, err := stringArg("bhag", args, 1)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		elements := make([]object.Object, len(parts))
		for i, p := range parts {
			elements[i] = str(p)
		}
		return &object.Array{Elements: elements}, nil
	}

	// ongsho(s, start[, length]) returns length characters from start.
	t["ongsho"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgsRange("ongsho", args, 2, 3); err != nil {
			return nil, err
		}
		s, err := stringArg("ongsho", args, 0)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		start, err := intArg("ongsho", args, 1)
		if err != nil {
			return nil, err
		}
		length := len(runes)
		if len(args) == 3 {
			if length, err = intArg("ongsho", args, 2); err != nil {
				return nil, err
			}
			if length < 0 {
				return nil, object.NewTypeError("ongsho length must not be negative, got %d", length)
			}
		}
		if start < 0 {
			start += len(runes)
		}
		from := max(0, min(start, len(runes)))
		to := min(from+length, len(runes))
		return str(string(runes[from:to])), nil
	}

	// bodlo(s, old, new) replaces every occurrence of old.
	t["bodlo"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("bodlo", args, 3); err != nil {
			return nil, err
		}
		s, err := stringArg("bodlo", args, 0)
		if err != nil {
			return nil, err
		}
		old, err := stringArg("bodlo", args, 1)
		if err != nil {
			return nil, err
		}
		repl, err := stringArg("bodlo", args, 2)
		if err != nil {
			return nil, err
		}
		return str(strings.ReplaceAll(s, old, repl)), nil
	}
}

// runeIndex is strings.Index counted in characters.
func runeIndex(s, substr string) int {
	i := strings.Index(s, substr)
	if i < 0 {
		return -1
	}
	return runeLen(s[:i])
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
