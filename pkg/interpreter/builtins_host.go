package interpreter

import (
	"github.com/zurustar/bangla/pkg/object"
)

// registerHostBuiltins registers builtins that depend on the host. File and
// network access are not granted to scripts; a host that wants them
// replaces these with RegisterBuiltin.
func (t builtinTable) registerHostBuiltins() {
	// somoy() returns milliseconds since the Unix epoch
	t["somoy"] = func(h object.Host, args ...object.Object) (object.Object, error) {
		if err := wantArgs("somoy", args, 0); err != nil {
			return nil, err
		}
		return num(float64(h.Now().UnixMilli())), nil
	}

	for _, name := range []string{"poro", "lekho", "anun"} {
		t[name] = unavailable(name)
	}
}

func unavailable(name string) object.BuiltinFunction {
	return func(h object.Host, args ...object.Object) (object.Object, error) {
		return nil, object.NewHostError("%s is not available in this host", name)
	}
}
