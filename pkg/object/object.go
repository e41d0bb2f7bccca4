// Package object defines the runtime values of bangla programs.
//
// Object is a closed set: every kind lives in this package and carries the
// unexported marker method, so a type switch over Object only has to cover
// the kinds listed here.
package object

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/bangla/pkg/compiler/ast"
)

type Type string

const (
	NUMBER_OBJ       Type = "NUMBER"
	STRING_OBJ       Type = "STRING"
	BOOLEAN_OBJ      Type = "BOOLEAN"
	NULL_OBJ         Type = "NULL"
	ARRAY_OBJ        Type = "ARRAY"
	MAP_OBJ          Type = "MAP"
	FUNCTION_OBJ     Type = "FUNCTION"
	BUILTIN_OBJ      Type = "BUILTIN"
	CLASS_OBJ        Type = "CLASS"
	INSTANCE_OBJ     Type = "INSTANCE"
	RETURN_VALUE_OBJ Type = "RETURN_VALUE"
	ERROR_OBJ        Type = "ERROR"
	BREAK_OBJ        Type = "BREAK"
	CONTINUE_OBJ     Type = "CONTINUE"
)

// Object is a runtime value.
type Object interface {
	Type() Type
	// Inspect returns the textual form used by dekho and string conversion.
	Inspect() string
	object()
}

var (
	TRUE     = &Boolean{Value: true}
	FALSE    = &Boolean{Value: false}
	NULL     = &Null{}
	BREAK    = &Break{}
	CONTINUE = &Continue{}
)

// NativeBool returns the Boolean singleton for b.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// IsTruthy reports whether obj counts as true in a condition. khali,
// mittha, 0 and the empty string are false; everything else, including
// empty arrays and maps, is true.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return o.Value
	case *Number:
		return o.Value != 0
	case *String:
		return o.Value != ""
	default:
		return true
	}
}

// Number is the only numeric kind.
type Number struct {
	Value float64
}

func (n *Number) Type() Type      { return NUMBER_OBJ }
func (n *Number) Inspect() string { return FormatNumber(n.Value) }
func (n *Number) object()         {}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	case v == math.Trunc(v) && math.Abs(v) < 1e21:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

// IsInteger reports whether v has no fractional part.
func IsInteger(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}

type String struct {
	Value string
}

func (s *String) Type() Type      { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }
func (s *String) object()         {}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "sotti"
	}
	return "mittha"
}
func (b *Boolean) object() {}

type Null struct{}

func (n *Null) Type() Type      { return NULL_OBJ }
func (n *Null) Inspect() string { return "khali" }
func (n *Null) object()         {}

// Array is a mutable list shared by reference.
type Array struct {
	Elements []Object
}

func (a *Array) Type() Type { return ARRAY_OBJ }
func (a *Array) Inspect() string { return inspect(a, make(map[Object]bool)) }
func (a *Array) object() {}

// Map is a mutable string-keyed map that remembers insertion order.
type Map struct {
	keys  []string
	pairs map[string]Object
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{pairs: make(map[string]Object)}
}

func (m *Map) Type() Type      { return MAP_OBJ }
func (m *Map) Inspect() string { return inspect(m, make(map[Object]bool)) }
func (m *Map) object()         {}

func (m *Map) inspectPairs(seen map[Object]bool) string {
	pairs := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, k+": "+repr(m.pairs[k], seen))
	}
	return strings.Join(pairs, ", ")
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.pairs[key]
	return v, ok
}

// Set inserts or replaces key. A new key goes to the end of the order.
func (m *Map) Set(key string, value Object) {
	if _, ok := m.pairs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.pairs[key] = value
}

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if _, ok := m.pairs[key]; !ok {
		return
	}
	delete(m.pairs, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.pairs[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Function is a user-defined function and the environment it closes over.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() Type { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer
	out.WriteString("kaj")
	if f.Name != "" {
		out.WriteString(" " + f.Name)
	}
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, p.Value)
	}
	out.WriteString("(" + strings.Join(params, ", ") + ")")
	return out.String()
}
func (f *Function) object() {}

// Host is what a builtin may ask of the running interpreter.
type Host interface {
	// Print emits one line of program output.
	Print(line string)
	// Call invokes a callable value with arguments.
	Call(fn Object, args ...Object) (Object, error)
	// Random returns a pseudo-random number in [0, 1).
	Random() float64
	// Now returns the host's current time.
	Now() time.Time
}

// BuiltinFunction is a native function. A failure is reported as a
// *Error, either returned as the error or as the result value.
type BuiltinFunction func(h Host, args ...Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() Type      { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "builtin " + b.Name + "()" }
func (b *Builtin) object()         {}

// Class owns its constructor and methods.
type Class struct {
	Name        string
	Constructor *Function
	Methods     map[string]*Function
}

func (c *Class) Type() Type      { return CLASS_OBJ }
func (c *Class) Inspect() string { return "sreni " + c.Name }
func (c *Class) object()         {}

// Method looks up a method by name.
func (c *Class) Method(name string) (*Function, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// Instance is an object created by notun.
type Instance struct {
	Class *Class
	Props *Map
}

// NewInstance creates an instance of class with no properties.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Props: NewMap()}
}

func (i *Instance) Type() Type { return INSTANCE_OBJ }
func (i *Instance) Inspect() string { return inspect(i, make(map[Object]bool)) }
func (i *Instance) object() {}

// ReturnValue carries a ferao result up to the enclosing call.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() Type      { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }
func (rv *ReturnValue) object()         {}

type Break struct{}

func (b *Break) Type() Type      { return BREAK_OBJ }
func (b *Break) Inspect() string { return "thamo" }
func (b *Break) object()         {}

type Continue struct{}

func (c *Continue) Type() Type      { return CONTINUE_OBJ }
func (c *Continue) Inspect() string { return "chharo" }
func (c *Continue) object()         {}

// Repr is the form a value takes inside an array or map: strings are
// quoted, everything else prints as Inspect does.
func Repr(obj Object) string {
	return repr(obj, make(map[Object]bool))
}

func repr(obj Object, seen map[Object]bool) string {
	if s, ok := obj.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return inspect(obj, seen)
}

// inspect renders containers recursively. seen holds the containers on the
// current path; meeting one again prints a placeholder instead of recursing.
func inspect(obj Object, seen map[Object]bool) string {
	switch o := obj.(type) {
	case *Array:
		if seen[o] {
			return "[...]"
		}
		seen[o] = true
		defer delete(seen, o)
		elements := make([]string, 0, len(o.Elements))
		for _, e := range o.Elements {
			elements = append(elements, repr(e, seen))
		}
		return "[" + strings.Join(elements, ", ") + "]"
	case *Map:
		if seen[o] {
			return "{...}"
		}
		seen[o] = true
		defer delete(seen, o)
		return "{" + o.inspectPairs(seen) + "}"
	case *Instance:
		if seen[o] {
			return o.Class.Name + " {...}"
		}
		seen[o] = true
		defer delete(seen, o)
		return o.Class.Name + " {" + o.Props.inspectPairs(seen) + "}"
	default:
		return obj.Inspect()
	}
}
