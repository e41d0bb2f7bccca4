package object

import "sort"

// Environment is one lexical scope: a name→value store and the scope it is
// nested in. Scopes form a tree rooted at the global scope.
//
// Function values keep a pointer to the scope they were defined in, so a
// scope lives as long as any closure over it.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates a root scope.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get resolves name from this scope outward.
func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

// GetLocal looks name up in this scope only.
func (e *Environment) GetLocal(name string) (Object, bool) {
	obj, ok := e.store[name]
	return obj, ok
}

// Declare binds name in this scope, shadowing any outer binding.
func (e *Environment) Declare(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Update rebinds name in the nearest scope that owns it. It reports false,
// changing nothing, when no scope does.
func (e *Environment) Update(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}

// Assign updates the nearest owner of name, or declares it here.
func (e *Environment) Assign(name string, val Object) Object {
	if !e.Update(name, val) {
		e.Declare(name, val)
	}
	return val
}

// Has reports whether name resolves from this scope.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Outer returns the enclosing scope, or nil for the root.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Keys returns the names bound in this scope, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of names bound in this scope.
func (e *Environment) Size() int {
	return len(e.store)
}
