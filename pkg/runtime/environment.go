package runtime

import (
	"sort"
)

// Mutability records how a binding was declared.
type Mutability string

const (
	MutabilityLet   Mutability = "let"
	MutabilityMut   Mutability = "mut"
	MutabilityConst Mutability = "const"
)

// Binding is one name in a scope. TypeHint is the declared annotation, empty
// when the binding is untyped.
type Binding struct {
	Value      Value
	Mutability Mutability
	TypeHint   string
}

// Environment provides lexical scoping for RIFT runtime values.
type Environment struct {
	values map[string]*Binding
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]*Binding),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Snapshot returns a copy of the current scope's values.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, b := range e.values {
		out[k] = b.Value
	}
	return out
}

// Define inserts or shadows a binding in the current scope. A typed binding
// must receive a matching value.
func (e *Environment) Define(name string, value Value, mutability Mutability, typeHint string) error {
	if typeHint != "" && !TypeMatches(typeHint, value) {
		return Errorf(TypeError, "'%s' is declared %s but was given %s", name, typeHint, TypeName(value))
	}
	e.values[name] = &Binding{Value: value, Mutability: mutability, TypeHint: typeHint}
	return nil
}

// DefineConst binds an immutable untyped name; used for builtins and declarations
// that cannot fail the type check.
func (e *Environment) DefineConst(name string, value Value) {
	e.values[name] = &Binding{Value: value, Mutability: MutabilityConst}
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	binding, ok := e.Lookup(name)
	if !ok {
		return Errorf(NameError, "undefined variable '%s'", name)
	}
	if binding.Mutability != MutabilityMut {
		return Errorf(ImmutableBindingError, "cannot reassign %s binding '%s'", binding.Mutability, name)
	}
	if binding.TypeHint != "" && !TypeMatches(binding.TypeHint, value) {
		return Errorf(TypeError, "'%s' is declared %s but was given %s", name, binding.TypeHint, TypeName(value))
	}
	binding.Value = value
	return nil
}

// Get retrieves a value, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if binding, ok := e.Lookup(name); ok {
		return binding.Value, nil
	}
	return nil, Errorf(NameError, "undefined variable '%s'", name)
}

// Lookup returns the binding record for name.
func (e *Environment) Lookup(name string) (*Binding, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.values[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// HasLocal reports whether name is bound directly in this scope.
func (e *Environment) HasLocal(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
