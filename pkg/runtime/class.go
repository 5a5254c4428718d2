package runtime

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
)

// FieldSpec is a declared instance property.
type FieldSpec struct {
	Name     string
	TypeHint string
	Default  ast.Expression
}

// ClassValue is a `make` declaration. Lookups walk the Parent chain and the
// first match wins.
type ClassValue struct {
	Name        string
	Parent      *ClassValue
	Constructor *FunctionValue
	Methods     map[string]*FunctionValue
	Getters     map[string]*FunctionValue
	Setters     map[string]*FunctionValue
	Statics     *MapValue
	Fields      []FieldSpec

	// Scope evaluates field defaults.
	Scope *Environment

	instantiated bool
}

func NewClass(name string, parent *ClassValue, scope *Environment) *ClassValue {
	return &ClassValue{
		Name:    name,
		Parent:  parent,
		Methods: make(map[string]*FunctionValue),
		Getters: make(map[string]*FunctionValue),
		Setters: make(map[string]*FunctionValue),
		Statics: NewMap(),
		Scope:   scope,
	}
}

func (c *ClassValue) Kind() Kind { return KindClass }

// MarkInstantiated freezes the class; it stays frozen for the program's lifetime.
func (c *ClassValue) MarkInstantiated() {
	c.instantiated = true
}

func (c *ClassValue) Instantiated() bool {
	return c.instantiated
}

func (c *ClassValue) FindMethod(name string) (*FunctionValue, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassValue) FindGetter(name string) (*FunctionValue, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Getters[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassValue) FindSetter(name string) (*FunctionValue, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Setters[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindStatic returns the static value and the class that owns it.
func (c *ClassValue) FindStatic(name string) (Value, *ClassValue, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if v, ok := cls.Statics.Get(name); ok {
			return v, cls, true
		}
	}
	return nil, nil, false
}

// FindConstructor returns the nearest `build`, walking up the chain.
func (c *ClassValue) FindConstructor() *FunctionValue {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Constructor != nil {
			return cls.Constructor
		}
	}
	return nil
}

// IsA reports whether c is the class named name or one of its descendants.
func (c *ClassValue) IsA(name string) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Name == name {
			return true
		}
	}
	return false
}

// Lineage returns the chain from the root ancestor down to c.
func (c *ClassValue) Lineage() []*ClassValue {
	var chain []*ClassValue
	for cls := c; cls != nil; cls = cls.Parent {
		chain = append([]*ClassValue{cls}, chain...)
	}
	return chain
}

// InstanceValue is an object created by calling a class.
type InstanceValue struct {
	Class  *ClassValue
	Fields *MapValue
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: NewMap()}
}

func (v *InstanceValue) Kind() Kind { return KindInstance }
