package runtime

import (
	"fmt"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNone
	KindList
	KindMap
	KindFunction
	KindNativeFunction
	KindBoundMethod
	KindNativeBoundMethod
	KindClass
	KindInstance
	KindTask
	KindNamespace
	KindGenerator
)

// String returns the RIFT-facing type name, as reported by `type(x)`.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "num"
	case KindString:
		return "text"
	case KindBool:
		return "bool"
	case KindNone:
		return "none"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFunction, KindNativeFunction, KindBoundMethod, KindNativeBoundMethod:
		return "conduit"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindTask:
		return "task"
	case KindNamespace:
		return "namespace"
	case KindGenerator:
		return "generator"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// NumberValue is the single numeric type; integers are float64 values with no fraction.
type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

// None is the shared none value.
var None Value = NoneValue{}

// Num, Str and Bool wrap Go scalars.
func Num(v float64) NumberValue { return NumberValue{Val: v} }
func Str(v string) StringValue  { return StringValue{Val: v} }
func Bool(v bool) BoolValue     { return BoolValue{Val: v} }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ListValue is a mutable, reference-shared sequence.
type ListValue struct {
	Elements []Value
}

func NewList(elements ...Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

func (v *ListValue) Kind() Kind { return KindList }

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// FunctionValue is a user conduit: a named definition, an anonymous conduit
// or an arrow lambda, together with its defining scope.
type FunctionValue struct {
	Name        string
	Params      []*ast.FunctionParameter
	Body        ast.Expression // *ast.BlockExpression, or any expression for arrow lambdas
	ReturnType  string
	IsAsync     bool
	IsGenerator bool
	Closure     *Environment

	// HomeClass is the class a method was declared in; `parent` resolves from it.
	HomeClass *ClassValue
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NewFunctionFromDefinition captures a named conduit declaration.
func NewFunctionFromDefinition(def *ast.FunctionDefinition, closure *Environment) *FunctionValue {
	fn := &FunctionValue{
		Params:      def.Params,
		Body:        def.Body,
		IsAsync:     def.IsAsync,
		IsGenerator: def.IsGenerator,
		Closure:     closure,
	}
	if def.ID != nil {
		fn.Name = def.ID.Name
	}
	if def.ReturnType != nil && def.ReturnType.Name != nil {
		fn.ReturnType = def.ReturnType.Name.Name
	}
	return fn
}

// NewFunctionFromLambda captures an arrow lambda or anonymous conduit.
func NewFunctionFromLambda(lambda *ast.LambdaExpression, closure *Environment) *FunctionValue {
	fn := &FunctionValue{
		Name:        "<lambda>",
		Params:      lambda.Params,
		Body:        lambda.Body,
		IsAsync:     lambda.IsAsync,
		IsGenerator: lambda.IsGenerator,
		Closure:     closure,
	}
	if lambda.ReturnType != nil && lambda.ReturnType.Name != nil {
		fn.ReturnType = lambda.ReturnType.Name.Name
	}
	return fn
}

// Caller lets native functions invoke any callable value through the
// interpreter's call protocol.
type Caller interface {
	CallValue(callee Value, args []Value) (Value, error)
}

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env    *Environment
	Caller Caller
}

// Call invokes fn with args through the interpreter.
func (c *NativeCallContext) Call(fn Value, args ...Value) (Value, error) {
	if c == nil || c.Caller == nil {
		return nil, fmt.Errorf("native call context has no interpreter")
	}
	return c.Caller.CallValue(fn, args)
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue is a Go-implemented builtin. Arity -1 means variadic;
// otherwise it is the minimum number of arguments.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// BoundMethodValue captures `me` and a method.
type BoundMethodValue struct {
	Receiver Value
	Method   *FunctionValue
}

func (v BoundMethodValue) Kind() Kind { return KindBoundMethod }

// NativeBoundMethodValue is a builtin used method-style: `xs.push(1)` calls
// push(xs, 1).
type NativeBoundMethodValue struct {
	Receiver Value
	Method   NativeFunctionValue
}

func (v NativeBoundMethodValue) Kind() Kind { return KindNativeBoundMethod }

// IsCallable reports whether v can appear in call position.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *FunctionValue, NativeFunctionValue, BoundMethodValue, NativeBoundMethodValue, *ClassValue:
		return true
	default:
		return false
	}
}

//-----------------------------------------------------------------------------
// Modules & generators
//-----------------------------------------------------------------------------

// NamespaceValue is what `grab` binds: a module's exports or a builtin module.
type NamespaceValue struct {
	Name    string
	Exports *MapValue
}

func NewNamespace(name string) *NamespaceValue {
	return &NamespaceValue{Name: name, Exports: NewMap()}
}

func (v *NamespaceValue) Kind() Kind { return KindNamespace }

// Iterator is a resumable producer of values.
type Iterator interface {
	// Next returns the next value; done is true once the producer is exhausted.
	Next() (value Value, done bool, err error)
	Close()
}

// GeneratorValue is the result of calling a `conduit*`.
type GeneratorValue struct {
	Name string
	Iter Iterator
}

func (v *GeneratorValue) Kind() Kind { return KindGenerator }
