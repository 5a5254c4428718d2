package interpreter

import (
	"math"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func (i *Interpreter) evaluateMemberAccess(expr *ast.MemberAccessExpression, env *runtime.Environment) (runtime.Value, error) {
	if _, ok := expr.Object.(*ast.ParentExpression); ok {
		return i.parentMember(expr.Member.Name, env)
	}
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	if _, isNone := obj.(runtime.NoneValue); isNone && expr.IsSafe {
		return runtime.None, nil
	}
	val, found, err := i.memberAccessOnValue(obj, expr.Member.Name, expr.IsStatic)
	if err != nil {
		return nil, err
	}
	if !found {
		if expr.IsSafe {
			return runtime.None, nil
		}
		return nil, runtime.Errorf(runtime.NameError, "%s has no member '%s'", describeReceiver(obj), expr.Member.Name)
	}
	return val, nil
}

func describeReceiver(obj runtime.Value) string {
	switch v := obj.(type) {
	case *runtime.ClassValue:
		return "class " + v.Name
	case *runtime.NamespaceValue:
		return "namespace " + v.Name
	default:
		return runtime.TypeName(obj)
	}
}

// memberAccessOnValue resolves name on obj. Instances look at fields, then
// getters, then methods; maps at keys before builtin methods.
func (i *Interpreter) memberAccessOnValue(obj runtime.Value, name string, static bool) (runtime.Value, bool, error) {
	switch v := obj.(type) {
	case *runtime.InstanceValue:
		if static {
			val, _, ok := v.Class.FindStatic(name)
			return val, ok, nil
		}
		if val, ok := v.Fields.Get(name); ok {
			return val, true, nil
		}
		if getter, ok := v.Class.FindGetter(name); ok {
			val, err := i.CallValue(runtime.BoundMethodValue{Receiver: v, Method: getter}, nil)
			return val, err == nil, err
		}
		if method, ok := v.Class.FindMethod(name); ok {
			return runtime.BoundMethodValue{Receiver: v, Method: method}, true, nil
		}
		return nil, false, nil
	case *runtime.ClassValue:
		if val, _, ok := v.FindStatic(name); ok {
			return val, true, nil
		}
		if name == "name" && !static {
			return runtime.Str(v.Name), true, nil
		}
		return nil, false, nil
	case *runtime.NamespaceValue:
		val, ok := v.Exports.Get(name)
		return val, ok, nil
	case *runtime.MapValue:
		if val, ok := v.Get(name); ok {
			return val, true, nil
		}
		if name == "length" {
			return runtime.Num(float64(v.Len())), true, nil
		}
	case *runtime.ListValue:
		if name == "length" {
			return runtime.Num(float64(len(v.Elements))), true, nil
		}
	case runtime.StringValue:
		if name == "length" {
			return runtime.Num(float64(runeLen(v.Val))), true, nil
		}
	case *runtime.GeneratorValue:
		val, ok := generatorMember(v, name)
		return val, ok, nil
	case *runtime.TaskValue:
		switch name {
		case "state":
			return runtime.Str(v.State().String()), true, nil
		case "done":
			return runtime.Bool(v.State() != runtime.TaskPending), true, nil
		}
		return nil, false, nil
	}
	if method, ok := i.builtinMethod(name); ok {
		return runtime.NativeBoundMethodValue{Receiver: obj, Method: method}, true, nil
	}
	return nil, false, nil
}

// builtinMethod finds a global native usable method-style on builtin values.
func (i *Interpreter) builtinMethod(name string) (runtime.NativeFunctionValue, bool) {
	val, err := i.global.Get(name)
	if err != nil {
		return runtime.NativeFunctionValue{}, false
	}
	native, ok := val.(runtime.NativeFunctionValue)
	return native, ok
}

// parentClass returns the superclass of the method currently executing.
func parentClass(env *runtime.Environment) (*runtime.ClassValue, error) {
	val, err := env.Get("parent")
	if err != nil {
		return nil, runtime.Errorf(runtime.NameError, "'parent' used outside of a subclass method")
	}
	cls, ok := val.(*runtime.ClassValue)
	if !ok {
		return nil, runtime.Errorf(runtime.NameError, "'parent' used outside of a subclass method")
	}
	return cls, nil
}

// parentMember resolves `parent.name` against the superclass, bound to `me`.
func (i *Interpreter) parentMember(name string, env *runtime.Environment) (runtime.Value, error) {
	cls, err := parentClass(env)
	if err != nil {
		return nil, err
	}
	me, err := env.Get("me")
	if err != nil {
		return nil, runtime.Errorf(runtime.NameError, "'parent' used outside of a method")
	}
	if name == "build" {
		ctor := cls.FindConstructor()
		if ctor == nil {
			return runtime.NativeFunctionValue{Name: "build", Arity: -1, Impl: func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
				return runtime.None, nil
			}}, nil
		}
		return runtime.BoundMethodValue{Receiver: me, Method: ctor}, nil
	}
	if getter, ok := cls.FindGetter(name); ok {
		return i.CallValue(runtime.BoundMethodValue{Receiver: me, Method: getter}, nil)
	}
	if method, ok := cls.FindMethod(name); ok {
		return runtime.BoundMethodValue{Receiver: me, Method: method}, nil
	}
	if val, _, ok := cls.FindStatic(name); ok {
		return val, nil
	}
	return nil, runtime.Errorf(runtime.NameError, "class %s has no member '%s'", cls.Name, name)
}

func (i *Interpreter) assignMember(target *ast.MemberAccessExpression, value runtime.Value, env *runtime.Environment) error {
	if _, ok := target.Object.(*ast.ParentExpression); ok {
		return runtime.Errorf(runtime.TypeError, "cannot assign through 'parent'")
	}
	obj, err := i.evaluateExpression(target.Object, env)
	if err != nil {
		return err
	}
	name := target.Member.Name
	switch v := obj.(type) {
	case *runtime.InstanceValue:
		if target.IsStatic {
			return assignStatic(v.Class, name, value)
		}
		if setter, ok := v.Class.FindSetter(name); ok {
			_, err := i.CallValue(runtime.BoundMethodValue{Receiver: v, Method: setter}, []runtime.Value{value})
			return err
		}
		if hint := fieldTypeHint(v.Class, name); hint != "" && !runtime.TypeMatches(hint, value) {
			return runtime.Errorf(runtime.TypeError, "field '%s' of %s is declared %s but was given %s", name, v.Class.Name, hint, runtime.TypeName(value))
		}
		v.Fields.Set(name, value)
		return nil
	case *runtime.ClassValue:
		return assignStatic(v, name, value)
	case *runtime.MapValue:
		v.Set(name, value)
		return nil
	default:
		return runtime.Errorf(runtime.TypeError, "cannot set member '%s' on %s", name, runtime.TypeName(obj))
	}
}

// assignStatic updates the class that owns the static, or defines it on cls.
// A frozen class may not gain a static that shadows one of its methods.
func assignStatic(cls *runtime.ClassValue, name string, value runtime.Value) error {
	if _, owner, ok := cls.FindStatic(name); ok {
		owner.Statics.Set(name, value)
		return nil
	}
	if _, isMethod := cls.FindMethod(name); isMethod && cls.Instantiated() {
		return runtime.Errorf(runtime.TypeError, "class %s is frozen; static '%s' would shadow a method", cls.Name, name)
	}
	cls.Statics.Set(name, value)
	return nil
}

func fieldTypeHint(cls *runtime.ClassValue, name string) string {
	for c := cls; c != nil; c = c.Parent {
		for _, field := range c.Fields {
			if field.Name == name {
				return field.TypeHint
			}
		}
	}
	return ""
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	if _, isNone := obj.(runtime.NoneValue); isNone && expr.IsSafe {
		return runtime.None, nil
	}
	idxVal, err := i.evaluateExpression(expr.Index, env)
	if err != nil {
		return nil, err
	}
	return indexValue(obj, idxVal)
}

func indexValue(obj, idxVal runtime.Value) (runtime.Value, error) {
	switch v := obj.(type) {
	case *runtime.ListValue:
		idx, err := indexFromValue(idxVal, len(v.Elements))
		if err != nil {
			return nil, err
		}
		return v.Elements[idx], nil
	case runtime.StringValue:
		chars := []rune(v.Val)
		idx, err := indexFromValue(idxVal, len(chars))
		if err != nil {
			return nil, err
		}
		return runtime.Str(string(chars[idx])), nil
	case *runtime.MapValue:
		key, err := keyString(idxVal)
		if err != nil {
			return nil, err
		}
		val, ok := v.Get(key)
		if !ok {
			return nil, runtime.Errorf(runtime.NameError, "map has no key %q", key)
		}
		return val, nil
	case *runtime.InstanceValue:
		key, err := keyString(idxVal)
		if err != nil {
			return nil, err
		}
		val, ok := v.Fields.Get(key)
		if !ok {
			return nil, runtime.Errorf(runtime.NameError, "%s has no field %q", v.Class.Name, key)
		}
		return val, nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "cannot index %s", runtime.TypeName(obj))
	}
}

// indexFromValue validates a whole-number index; negative indexes count from the end.
func indexFromValue(val runtime.Value, length int) (int, error) {
	num, ok := val.(runtime.NumberValue)
	if !ok || num.Val != math.Trunc(num.Val) {
		return 0, runtime.Errorf(runtime.TypeError, "index must be a whole number, got %s", inspectValue(val))
	}
	idx := int(num.Val)
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, runtime.Errorf(runtime.TypeError, "index %s out of range for length %d", formatNumber(num.Val), length)
	}
	return idx, nil
}

func (i *Interpreter) assignIndex(target *ast.IndexExpression, value runtime.Value, env *runtime.Environment) error {
	obj, err := i.evaluateExpression(target.Object, env)
	if err != nil {
		return err
	}
	idxVal, err := i.evaluateExpression(target.Index, env)
	if err != nil {
		return err
	}
	switch v := obj.(type) {
	case *runtime.ListValue:
		idx, err := indexFromValue(idxVal, len(v.Elements))
		if err != nil {
			return err
		}
		v.Elements[idx] = value
		return nil
	case *runtime.MapValue:
		key, err := keyString(idxVal)
		if err != nil {
			return err
		}
		v.Set(key, value)
		return nil
	case *runtime.InstanceValue:
		key, err := keyString(idxVal)
		if err != nil {
			return err
		}
		v.Fields.Set(key, value)
		return nil
	default:
		return runtime.Errorf(runtime.TypeError, "cannot assign by index into %s", runtime.TypeName(obj))
	}
}
