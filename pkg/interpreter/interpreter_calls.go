package interpreter

import (
	"context"
	"errors"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	if member, ok := call.Callee.(*ast.MemberAccessExpression); ok && member.IsSafe {
		if _, isNone := callee.(runtime.NoneValue); isNone {
			return runtime.None, nil
		}
	}
	args, err := i.evaluateItems(call.Arguments, env)
	if err != nil {
		return nil, err
	}
	return i.CallValue(callee, args)
}

// CallValue invokes any callable value; natives reach user conduits through it.
func (i *Interpreter) CallValue(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args, nil)
	case runtime.BoundMethodValue:
		return i.callFunction(fn.Method, args, fn.Receiver)
	case runtime.NativeFunctionValue:
		return i.callNative(fn, args)
	case runtime.NativeBoundMethodValue:
		full := make([]runtime.Value, 0, len(args)+1)
		full = append(full, fn.Receiver)
		return i.callNative(fn.Method, append(full, args...))
	case *runtime.ClassValue:
		return i.instantiate(fn, args)
	default:
		return nil, runtime.Errorf(runtime.TypeError, "%s is not callable", runtime.TypeName(callee))
	}
}

func (i *Interpreter) callNative(fn runtime.NativeFunctionValue, args []runtime.Value) (runtime.Value, error) {
	if fn.Arity >= 0 && len(args) < fn.Arity {
		return nil, runtime.Errorf(runtime.TypeError, "%s expects at least %d arguments, got %d", fn.Name, fn.Arity, len(args))
	}
	ctx := &runtime.NativeCallContext{Env: i.global, Caller: i}
	result, err := fn.Impl(ctx, args)
	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) || isUnwindSignal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &RuntimeError{Kind: runtime.TypeError, Message: fn.Name + ": " + err.Error(), Cause: err}
	}
	if result == nil {
		return runtime.None, nil
	}
	return result, nil
}

func (i *Interpreter) depthCounter() *int {
	if i.current != nil {
		return &i.current.depth
	}
	return &i.rootDepth
}

// callFunction binds arguments in a child of the closure scope, then runs the
// body directly, as a generator, or as a new fiber.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, receiver runtime.Value) (runtime.Value, error) {
	callEnv := runtime.NewEnvironment(fn.Closure)
	if receiver != nil {
		callEnv.DefineConst("me", receiver)
		if fn.HomeClass != nil && fn.HomeClass.Parent != nil {
			callEnv.DefineConst("parent", fn.HomeClass.Parent)
		}
	}
	if err := i.bindParameters(fn, args, callEnv); err != nil {
		return nil, err
	}
	run := func() (runtime.Value, error) {
		return i.runBody(fn, callEnv)
	}
	switch {
	case fn.IsGenerator:
		return i.startGenerator(fn, run), nil
	case fn.IsAsync:
		return i.sched.spawn(fn.Name, run), nil
	default:
		return run()
	}
}

// bindParameters binds positionally. Omitted arguments take their default,
// evaluated in the call scope, or none; extras without a rest parameter are ignored.
func (i *Interpreter) bindParameters(fn *runtime.FunctionValue, args []runtime.Value, env *runtime.Environment) error {
	for idx, param := range fn.Params {
		hint := typeHintOf(param.TypeAnnotation)
		if param.IsRest {
			var rest []runtime.Value
			if idx < len(args) {
				rest = append(rest, args[idx:]...)
			}
			return i.bindPattern(param.Name, runtime.NewList(rest...), env, runtime.MutabilityMut, "")
		}
		var value runtime.Value
		switch {
		case idx < len(args):
			value = args[idx]
		case param.Default != nil:
			v, err := i.evaluateExpression(param.Default, env)
			if err != nil {
				return err
			}
			value = v
		default:
			if err := i.bindPattern(param.Name, runtime.None, env, runtime.MutabilityMut, ""); err != nil {
				return err
			}
			continue
		}
		if err := i.bindPattern(param.Name, value, env, runtime.MutabilityMut, hint); err != nil {
			if rerr, ok := err.(*RuntimeError); ok && rerr.Kind == runtime.TypeError {
				rerr.Message = fn.Name + ": parameter " + rerr.Message
			}
			return err
		}
	}
	return nil
}

// runBody evaluates a conduit body. `give` ends it early; otherwise the value
// of the last statement is the result.
func (i *Interpreter) runBody(fn *runtime.FunctionValue, env *runtime.Environment) (runtime.Value, error) {
	depth := i.depthCounter()
	if *depth >= i.maxDepth {
		return nil, runtime.Errorf(runtime.TypeError, "maximum call depth %d exceeded in %s", i.maxDepth, fn.Name)
	}
	*depth++
	defer func() { *depth-- }()
	if !fn.IsGenerator {
		prevGen := i.generator
		i.generator = nil
		defer func() { i.generator = prevGen }()
	}

	var (
		result runtime.Value
		err    error
	)
	if block, ok := fn.Body.(*ast.BlockExpression); ok {
		result, err = i.evaluateStatements(block.Body, env)
	} else {
		result, err = i.evaluateExpression(fn.Body, env)
	}
	if err != nil {
		switch sig := err.(type) {
		case returnSignal:
			result = sig.value
		case breakSignal:
			return nil, runtime.Errorf(runtime.TypeError, "'stop' outside of a loop in %s", fn.Name)
		case continueSignal:
			return nil, runtime.Errorf(runtime.TypeError, "'next' outside of a loop in %s", fn.Name)
		default:
			return nil, err
		}
	}
	if fn.ReturnType != "" && !fn.IsGenerator && !runtime.TypeMatches(fn.ReturnType, result) {
		return nil, runtime.Errorf(runtime.TypeError, "%s must give %s but gave %s", fn.Name, fn.ReturnType, runtime.TypeName(result))
	}
	return result, nil
}

// instantiate freezes the class chain, initializes declared fields from the
// root ancestor down, then runs the nearest `build`.
func (i *Interpreter) instantiate(cls *runtime.ClassValue, args []runtime.Value) (runtime.Value, error) {
	inst := runtime.NewInstance(cls)
	for _, c := range cls.Lineage() {
		c.MarkInstantiated()
		for _, field := range c.Fields {
			var value runtime.Value = runtime.None
			if field.Default != nil {
				fieldEnv := runtime.NewEnvironment(c.Scope)
				fieldEnv.DefineConst("me", inst)
				v, err := i.evaluateExpression(field.Default, fieldEnv)
				if err != nil {
					return nil, err
				}
				if field.TypeHint != "" && !runtime.TypeMatches(field.TypeHint, v) {
					return nil, runtime.Errorf(runtime.TypeError, "field '%s' of %s is declared %s but was given %s", field.Name, c.Name, field.TypeHint, runtime.TypeName(v))
				}
				value = v
			}
			inst.Fields.Set(field.Name, value)
		}
	}
	if ctor := cls.FindConstructor(); ctor != nil {
		if _, err := i.callFunction(ctor, args, inst); err != nil {
			return nil, err
		}
	}
	return inst, nil
}
