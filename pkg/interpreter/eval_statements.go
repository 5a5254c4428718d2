package interpreter

import (
	"errors"
	"unicode/utf8"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

type breakSignal struct{}

func (breakSignal) Error() string { return "stop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "next" }

type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "give"
}

// isUnwindSignal reports errors that tear down a suspended generator or
// fiber. They pass through natives and try/catch untouched.
func isUnwindSignal(err error) bool {
	return errors.Is(err, errGeneratorClosed) || errors.Is(err, errFiberAborted)
}

func isControlSignal(err error) bool {
	switch err.(type) {
	case breakSignal, continueSignal, returnSignal:
		return true
	}
	return false
}

func (i *Interpreter) evaluateBlock(block *ast.BlockExpression, env *runtime.Environment) (runtime.Value, error) {
	return i.evaluateStatements(block.Body, runtime.NewEnvironment(env))
}

func (i *Interpreter) evaluateStatements(body []ast.Statement, scope *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.None
	for _, stmt := range body {
		val, err := i.evaluateStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func mutabilityOf(kind ast.DeclarationKind) runtime.Mutability {
	switch kind {
	case ast.DeclarationMut:
		return runtime.MutabilityMut
	case ast.DeclarationConst:
		return runtime.MutabilityConst
	default:
		return runtime.MutabilityLet
	}
}

func typeHintOf(t *ast.SimpleTypeExpression) string {
	if t == nil || t.Name == nil {
		return ""
	}
	return t.Name.Name
}

func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment) (runtime.Value, error) {
	var value runtime.Value = runtime.None
	if decl.Value != nil {
		v, err := i.evaluateExpression(decl.Value, env)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if fn, ok := value.(*runtime.FunctionValue); ok && fn.Name == "<lambda>" {
		if id, ok := decl.Target.(*ast.Identifier); ok {
			fn.Name = id.Name
		}
	}
	hint := typeHintOf(decl.TypeAnnotation)
	if err := i.bindPattern(decl.Target, value, env, mutabilityOf(decl.Kind), hint); err != nil {
		if rerr, ok := err.(*RuntimeError); ok && rerr.Pos.Line == 0 {
			rerr.Pos = decl.Span().Start
		}
		return nil, err
	}
	return value, nil
}

func (i *Interpreter) evaluateFunctionDefinition(def *ast.FunctionDefinition, env *runtime.Environment) (runtime.Value, error) {
	fn := runtime.NewFunctionFromDefinition(def, env)
	if def.ID != nil {
		env.DefineConst(def.ID.Name, fn)
	}
	return fn, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.None
	if stmt.Argument != nil {
		val, err := i.evaluateExpression(stmt.Argument, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{value: result}
}

func (i *Interpreter) evaluateFailStatement(stmt *ast.FailStatement, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(stmt.Argument, env)
	if err != nil {
		return nil, err
	}
	failure := &RuntimeError{Kind: runtime.UserError, Message: valueToString(val), Value: val}
	failure.Pos = stmt.Span().Start
	return nil, failure
}

func (i *Interpreter) evaluateWhileLoop(loop *ast.WhileLoop, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.None
	for {
		if err := i.ctx.Err(); err != nil {
			return nil, err
		}
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(cond) {
			return result, nil
		}
		val, err := i.evaluateBlock(loop.Body, env)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return result, nil
			case continueSignal:
				continue
			default:
				return nil, err
			}
		}
		result = val
	}
}

// iterate calls visit for each element of a repeatable value. visit returns
// false to stop early.
func (i *Interpreter) iterate(iterable runtime.Value, visit func(runtime.Value) (bool, error)) error {
	switch it := iterable.(type) {
	case *runtime.ListValue:
		items := append([]runtime.Value(nil), it.Elements...)
		for _, el := range items {
			more, err := visit(el)
			if err != nil || !more {
				return err
			}
		}
		return nil
	case runtime.StringValue:
		for _, r := range it.Val {
			more, err := visit(runtime.Str(string(r)))
			if err != nil || !more {
				return err
			}
		}
		return nil
	case *runtime.MapValue:
		keys := it.Keys()
		for _, key := range keys {
			val, _ := it.Get(key)
			more, err := visit(runtime.NewList(runtime.Str(key), val))
			if err != nil || !more {
				return err
			}
		}
		return nil
	case *runtime.GeneratorValue:
		for {
			val, done, err := it.Iter.Next()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			more, err := visit(val)
			if err != nil || !more {
				it.Iter.Close()
				return err
			}
		}
	default:
		return runtime.Errorf(runtime.TypeError, "cannot repeat over %s", runtime.TypeName(iterable))
	}
}

func (i *Interpreter) evaluateRepeatLoop(loop *ast.RepeatLoop, env *runtime.Environment) (runtime.Value, error) {
	iterable, err := i.evaluateExpression(loop.Iterable, env)
	if err != nil {
		return nil, err
	}
	var result runtime.Value = runtime.None
	index := 0
	err = i.iterate(iterable, func(el runtime.Value) (bool, error) {
		if err := i.ctx.Err(); err != nil {
			return false, err
		}
		iterEnv := runtime.NewEnvironment(env)
		if loop.IndexPattern != nil {
			if err := i.bindPattern(loop.IndexPattern, runtime.Num(float64(index)), iterEnv, runtime.MutabilityLet, ""); err != nil {
				return false, err
			}
		}
		index++
		if err := i.bindPattern(loop.Pattern, el, iterEnv, runtime.MutabilityLet, ""); err != nil {
			return false, err
		}
		val, err := i.evaluateBlock(loop.Body, iterEnv)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return false, nil
			case continueSignal:
				return true, nil
			default:
				return false, err
			}
		}
		result = val
		return true, nil
	})
	if err != nil {
		if rerr, ok := err.(*RuntimeError); ok && rerr.Pos.Line == 0 {
			rerr.Pos = loop.Span().Start
		}
		return nil, err
	}
	return result, nil
}

// evaluateTryStatement runs the body, hands a runtime failure to the catch
// block, and runs finally exactly once on every exit path. A failure raised
// inside finally replaces whatever was propagating.
func (i *Interpreter) evaluateTryStatement(stmt *ast.TryStatement, env *runtime.Environment) (runtime.Value, error) {
	result, err := i.evaluateBlock(stmt.Body, env)
	var rerr *RuntimeError
	if err != nil && stmt.CatchBody != nil && !isControlSignal(err) && errors.As(err, &rerr) {
		catchEnv := runtime.NewEnvironment(env)
		if stmt.CatchBinding != nil {
			catchEnv.DefineConst(stmt.CatchBinding.Name, caughtValue(rerr))
		}
		result, err = i.evaluateBlock(stmt.CatchBody, catchEnv)
	}
	if stmt.FinallyBody != nil {
		if _, ferr := i.evaluateBlock(stmt.FinallyBody, env); ferr != nil {
			return nil, ferr
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// caughtValue is what a catch clause binds: the payload of `fail`, or a map
// describing a runtime failure.
func caughtValue(err *RuntimeError) runtime.Value {
	// rejections carry the payload of the `fail` that rejected the task
	if (err.Kind == runtime.UserError || err.Kind == runtime.AsyncRejection) && err.Value != nil {
		return err.Value
	}
	return runtime.MapOf(
		"kind", runtime.Str(string(err.Kind)),
		"message", runtime.Str(err.Message),
		"line", runtime.Num(float64(err.Pos.Line)),
		"column", runtime.Num(float64(err.Pos.Column)),
	)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
