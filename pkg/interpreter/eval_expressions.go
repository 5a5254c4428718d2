package interpreter

import (
	"fmt"
	"math"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func (i *Interpreter) evaluateTemplateString(tpl *ast.TemplateString, env *runtime.Environment) (runtime.Value, error) {
	var sb strings.Builder
	for _, part := range tpl.Parts {
		if lit, ok := part.(*ast.StringLiteral); ok {
			sb.WriteString(lit.Value)
			continue
		}
		val, err := i.evaluateExpression(part, env)
		if err != nil {
			return nil, err
		}
		str, err := i.stringifyValue(val)
		if err != nil {
			return nil, err
		}
		sb.WriteString(str)
	}
	return runtime.Str(sb.String()), nil
}

// spreadValues expands the argument of `...expr` inside a list or call.
func (i *Interpreter) spreadValues(val runtime.Value) ([]runtime.Value, error) {
	switch v := val.(type) {
	case *runtime.ListValue:
		return v.Elements, nil
	case *runtime.GeneratorValue:
		return drainGenerator(v)
	case runtime.NoneValue:
		return nil, nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "cannot spread %s into a list", runtime.TypeName(val))
	}
}

// evaluateItems evaluates list elements or call arguments, expanding spreads.
func (i *Interpreter) evaluateItems(exprs []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	values := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		if spread, ok := expr.(*ast.SpreadExpression); ok {
			val, err := i.evaluateExpression(spread.Argument, env)
			if err != nil {
				return nil, err
			}
			items, err := i.spreadValues(val)
			if err != nil {
				return nil, err
			}
			values = append(values, items...)
			continue
		}
		val, err := i.evaluateExpression(expr, env)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

func (i *Interpreter) evaluateArrayLiteral(expr *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	values, err := i.evaluateItems(expr.Elements, env)
	if err != nil {
		return nil, err
	}
	return runtime.NewList(values...), nil
}

func (i *Interpreter) evaluateMapLiteral(expr *ast.MapLiteral, env *runtime.Environment) (runtime.Value, error) {
	out := runtime.NewMap()
	for _, entry := range expr.Entries {
		if entry.Spread != nil {
			val, err := i.evaluateExpression(entry.Spread, env)
			if err != nil {
				return nil, err
			}
			switch v := val.(type) {
			case *runtime.MapValue:
				out.Merge(v)
			case *runtime.InstanceValue:
				out.Merge(v.Fields)
			case runtime.NoneValue:
			default:
				return nil, i.errorAt(entry.Spread, runtime.TypeError, "cannot spread %s into a map", runtime.TypeName(val))
			}
			continue
		}
		key, err := i.mapKey(entry, env)
		if err != nil {
			return nil, err
		}
		val, err := i.evaluateExpression(entry.Value, env)
		if err != nil {
			return nil, err
		}
		out.Set(key, val)
	}
	return out, nil
}

func (i *Interpreter) mapKey(entry *ast.MapEntry, env *runtime.Environment) (string, error) {
	if !entry.Computed {
		switch k := entry.Key.(type) {
		case *ast.Identifier:
			return k.Name, nil
		case *ast.StringLiteral:
			return k.Value, nil
		}
	}
	val, err := i.evaluateExpression(entry.Key, env)
	if err != nil {
		return "", err
	}
	return keyString(val)
}

// keyString converts a computed key to the text a map stores it under.
func keyString(val runtime.Value) (string, error) {
	switch v := val.(type) {
	case runtime.StringValue:
		return v.Val, nil
	case runtime.NumberValue:
		return formatNumber(v.Val), nil
	case runtime.BoolValue:
		return valueToString(v), nil
	default:
		return "", runtime.Errorf(runtime.TypeError, "map keys must be text, got %s", runtime.TypeName(val))
	}
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "not", "!":
		return runtime.Bool(!runtime.Truthy(operand)), nil
	case "-", "+":
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError, "unary %s expects a number, got %s", expr.Operator, runtime.TypeName(operand))
		}
		if expr.Operator == "-" {
			return runtime.Num(-num.Val), nil
		}
		return num, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", expr.Operator)
	}
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch expr.Operator {
	case "and", "&&":
		left, err := i.evaluateExpression(expr.Left, env)
		if err != nil || !runtime.Truthy(left) {
			return left, err
		}
		return i.evaluateExpression(expr.Right, env)
	case "or", "||":
		left, err := i.evaluateExpression(expr.Left, env)
		if err != nil || runtime.Truthy(left) {
			return left, err
		}
		return i.evaluateExpression(expr.Right, env)
	case "??":
		left, err := i.evaluateExpression(expr.Left, env)
		if err != nil {
			return nil, err
		}
		if _, isNone := left.(runtime.NoneValue); !isNone {
			return left, nil
		}
		return i.evaluateExpression(expr.Right, env)
	}
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOperator(expr.Operator, left, right)
}

func applyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "in":
		ok, err := compareValues(op, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(ok), nil
	}
	if op == "+" {
		return addValues(left, right)
	}
	if op == "*" {
		if s, ok := left.(runtime.StringValue); ok {
			if n, ok := right.(runtime.NumberValue); ok {
				if n.Val < 0 || n.Val != math.Trunc(n.Val) {
					return nil, runtime.Errorf(runtime.TypeError, "text can only be repeated a whole, non-negative number of times")
				}
				return runtime.Str(strings.Repeat(s.Val, int(n.Val))), nil
			}
		}
	}
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, runtime.Errorf(runtime.TypeError, "unsupported operand types for %s: %s and %s", op, runtime.TypeName(left), runtime.TypeName(right))
	}
	switch op {
	case "-":
		return runtime.Num(l.Val - r.Val), nil
	case "*":
		return runtime.Num(l.Val * r.Val), nil
	case "/":
		if r.Val == 0 {
			return nil, runtime.Errorf(runtime.TypeError, "division by zero")
		}
		return runtime.Num(l.Val / r.Val), nil
	case "%":
		if r.Val == 0 {
			return nil, runtime.Errorf(runtime.TypeError, "modulo by zero")
		}
		return runtime.Num(math.Mod(l.Val, r.Val)), nil
	case "**":
		return runtime.Num(math.Pow(l.Val, r.Val)), nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

func addValues(left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.NumberValue:
		if r, ok := right.(runtime.NumberValue); ok {
			return runtime.Num(l.Val + r.Val), nil
		}
	case *runtime.ListValue:
		if r, ok := right.(*runtime.ListValue); ok {
			out := make([]runtime.Value, 0, len(l.Elements)+len(r.Elements))
			out = append(out, l.Elements...)
			return runtime.NewList(append(out, r.Elements...)...), nil
		}
	case *runtime.MapValue:
		if r, ok := right.(*runtime.MapValue); ok {
			out := l.Copy()
			out.Merge(r)
			return out, nil
		}
	}
	_, lText := left.(runtime.StringValue)
	_, rText := right.(runtime.StringValue)
	if lText || rText {
		return runtime.Str(valueToString(left) + valueToString(right)), nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "unsupported operand types for +: %s and %s", runtime.TypeName(left), runtime.TypeName(right))
}

// evaluateCompareExpression evaluates a chain such as `a < b <= c`; every
// operand is evaluated at most once and the chain stops at the first false link.
func (i *Interpreter) evaluateCompareExpression(expr *ast.CompareExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Operands[0], env)
	if err != nil {
		return nil, err
	}
	for idx, op := range expr.Operators {
		right, err := i.evaluateExpression(expr.Operands[idx+1], env)
		if err != nil {
			return nil, err
		}
		ok, err := compareValues(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return runtime.Bool(false), nil
		}
		left = right
	}
	return runtime.Bool(true), nil
}

func compareValues(op string, left, right runtime.Value) (bool, error) {
	switch op {
	case "==":
		return runtime.Equal(left, right), nil
	case "!=":
		return !runtime.Equal(left, right), nil
	case "in":
		return containsValue(right, left)
	}
	cmp, err := orderValues(left, right)
	if err != nil {
		return false, runtime.Errorf(runtime.TypeError, "cannot compare %s %s %s", runtime.TypeName(left), op, runtime.TypeName(right))
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator %s", op)
	}
}

// orderValues orders two numbers or two texts.
func orderValues(left, right runtime.Value) (int, error) {
	switch l := left.(type) {
	case runtime.NumberValue:
		if r, ok := right.(runtime.NumberValue); ok {
			switch {
			case l.Val < r.Val:
				return -1, nil
			case l.Val > r.Val:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok {
			return strings.Compare(l.Val, r.Val), nil
		}
	}
	return 0, runtime.Errorf(runtime.TypeError, "cannot order %s and %s", runtime.TypeName(left), runtime.TypeName(right))
}

func containsValue(container, item runtime.Value) (bool, error) {
	switch c := container.(type) {
	case *runtime.ListValue:
		for _, el := range c.Elements {
			if runtime.Equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case runtime.StringValue:
		s, ok := item.(runtime.StringValue)
		if !ok {
			return false, runtime.Errorf(runtime.TypeError, "'in' on text needs text, got %s", runtime.TypeName(item))
		}
		return strings.Contains(c.Val, s.Val), nil
	case *runtime.MapValue:
		key, err := keyString(item)
		if err != nil {
			return false, err
		}
		return c.Has(key), nil
	default:
		return false, runtime.Errorf(runtime.TypeError, "'in' needs a list, text or map, got %s", runtime.TypeName(container))
	}
}

func (i *Interpreter) evaluateRangeExpression(expr *ast.RangeExpression, env *runtime.Environment) (runtime.Value, error) {
	start, err := i.evaluateExpression(expr.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := i.evaluateExpression(expr.End, env)
	if err != nil {
		return nil, err
	}
	return inclusiveRange(start, end)
}

func inclusiveRange(start, end runtime.Value) (*runtime.ListValue, error) {
	lo, lok := start.(runtime.NumberValue)
	hi, hok := end.(runtime.NumberValue)
	if !lok || !hok || lo.Val != math.Trunc(lo.Val) || hi.Val != math.Trunc(hi.Val) {
		return nil, runtime.Errorf(runtime.TypeError, "range bounds must be whole numbers, got %s and %s", inspectValue(start), inspectValue(end))
	}
	step := 1.0
	if lo.Val > hi.Val {
		step = -1
	}
	count := int(math.Abs(hi.Val-lo.Val)) + 1
	values := make([]runtime.Value, 0, count)
	for n := 0; n < count; n++ {
		values = append(values, runtime.Num(lo.Val+float64(n)*step))
	}
	return runtime.NewList(values...), nil
}

// evaluatePipeline feeds the left value as the first argument of the right
// stage. `x -! f(a)` calls f(x, a); `~!` awaits tasks on both sides.
func (i *Interpreter) evaluatePipeline(expr *ast.PipelineExpression, env *runtime.Environment) (runtime.Value, error) {
	subject, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.IsAsync {
		if task, ok := subject.(*runtime.TaskValue); ok {
			if subject, err = i.sched.await(task); err != nil {
				return nil, err
			}
		}
	}
	var callee runtime.Value
	args := []runtime.Value{subject}
	if call, ok := expr.Right.(*ast.FunctionCall); ok {
		if callee, err = i.evaluateExpression(call.Callee, env); err != nil {
			return nil, err
		}
		extra, err := i.evaluateItems(call.Arguments, env)
		if err != nil {
			return nil, err
		}
		args = append(args, extra...)
	} else if callee, err = i.evaluateExpression(expr.Right, env); err != nil {
		return nil, err
	}
	result, err := i.CallValue(callee, args)
	if err != nil {
		return nil, err
	}
	if expr.IsAsync {
		if task, ok := result.(*runtime.TaskValue); ok {
			return i.sched.await(task)
		}
	}
	return result, nil
}

func (i *Interpreter) evaluateIfExpression(expr *ast.IfExpression, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evaluateExpression(expr.Condition, env)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.evaluateBlock(expr.Consequent, env)
	}
	if expr.Alternate == nil {
		return runtime.None, nil
	}
	return i.evaluateExpression(expr.Alternate, env)
}

func (i *Interpreter) evaluateCheckExpression(expr *ast.CheckExpression, env *runtime.Environment) (runtime.Value, error) {
	subject, err := i.evaluateExpression(expr.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, clause := range expr.Clauses {
		clauseEnv, ok := i.MatchPattern(clause.Pattern, subject, env)
		if !ok {
			continue
		}
		if clause.Guard != nil {
			guard, err := i.evaluateExpression(clause.Guard, clauseEnv)
			if err != nil {
				return nil, err
			}
			if !runtime.Truthy(guard) {
				continue
			}
		}
		return i.evaluateExpression(clause.Body, clauseEnv)
	}
	return nil, runtime.Errorf(runtime.NoMatchError, "no check clause matched %s", inspectValue(subject))
}

func (i *Interpreter) evaluateWaitExpression(expr *ast.WaitExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(expr.Argument, env)
	if err != nil {
		return nil, err
	}
	task, ok := val.(*runtime.TaskValue)
	if !ok {
		return val, nil
	}
	return i.sched.await(task)
}

func (i *Interpreter) evaluateAssignment(expr *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator != ast.AssignmentAssign {
		current, err := i.evaluateExpression(expr.Left, env)
		if err != nil {
			return nil, err
		}
		op := strings.TrimSuffix(string(expr.Operator), "=")
		if value, err = applyBinaryOperator(op, current, value); err != nil {
			return nil, err
		}
	}
	switch target := expr.Left.(type) {
	case *ast.Identifier:
		if err := env.Assign(target.Name, value); err != nil {
			return nil, err
		}
	case *ast.MemberAccessExpression:
		if err := i.assignMember(target, value, env); err != nil {
			return nil, err
		}
	case *ast.IndexExpression:
		if err := i.assignIndex(target, value, env); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported assignment target %s", expr.Left.NodeType())
	}
	return value, nil
}
