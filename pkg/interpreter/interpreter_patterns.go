package interpreter

import (
	"fmt"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// bindPattern declares the names in pattern. A declaration-level type hint is
// recorded on a plain identifier binding so later assignments are checked too;
// for destructuring it constrains the whole value.
func (i *Interpreter) bindPattern(pattern ast.Pattern, value runtime.Value, env *runtime.Environment, mutability runtime.Mutability, hint string) error {
	if hint != "" {
		if id, ok := pattern.(*ast.Identifier); ok {
			return env.Define(id.Name, value, mutability, hint)
		}
		if !runtime.TypeMatches(hint, value) {
			return runtime.Errorf(runtime.TypeError, "expected %s but got %s", hint, runtime.TypeName(value))
		}
	}
	return i.assignPattern(pattern, value, env, mutability)
}

func (i *Interpreter) assignPattern(pattern ast.Pattern, value runtime.Value, env *runtime.Environment, mutability runtime.Mutability) error {
	switch p := pattern.(type) {
	case *ast.Identifier:
		return env.Define(p.Name, value, mutability, "")
	case *ast.WildcardPattern:
		return nil
	case *ast.LiteralPattern:
		lit, err := literalValue(p.Literal)
		if err != nil {
			return err
		}
		if !runtime.Equal(lit, value) {
			return patternMismatch("expected %s but got %s", inspectValue(lit), inspectValue(value))
		}
		return nil
	case *ast.RangePattern:
		num, ok := value.(runtime.NumberValue)
		if !ok {
			return patternMismatch("expected a number in %s..%s but got %s", formatNumber(p.Start.Value), formatNumber(p.End.Value), runtime.TypeName(value))
		}
		lo, hi := p.Start.Value, p.End.Value
		if lo > hi {
			lo, hi = hi, lo
		}
		if num.Val < lo || num.Val > hi {
			return patternMismatch("%s is outside %s..%s", formatNumber(num.Val), formatNumber(p.Start.Value), formatNumber(p.End.Value))
		}
		return nil
	case *ast.TypedPattern:
		hint := typeHintOf(p.TypeAnnotation)
		if !runtime.TypeMatches(hint, value) {
			return runtime.Errorf(runtime.TypeError, "expected %s but got %s", hint, runtime.TypeName(value))
		}
		if id, ok := p.Pattern.(*ast.Identifier); ok {
			return env.Define(id.Name, value, mutability, hint)
		}
		return i.assignPattern(p.Pattern, value, env, mutability)
	case *ast.ArrayPattern:
		list, ok := value.(*runtime.ListValue)
		if !ok {
			return patternMismatch("cannot destructure %s as a list", runtime.TypeName(value))
		}
		elements := list.Elements
		if p.RestPattern == nil && len(elements) != len(p.Elements) {
			return patternMismatch("expected %d elements but got %d", len(p.Elements), len(elements))
		}
		if len(elements) < len(p.Elements) {
			return patternMismatch("expected at least %d elements but got %d", len(p.Elements), len(elements))
		}
		for idx, elemPattern := range p.Elements {
			if err := i.assignPattern(elemPattern, elements[idx], env, mutability); err != nil {
				return err
			}
		}
		if p.RestPattern != nil {
			rest := runtime.NewList(append([]runtime.Value(nil), elements[len(p.Elements):]...)...)
			return i.assignPattern(p.RestPattern, rest, env, mutability)
		}
		return nil
	case *ast.MapPattern:
		fields, ok := destructurableFields(value)
		if !ok {
			return patternMismatch("cannot destructure %s as a map", runtime.TypeName(value))
		}
		for _, field := range p.Fields {
			fieldVal, ok := fields.Get(field.Key)
			if !ok {
				return patternMismatch("missing key '%s'", field.Key)
			}
			if err := i.assignPattern(field.Pattern, fieldVal, env, mutability); err != nil {
				return err
			}
		}
		if p.RestPattern != nil {
			rest := fields.Copy()
			for _, field := range p.Fields {
				rest.Delete(field.Key)
			}
			return i.assignPattern(p.RestPattern, rest, env, mutability)
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern %s", pattern.NodeType())
	}
}

// MatchPattern tests value against pattern. On success it returns a child of
// base holding the pattern's bindings; on failure nothing is bound.
func (i *Interpreter) MatchPattern(pattern ast.Pattern, value runtime.Value, base *runtime.Environment) (*runtime.Environment, bool) {
	if pattern == nil {
		return nil, false
	}
	matchEnv := runtime.NewEnvironment(base)
	if err := i.assignPattern(pattern, value, matchEnv, runtime.MutabilityLet); err != nil {
		return nil, false
	}
	return matchEnv, true
}

func destructurableFields(value runtime.Value) (*runtime.MapValue, bool) {
	switch v := value.(type) {
	case *runtime.MapValue:
		return v, true
	case *runtime.InstanceValue:
		return v.Fields, true
	default:
		return nil, false
	}
}

func patternMismatch(format string, args ...any) *RuntimeError {
	return runtime.Errorf(runtime.TypeError, "pattern mismatch: "+format, args...)
}

func literalValue(lit ast.Literal) (runtime.Value, error) {
	switch l := lit.(type) {
	case *ast.NumberLiteral:
		return runtime.Num(l.Value), nil
	case *ast.StringLiteral:
		return runtime.Str(l.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(l.Value), nil
	case *ast.NoneLiteral:
		return runtime.None, nil
	default:
		return nil, fmt.Errorf("invalid literal in pattern: %T", lit)
	}
}
