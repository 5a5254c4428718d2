package interpreter

import (
	"math"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func textTransform(name string, fn func(string) string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := argText(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Str(fn(s)), nil
	}
}

func textPredicate(name string, fn func(string, string) bool) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := argText(name, args, 0)
		if err != nil {
			return nil, err
		}
		affix, err := argText(name, args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(fn(s, affix)), nil
	}
}

func (i *Interpreter) registerTextBuiltins() {
	i.defineNative("upper", 1, textTransform("upper", strings.ToUpper))
	i.defineNative("lower", 1, textTransform("lower", strings.ToLower))
	i.defineNative("trim", 1, textTransform("trim", strings.TrimSpace))
	i.defineNative("startsWith", 2, textPredicate("startsWith", strings.HasPrefix))
	i.defineNative("endsWith", 2, textPredicate("endsWith", strings.HasSuffix))
	i.defineNative("split", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := argText("split", args, 0)
		if err != nil {
			return nil, err
		}
		var parts []string
		if len(args) < 2 {
			parts = strings.Fields(s)
		} else {
			sep, err := argText("split", args, 1)
			if err != nil {
				return nil, err
			}
			parts = strings.Split(s, sep)
		}
		out := make([]runtime.Value, len(parts))
		for idx, part := range parts {
			out[idx] = runtime.Str(part)
		}
		return runtime.NewList(out...), nil
	})
	i.defineNative("replace", 3, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := argText("replace", args, 0)
		if err != nil {
			return nil, err
		}
		old, err := argText("replace", args, 1)
		if err != nil {
			return nil, err
		}
		repl, err := argText("replace", args, 2)
		if err != nil {
			return nil, err
		}
		return runtime.Str(strings.ReplaceAll(s, old, repl)), nil
	})
	i.defineNative("repeat", 2, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return applyBinaryOperator("*", args[0], args[1])
	})
}

func numberTransform(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		n, err := argNumber(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Num(fn(n)), nil
	}
}

func (i *Interpreter) registerNumberBuiltins() {
	i.defineNative("abs", 1, numberTransform("abs", math.Abs))
	i.defineNative("floor", 1, numberTransform("floor", math.Floor))
	i.defineNative("ceil", 1, numberTransform("ceil", math.Ceil))
	i.defineNative("round", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		n, err := argNumber("round", args, 0)
		if err != nil {
			return nil, err
		}
		digits := 0
		if len(args) > 1 {
			if digits, err = argInt("round", args, 1); err != nil {
				return nil, err
			}
		}
		scale := math.Pow(10, float64(digits))
		return runtime.Num(math.Round(n*scale) / scale), nil
	})
}
