package stdlib

import (
	"math"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func unary(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := needArgs(name, args, 1); err != nil {
			return nil, err
		}
		x, err := number(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Num(fn(x)), nil
	}
}

// numbers accepts either a single list or the values themselves.
func numbers(name string, args []runtime.Value) ([]float64, error) {
	if len(args) == 1 {
		if list, ok := args[0].(*runtime.ListValue); ok {
			args = list.Elements
		}
	}
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.TypeError, "%s of no values", name)
	}
	out := make([]float64, len(args))
	for idx := range args {
		n, err := number(name, args, idx)
		if err != nil {
			return nil, err
		}
		out[idx] = n
	}
	return out, nil
}

func fold(name string, pick func(a, b float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		xs, err := numbers(name, args)
		if err != nil {
			return nil, err
		}
		acc := xs[0]
		for _, x := range xs[1:] {
			acc = pick(acc, x)
		}
		return runtime.Num(acc), nil
	}
}

// RegisterMath installs the `math` module.
func RegisterMath(r Registrar) {
	r.RegisterConstant("math.PI", runtime.Num(math.Pi))
	r.RegisterConstant("math.E", runtime.Num(math.E))
	r.RegisterBuiltin("math.sqrt", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := needArgs("sqrt", args, 1); err != nil {
			return nil, err
		}
		x, err := number("sqrt", args, 0)
		if err != nil {
			return nil, err
		}
		if x < 0 {
			return nil, runtime.Errorf(runtime.TypeError, "sqrt of negative number")
		}
		return runtime.Num(math.Sqrt(x)), nil
	})
	r.RegisterBuiltin("math.pow", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := needArgs("pow", args, 2); err != nil {
			return nil, err
		}
		base, err := number("pow", args, 0)
		if err != nil {
			return nil, err
		}
		exp, err := number("pow", args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.Num(math.Pow(base, exp)), nil
	})
	r.RegisterBuiltin("math.floor", unary("floor", math.Floor))
	r.RegisterBuiltin("math.ceil", unary("ceil", math.Ceil))
	r.RegisterBuiltin("math.abs", unary("abs", math.Abs))
	r.RegisterBuiltin("math.sin", unary("sin", math.Sin))
	r.RegisterBuiltin("math.cos", unary("cos", math.Cos))
	r.RegisterBuiltin("math.round", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := needArgs("round", args, 1); err != nil {
			return nil, err
		}
		x, err := number("round", args, 0)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return runtime.Num(math.Round(x)), nil
		}
		digits, err := number("round", args, 1)
		if err != nil {
			return nil, err
		}
		scale := math.Pow(10, math.Trunc(digits))
		return runtime.Num(math.Round(x*scale) / scale), nil
	})
	r.RegisterBuiltin("math.min", fold("min", math.Min))
	r.RegisterBuiltin("math.max", fold("max", math.Max))
}
