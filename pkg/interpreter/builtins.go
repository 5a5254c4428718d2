package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// defineNative installs a global builtin with a minimum arity.
func (i *Interpreter) defineNative(name string, arity int, impl runtime.NativeFunc) {
	i.global.DefineConst(name, runtime.NativeFunctionValue{Name: name, Arity: arity, Impl: impl})
}

func (i *Interpreter) registerCoreBuiltins() {
	i.defineNative("print", -1, i.builtinPrint)
	i.defineNative("len", 1, builtinLen)
	i.defineNative("type", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.Str(runtime.TypeName(args[0])), nil
	})
	i.defineNative("str", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := i.stringifyValue(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.Str(s), nil
	})
	i.defineNative("num", 1, builtinNum)
	i.defineNative("int", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		v, err := builtinNum(ctx, args)
		if err != nil {
			return nil, err
		}
		return runtime.Num(math.Trunc(v.(runtime.NumberValue).Val)), nil
	})
	i.defineNative("bool", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(runtime.Truthy(args[0])), nil
	})
	i.defineNative("range", 1, builtinRange)
	i.defineNative("clone", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return cloneValue(args[0]), nil
	})
	i.defineNative("sleep", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		ms, err := argNumber("sleep", args, 0)
		if err != nil {
			return nil, err
		}
		task := runtime.NewTask(fmt.Sprintf("sleep(%s)", formatNumber(ms)))
		i.sched.after(time.Duration(ms*float64(time.Millisecond)), func() {
			i.logger.Debug("timer fired", "task", task.Name)
			task.Resolve(runtime.None)
		})
		return task, nil
	})
	i.defineNative("tick", 0, func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		task := runtime.NewTask("tick")
		i.sched.enqueue(func() { task.Resolve(runtime.None) })
		return task, nil
	})
	i.registerCollectionBuiltins()
	i.registerTextBuiltins()
	i.registerNumberBuiltins()
}

func (i *Interpreter) builtinPrint(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		s, err := i.stringifyValue(arg)
		if err != nil {
			return nil, err
		}
		parts[idx] = s
	}
	if _, err := fmt.Fprintln(i.out, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return runtime.None, nil
}

func builtinLen(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ListValue:
		return runtime.Num(float64(len(v.Elements))), nil
	case runtime.StringValue:
		return runtime.Num(float64(runeLen(v.Val))), nil
	case *runtime.MapValue:
		return runtime.Num(float64(v.Len())), nil
	case *runtime.InstanceValue:
		return runtime.Num(float64(v.Fields.Len())), nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "len() needs a list, text or map, got %s", runtime.TypeName(args[0]))
	}
}

func builtinNum(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.NumberValue:
		return v, nil
	case runtime.BoolValue:
		if v.Val {
			return runtime.Num(1), nil
		}
		return runtime.Num(0), nil
	case runtime.StringValue:
		text := strings.ReplaceAll(strings.TrimSpace(v.Val), "_", "")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, runtime.Errorf(runtime.TypeError, "cannot convert %q to a number", v.Val)
		}
		return runtime.Num(f), nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "cannot convert %s to a number", runtime.TypeName(args[0]))
	}
}

// builtinRange is exclusive of its end: range(end) or range(start, end[, step]).
func builtinRange(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	start, end, step := 0.0, 0.0, 1.0
	nums := make([]float64, 0, 3)
	for idx := range args {
		if idx > 2 {
			break
		}
		n, err := argNumber("range", args, idx)
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 1:
		end = nums[0]
	case 2:
		start, end = nums[0], nums[1]
	default:
		start, end, step = nums[0], nums[1], nums[2]
	}
	if step == 0 {
		return nil, runtime.Errorf(runtime.TypeError, "range() step must not be zero")
	}
	var out []runtime.Value
	for n := start; (step > 0 && n < end) || (step < 0 && n > end); n += step {
		out = append(out, runtime.Num(n))
	}
	return runtime.NewList(out...), nil
}

// cloneValue deep-copies lists and maps; instances get a fresh field map.
func cloneValue(v runtime.Value) runtime.Value {
	switch val := v.(type) {
	case *runtime.ListValue:
		out := make([]runtime.Value, len(val.Elements))
		for idx, el := range val.Elements {
			out[idx] = cloneValue(el)
		}
		return runtime.NewList(out...)
	case *runtime.MapValue:
		out := runtime.NewMap()
		val.Each(func(key string, el runtime.Value) bool {
			out.Set(key, cloneValue(el))
			return true
		})
		return out
	case *runtime.InstanceValue:
		inst := runtime.NewInstance(val.Class)
		inst.Fields = cloneValue(val.Fields).(*runtime.MapValue)
		return inst
	default:
		return v
	}
}

func argAt(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) {
		return args[idx]
	}
	return runtime.None
}

func argNumber(name string, args []runtime.Value, idx int) (float64, error) {
	n, ok := argAt(args, idx).(runtime.NumberValue)
	if !ok {
		return 0, runtime.Errorf(runtime.TypeError, "%s() argument %d must be num, got %s", name, idx+1, runtime.TypeName(argAt(args, idx)))
	}
	return n.Val, nil
}

func argInt(name string, args []runtime.Value, idx int) (int, error) {
	n, err := argNumber(name, args, idx)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, runtime.Errorf(runtime.TypeError, "%s() argument %d must be a whole number, got %s", name, idx+1, formatNumber(n))
	}
	return int(n), nil
}

func argText(name string, args []runtime.Value, idx int) (string, error) {
	s, ok := argAt(args, idx).(runtime.StringValue)
	if !ok {
		return "", runtime.Errorf(runtime.TypeError, "%s() argument %d must be text, got %s", name, idx+1, runtime.TypeName(argAt(args, idx)))
	}
	return s.Val, nil
}

func argList(name string, args []runtime.Value, idx int) (*runtime.ListValue, error) {
	l, ok := argAt(args, idx).(*runtime.ListValue)
	if !ok {
		return nil, runtime.Errorf(runtime.TypeError, "%s() argument %d must be list, got %s", name, idx+1, runtime.TypeName(argAt(args, idx)))
	}
	return l, nil
}
