package interpreter

import (
	"math"
	"sort"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func (i *Interpreter) registerCollectionBuiltins() {
	i.defineNative("keys", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		m, err := argFields("keys", args[0])
		if err != nil {
			return nil, err
		}
		keys := m.Keys()
		out := make([]runtime.Value, len(keys))
		for idx, k := range keys {
			out[idx] = runtime.Str(k)
		}
		return runtime.NewList(out...), nil
	})
	i.defineNative("values", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		m, err := argFields("values", args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewList(m.Values()...), nil
	})
	i.defineNative("entries", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		m, err := argFields("entries", args[0])
		if err != nil {
			return nil, err
		}
		var out []runtime.Value
		m.Each(func(key string, value runtime.Value) bool {
			out = append(out, runtime.NewList(runtime.Str(key), value))
			return true
		})
		return runtime.NewList(out...), nil
	})
	i.defineNative("push", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		list, err := argList("push", args, 0)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, args[1:]...)
		return list, nil
	})
	i.defineNative("pop", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		list, err := argList("pop", args, 0)
		if err != nil {
			return nil, err
		}
		if len(list.Elements) == 0 {
			return runtime.None, nil
		}
		last := list.Elements[len(list.Elements)-1]
		list.Elements = list.Elements[:len(list.Elements)-1]
		return last, nil
	})
	i.defineNative("shift", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		list, err := argList("shift", args, 0)
		if err != nil {
			return nil, err
		}
		if len(list.Elements) == 0 {
			return runtime.None, nil
		}
		first := list.Elements[0]
		list.Elements = append([]runtime.Value(nil), list.Elements[1:]...)
		return first, nil
	})
	i.defineNative("unshift", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		list, err := argList("unshift", args, 0)
		if err != nil {
			return nil, err
		}
		items := append([]runtime.Value(nil), args[1:]...)
		list.Elements = append(items, list.Elements...)
		return list, nil
	})
	i.defineNative("slice", 2, builtinSlice)
	i.defineNative("join", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		list, err := argList("join", args, 0)
		if err != nil {
			return nil, err
		}
		sep := ""
		if len(args) > 1 {
			if sep, err = argText("join", args, 1); err != nil {
				return nil, err
			}
		}
		parts := make([]string, len(list.Elements))
		for idx, el := range list.Elements {
			s, err := i.stringifyValue(el)
			if err != nil {
				return nil, err
			}
			parts[idx] = s
		}
		return runtime.Str(strings.Join(parts, sep)), nil
	})
	i.defineNative("contains", 2, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		ok, err := containsValue(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return runtime.Bool(ok), nil
	})
	i.defineNative("indexOf", 2, builtinIndexOf)
	i.defineNative("reverse", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		switch v := args[0].(type) {
		case *runtime.ListValue:
			out := make([]runtime.Value, len(v.Elements))
			for idx, el := range v.Elements {
				out[len(out)-1-idx] = el
			}
			return runtime.NewList(out...), nil
		case runtime.StringValue:
			runes := []rune(v.Val)
			for a, b := 0, len(runes)-1; a < b; a, b = a+1, b-1 {
				runes[a], runes[b] = runes[b], runes[a]
			}
			return runtime.Str(string(runes)), nil
		default:
			return nil, runtime.Errorf(runtime.TypeError, "reverse() needs a list or text, got %s", runtime.TypeName(args[0]))
		}
	})
	i.defineNative("sort", 1, i.builtinSort)
	i.defineNative("map", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		items, fn, err := collectionAndCallback("map", args)
		if err != nil {
			return nil, err
		}
		out := make([]runtime.Value, 0, len(items))
		for _, item := range items {
			v, err := ctx.Call(fn, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return runtime.NewList(out...), nil
	})
	i.defineNative("filter", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		items, fn, err := collectionAndCallback("filter", args)
		if err != nil {
			return nil, err
		}
		var out []runtime.Value
		for _, item := range items {
			keep, err := ctx.Call(fn, item)
			if err != nil {
				return nil, err
			}
			if runtime.Truthy(keep) {
				out = append(out, item)
			}
		}
		return runtime.NewList(out...), nil
	})
	i.defineNative("reduce", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		items, fn, err := collectionAndCallback("reduce", args)
		if err != nil {
			return nil, err
		}
		var acc runtime.Value
		if len(args) > 2 {
			acc = args[2]
		} else {
			if len(items) == 0 {
				return nil, runtime.Errorf(runtime.TypeError, "reduce() of an empty list needs an initial value")
			}
			acc, items = items[0], items[1:]
		}
		for _, item := range items {
			if acc, err = ctx.Call(fn, acc, item); err != nil {
				return nil, err
			}
		}
		return acc, nil
	})
	i.defineNative("find", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		items, fn, err := collectionAndCallback("find", args)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			hit, err := ctx.Call(fn, item)
			if err != nil {
				return nil, err
			}
			if runtime.Truthy(hit) {
				return item, nil
			}
		}
		return runtime.None, nil
	})
	i.defineNative("every", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return quantify(ctx, "every", args, false)
	})
	i.defineNative("some", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return quantify(ctx, "some", args, true)
	})
	i.defineNative("sum", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		items, err := numberItems("sum", args)
		if err != nil {
			return nil, err
		}
		total := 0.0
		for _, n := range items {
			total += n
		}
		return runtime.Num(total), nil
	})
	i.defineNative("min", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return extremum("min", args, -1)
	})
	i.defineNative("max", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return extremum("max", args, 1)
	})
}

// argFields accepts a map or an instance's fields.
func argFields(name string, v runtime.Value) (*runtime.MapValue, error) {
	if m, ok := destructurableFields(v); ok {
		return m, nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "%s() needs a map, got %s", name, runtime.TypeName(v))
}

// iterableItems snapshots a list, text (characters) or generator.
func iterableItems(name string, v runtime.Value) ([]runtime.Value, error) {
	switch val := v.(type) {
	case *runtime.ListValue:
		return append([]runtime.Value(nil), val.Elements...), nil
	case runtime.StringValue:
		var out []runtime.Value
		for _, r := range val.Val {
			out = append(out, runtime.Str(string(r)))
		}
		return out, nil
	case *runtime.GeneratorValue:
		return drainGenerator(val)
	default:
		return nil, runtime.Errorf(runtime.TypeError, "%s() needs a list, got %s", name, runtime.TypeName(v))
	}
}

// collectionAndCallback accepts `f(list, fn)` and `f(fn, list)` so both the
// call form and the pipeline form `xs -! map(fn)` work.
func collectionAndCallback(name string, args []runtime.Value) ([]runtime.Value, runtime.Value, error) {
	collection, fn := args[0], args[1]
	if runtime.IsCallable(collection) && !runtime.IsCallable(fn) {
		collection, fn = fn, collection
	}
	if !runtime.IsCallable(fn) {
		return nil, nil, runtime.Errorf(runtime.TypeError, "%s() needs a conduit, got %s", name, runtime.TypeName(fn))
	}
	items, err := iterableItems(name, collection)
	if err != nil {
		return nil, nil, err
	}
	return items, fn, nil
}

func quantify(ctx *runtime.NativeCallContext, name string, args []runtime.Value, want bool) (runtime.Value, error) {
	items, fn, err := collectionAndCallback(name, args)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		v, err := ctx.Call(fn, item)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(v) == want {
			return runtime.Bool(want), nil
		}
	}
	return runtime.Bool(!want), nil
}

// numberItems reads a single list argument or the varargs as numbers.
func numberItems(name string, args []runtime.Value) ([]float64, error) {
	items := args
	if len(args) == 1 {
		if list, ok := args[0].(*runtime.ListValue); ok {
			items = list.Elements
		}
	}
	out := make([]float64, len(items))
	for idx, item := range items {
		n, ok := item.(runtime.NumberValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError, "%s() needs numbers, got %s", name, runtime.TypeName(item))
		}
		out[idx] = n.Val
	}
	return out, nil
}

func extremum(name string, args []runtime.Value, sign int) (runtime.Value, error) {
	items := args
	if len(args) == 1 {
		if list, ok := args[0].(*runtime.ListValue); ok {
			items = list.Elements
		}
	}
	if len(items) == 0 {
		return runtime.None, nil
	}
	best := items[0]
	for _, item := range items[1:] {
		cmp, err := orderValues(item, best)
		if err != nil {
			return nil, runtime.Errorf(runtime.TypeError, "%s(): %s", name, err.(*RuntimeError).Message)
		}
		if cmp*sign > 0 {
			best = item
		}
	}
	return best, nil
}

func sliceBounds(name string, args []runtime.Value, length int) (int, int, error) {
	start, err := argInt(name, args, 1)
	if err != nil {
		return 0, 0, err
	}
	end := length
	if len(args) > 2 {
		if _, isNone := args[2].(runtime.NoneValue); !isNone {
			if end, err = argInt(name, args, 2); err != nil {
				return 0, 0, err
			}
		}
	}
	clamp := func(n int) int {
		if n < 0 {
			n += length
		}
		return int(math.Max(0, math.Min(float64(n), float64(length))))
	}
	start, end = clamp(start), clamp(end)
	if end < start {
		end = start
	}
	return start, end, nil
}

func builtinSlice(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ListValue:
		start, end, err := sliceBounds("slice", args, len(v.Elements))
		if err != nil {
			return nil, err
		}
		return runtime.NewList(append([]runtime.Value(nil), v.Elements[start:end]...)...), nil
	case runtime.StringValue:
		runes := []rune(v.Val)
		start, end, err := sliceBounds("slice", args, len(runes))
		if err != nil {
			return nil, err
		}
		return runtime.Str(string(runes[start:end])), nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "slice() needs a list or text, got %s", runtime.TypeName(args[0]))
	}
}

func builtinIndexOf(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ListValue:
		for idx, el := range v.Elements {
			if runtime.Equal(el, args[1]) {
				return runtime.Num(float64(idx)), nil
			}
		}
		return runtime.Num(-1), nil
	case runtime.StringValue:
		needle, err := argText("indexOf", args, 1)
		if err != nil {
			return nil, err
		}
		pos := strings.Index(v.Val, needle)
		if pos < 0 {
			return runtime.Num(-1), nil
		}
		return runtime.Num(float64(runeLen(v.Val[:pos]))), nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "indexOf() needs a list or text, got %s", runtime.TypeName(args[0]))
	}
}

// builtinSort returns a sorted copy. An optional conduit of two parameters is
// a comparator returning a number; any other conduit computes a sort key.
func (i *Interpreter) builtinSort(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	list, err := argList("sort", args, 0)
	if err != nil {
		return nil, err
	}
	items := append([]runtime.Value(nil), list.Elements...)
	var fn runtime.Value
	if len(args) > 1 {
		fn = args[1]
	}
	comparator := false
	if user, ok := fn.(*runtime.FunctionValue); ok && len(user.Params) >= 2 {
		comparator = true
	}
	keys := items
	if fn != nil && !comparator {
		keys = make([]runtime.Value, len(items))
		for idx, item := range items {
			if keys[idx], err = ctx.Call(fn, item); err != nil {
				return nil, err
			}
		}
	}
	order := make([]int, len(items))
	for idx := range order {
		order[idx] = idx
	}
	var sortErr error
	sort.SliceStable(order, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		if comparator {
			res, err := ctx.Call(fn, items[order[a]], items[order[b]])
			if err != nil {
				sortErr = err
				return false
			}
			n, ok := res.(runtime.NumberValue)
			if !ok {
				sortErr = runtime.Errorf(runtime.TypeError, "sort() comparator must give a number, got %s", runtime.TypeName(res))
				return false
			}
			return n.Val < 0
		}
		cmp, err := orderValues(keys[order[a]], keys[order[b]])
		if err != nil {
			sortErr = err
			return false
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	out := make([]runtime.Value, len(items))
	for idx, pos := range order {
		out[idx] = items[pos]
	}
	return runtime.NewList(out...), nil
}
