package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func transform(name string, fn func(string) string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := needArgs(name, args, 1); err != nil {
			return nil, err
		}
		s, err := text(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Str(fn(s)), nil
	}
}

// RegisterText installs the `text` module.
func RegisterText(r Registrar) {
	r.RegisterBuiltin("text.upper", transform("upper", strings.ToUpper))
	r.RegisterBuiltin("text.lower", transform("lower", strings.ToLower))
	r.RegisterBuiltin("text.split", textSplit)
	r.RegisterBuiltin("text.join", textJoin)
	r.RegisterBuiltin("text.pad", textPad)
}

func textSplit(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := needArgs("split", args, 1); err != nil {
		return nil, err
	}
	s, err := text("split", args, 0)
	if err != nil {
		return nil, err
	}
	var parts []string
	if len(args) < 2 {
		parts = strings.Fields(s)
	} else {
		sep, err := text("split", args, 1)
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
}

// textJoin renders non-text elements through the global `str` builtin so the
// output matches what print would show.
func textJoin(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := needArgs("join", args, 1); err != nil {
		return nil, err
	}
	list, ok := args[0].(*runtime.ListValue)
	if !ok {
		return nil, runtime.Errorf(runtime.TypeError, "join() argument 1 must be list, got %s", runtime.TypeName(args[0]))
	}
	sep := ""
	if len(args) > 1 {
		s, err := text("join", args, 1)
		if err != nil {
			return nil, err
		}
		sep = s
	}
	parts := make([]string, len(list.Elements))
	for idx, el := range list.Elements {
		if s, ok := el.(runtime.StringValue); ok {
			parts[idx] = s.Val
			continue
		}
		rendered, err := stringify(ctx, el)
		if err != nil {
			return nil, err
		}
		parts[idx] = rendered
	}
	return runtime.Str(strings.Join(parts, sep)), nil
}

func stringify(ctx *runtime.NativeCallContext, v runtime.Value) (string, error) {
	if ctx == nil || ctx.Env == nil {
		return "", runtime.Errorf(runtime.TypeError, "join() cannot render %s", runtime.TypeName(v))
	}
	str, err := ctx.Env.Get("str")
	if err != nil {
		return "", err
	}
	out, err := ctx.Call(str, v)
	if err != nil {
		return "", err
	}
	s, ok := out.(runtime.StringValue)
	if !ok {
		return "", runtime.Errorf(runtime.TypeError, "str() returned %s", runtime.TypeName(out))
	}
	return s.Val, nil
}

// textPad pads to width runes: on the right by default, on the left when
// width is negative.
func textPad(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := needArgs("pad", args, 2); err != nil {
		return nil, err
	}
	s, err := text("pad", args, 0)
	if err != nil {
		return nil, err
	}
	width, err := number("pad", args, 1)
	if err != nil {
		return nil, err
	}
	fill := " "
	if len(args) > 2 {
		if fill, err = text("pad", args, 2); err != nil {
			return nil, err
		}
		if fill == "" {
			return nil, runtime.Errorf(runtime.TypeError, "pad() fill must not be empty")
		}
	}
	left := width < 0
	if left {
		width = -width
	}
	missing := int(width) - utf8.RuneCountInString(s)
	if missing <= 0 {
		return runtime.Str(s), nil
	}
	padding := []rune(strings.Repeat(fill, missing))[:missing]
	if left {
		return runtime.Str(string(padding) + s), nil
	}
	return runtime.Str(s + string(padding)), nil
}
