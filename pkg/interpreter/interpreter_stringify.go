package interpreter

import (
	"math"
	"strconv"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// stringifyValue renders val for print, templates and str(). Instances whose
// class defines a zero-argument `toText` method render through it.
func (i *Interpreter) stringifyValue(val runtime.Value) (string, error) {
	if inst, ok := val.(*runtime.InstanceValue); ok {
		if method, ok := inst.Class.FindMethod("toText"); ok {
			result, err := i.CallValue(runtime.BoundMethodValue{Receiver: inst, Method: method}, nil)
			if err != nil {
				return "", err
			}
			if s, ok := result.(runtime.StringValue); ok {
				return s.Val, nil
			}
			return valueToString(result), nil
		}
	}
	return valueToString(val), nil
}

// valueToString renders text unquoted at the top level; nested text is quoted.
func valueToString(val runtime.Value) string {
	if s, ok := val.(runtime.StringValue); ok {
		return s.Val
	}
	var sb strings.Builder
	writeValue(&sb, val, map[any]bool{})
	return sb.String()
}

// Inspect renders val the way the REPL echoes results: text is quoted,
// everything else matches print.
func (i *Interpreter) Inspect(val runtime.Value) (string, error) {
	if _, ok := val.(runtime.StringValue); ok {
		return inspectValue(val), nil
	}
	return i.stringifyValue(val)
}

// inspectValue renders val with text quoted, for diagnostics.
func inspectValue(val runtime.Value) string {
	var sb strings.Builder
	writeValue(&sb, val, map[any]bool{})
	return sb.String()
}

func writeValue(sb *strings.Builder, val runtime.Value, seen map[any]bool) {
	switch v := val.(type) {
	case nil:
		sb.WriteString("none")
	case runtime.StringValue:
		sb.WriteString(strconv.Quote(v.Val))
	case runtime.NumberValue:
		sb.WriteString(formatNumber(v.Val))
	case runtime.BoolValue:
		if v.Val {
			sb.WriteString("yes")
		} else {
			sb.WriteString("no")
		}
	case runtime.NoneValue:
		sb.WriteString("none")
	case *runtime.ListValue:
		if seen[v] {
			sb.WriteString("[...]")
			return
		}
		seen[v] = true
		sb.WriteByte('[')
		for idx, el := range v.Elements {
			if idx > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, el, seen)
		}
		sb.WriteByte(']')
		delete(seen, v)
	case *runtime.MapValue:
		if seen[v] {
			sb.WriteString("{...}")
			return
		}
		seen[v] = true
		writeFields(sb, v, seen)
		delete(seen, v)
	case *runtime.InstanceValue:
		if seen[v] {
			sb.WriteString("<" + v.Class.Name + " ...>")
			return
		}
		seen[v] = true
		sb.WriteString("<" + v.Class.Name + " ")
		writeFields(sb, v.Fields, seen)
		sb.WriteByte('>')
		delete(seen, v)
	case *runtime.FunctionValue:
		sb.WriteString("<conduit " + v.Name + ">")
	case runtime.NativeFunctionValue:
		sb.WriteString("<native conduit " + v.Name + ">")
	case runtime.BoundMethodValue:
		sb.WriteString("<method " + v.Method.Name + ">")
	case runtime.NativeBoundMethodValue:
		sb.WriteString("<method " + v.Method.Name + ">")
	case *runtime.ClassValue:
		sb.WriteString("<class " + v.Name + ">")
	case *runtime.TaskValue:
		sb.WriteString("<task " + v.Name + " " + v.State().String() + ">")
	case *runtime.NamespaceValue:
		sb.WriteString("<namespace " + v.Name + ">")
	case *runtime.GeneratorValue:
		sb.WriteString("<generator " + v.Name + ">")
	default:
		sb.WriteString("<" + val.Kind().String() + ">")
	}
}

func writeFields(sb *strings.Builder, m *runtime.MapValue, seen map[any]bool) {
	sb.WriteByte('{')
	first := true
	m.Each(func(key string, value runtime.Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(key)
		sb.WriteString(": ")
		writeValue(sb, value, seen)
		return true
	})
	sb.WriteByte('}')
}

// formatNumber prints integral values without a fractional part.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', 0, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
