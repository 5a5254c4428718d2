package runtime

import "math"

// TypeName returns the annotation-style name of v. Instances report their class.
func TypeName(v Value) string {
	if v == nil {
		return "none"
	}
	if inst, ok := v.(*InstanceValue); ok && inst.Class != nil {
		return inst.Class.Name
	}
	return v.Kind().String()
}

// TypeMatches reports whether v satisfies the annotation hint. Builtin names
// match by kind; any other name matches instances of that class or a subclass.
func TypeMatches(hint string, v Value) bool {
	switch hint {
	case "", "any":
		return true
	case "num", "text", "bool", "none", "list", "map", "conduit", "task", "generator", "namespace":
		if hint == "conduit" {
			return IsCallable(v)
		}
		return v.Kind().String() == hint
	case "class":
		return v.Kind() == KindClass
	}
	inst, ok := v.(*InstanceValue)
	return ok && inst.Class != nil && inst.Class.IsA(hint)
}

// Truthy implements RIFT truthiness: no, none, 0, "", ~! and @# are falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case NoneValue:
		return false
	case BoolValue:
		return val.Val
	case NumberValue:
		return val.Val != 0 && !math.IsNaN(val.Val)
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return len(val.Elements) > 0
	case *MapValue:
		return val.Len() > 0
	default:
		return true
	}
}

// Equal is deep structural equality for lists and maps (key order ignored)
// and identity for instances, classes and other reference values.
func Equal(a, b Value) bool {
	switch left := a.(type) {
	case NumberValue:
		right, ok := b.(NumberValue)
		return ok && left.Val == right.Val
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case *ListValue:
		right, ok := b.(*ListValue)
		if !ok {
			return false
		}
		if left == right {
			return true
		}
		if len(left.Elements) != len(right.Elements) {
			return false
		}
		for idx := range left.Elements {
			if !Equal(left.Elements[idx], right.Elements[idx]) {
				return false
			}
		}
		return true
	case *MapValue:
		right, ok := b.(*MapValue)
		if !ok {
			return false
		}
		if left == right {
			return true
		}
		if left.Len() != right.Len() {
			return false
		}
		equal := true
		left.Each(func(key string, lv Value) bool {
			rv, ok := right.Get(key)
			if !ok || !Equal(lv, rv) {
				equal = false
			}
			return equal
		})
		return equal
	case NativeFunctionValue:
		right, ok := b.(NativeFunctionValue)
		return ok && left.Name == right.Name
	case BoundMethodValue:
		right, ok := b.(BoundMethodValue)
		return ok && left.Method == right.Method && Equal(left.Receiver, right.Receiver)
	case NativeBoundMethodValue:
		right, ok := b.(NativeBoundMethodValue)
		return ok && left.Method.Name == right.Method.Name && Equal(left.Receiver, right.Receiver)
	default:
		return a == b
	}
}
