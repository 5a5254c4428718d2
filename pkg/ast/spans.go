package ast

import "reflect"

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// JoinSpans returns the span covering both a and b. Zero spans are ignored.
func JoinSpans(a, b Span) Span {
	if a == (Span{}) {
		return b
	}
	if b == (Span{}) {
		return a
	}
	out := a
	if before(b.Start, a.Start) {
		out.Start = b.Start
	}
	if before(a.End, b.End) {
		out.End = b.End
	}
	return out
}

func before(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// ClearSpans zeroes span metadata throughout node so trees built by hand and
// trees produced by the parser compare equal.
func ClearSpans[T Node](node T) T {
	clearSpans(reflect.ValueOf(node), make(map[uintptr]struct{}))
	return node
}

func clearSpans(val reflect.Value, visited map[uintptr]struct{}) {
	if !val.IsValid() {
		return
	}
	switch val.Kind() {
	case reflect.Pointer:
		if val.IsNil() {
			return
		}
		if _, ok := visited[val.Pointer()]; ok {
			return
		}
		visited[val.Pointer()] = struct{}{}
		if node, ok := val.Interface().(Node); ok {
			SetSpan(node, Span{})
		}
		clearSpans(val.Elem(), visited)
	case reflect.Interface:
		if !val.IsNil() {
			clearSpans(val.Elem(), visited)
		}
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			clearSpans(val.Field(i), visited)
		}
	case reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			clearSpans(val.Index(i), visited)
		}
	}
}
