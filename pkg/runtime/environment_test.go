package runtime

import (
	"errors"
	"reflect"
	"testing"
)

func runtimeErrorKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	return rerr.Kind
}

func TestEnvironmentLetIsImmutable(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("x", Num(1), MutabilityLet, ""); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	err := env.Assign("x", Num(2))
	if kind := runtimeErrorKind(t, err); kind != ImmutableBindingError {
		t.Fatalf("expected ImmutableBindingError, got %s", kind)
	}
	if v, _ := env.Get("x"); !Equal(v, Num(1)) {
		t.Fatalf("binding changed after failed assignment: %#v", v)
	}
}

func TestEnvironmentMutVisibleFromNestedScopes(t *testing.T) {
	global := NewEnvironment(nil)
	if err := global.Define("count", Num(0), MutabilityMut, ""); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	inner := global.Extend().Extend()
	if err := inner.Assign("count", Num(3)); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	v, err := global.Get("count")
	if err != nil || !Equal(v, Num(3)) {
		t.Fatalf("expected 3 in outer scope, got %#v (%v)", v, err)
	}
	if inner.HasLocal("count") {
		t.Fatalf("assignment must not create a local binding")
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.DefineConst("name", Str("outer"))
	inner := outer.Extend()
	if err := inner.Define("name", Str("inner"), MutabilityLet, ""); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	if v, _ := inner.Get("name"); !Equal(v, Str("inner")) {
		t.Fatalf("expected inner shadow, got %#v", v)
	}
	if v, _ := outer.Get("name"); !Equal(v, Str("outer")) {
		t.Fatalf("expected outer binding untouched, got %#v", v)
	}
}

func TestEnvironmentUndefinedNames(t *testing.T) {
	env := NewEnvironment(nil)
	if _, err := env.Get("missing"); runtimeErrorKind(t, err) != NameError {
		t.Fatalf("expected NameError from Get")
	}
	if err := env.Assign("missing", Num(1)); runtimeErrorKind(t, err) != NameError {
		t.Fatalf("expected NameError from Assign")
	}
}

func TestEnvironmentTypedBindings(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("n", Str("x"), MutabilityMut, "num"); runtimeErrorKind(t, err) != TypeError {
		t.Fatalf("expected TypeError for mismatched declaration")
	}
	if err := env.Define("n", Num(1), MutabilityMut, "num"); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	if err := env.Assign("n", Str("oops")); runtimeErrorKind(t, err) != TypeError {
		t.Fatalf("expected TypeError for mismatched assignment")
	}
	if err := env.Assign("n", Num(2)); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
}

func TestEnvironmentKeysSorted(t *testing.T) {
	env := NewEnvironment(nil)
	env.DefineConst("b", Num(1))
	env.DefineConst("a", Num(2))
	if got := env.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}
