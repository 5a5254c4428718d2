// Package stdlib holds builtin modules that plug into the interpreter through
// its registration interface. Each module lives in its own namespace and is
// reached from RIFT code with `grab <module>`.
package stdlib

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/interpreter"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// Registrar is the subset of the interpreter used to install modules.
type Registrar interface {
	RegisterBuiltin(qualifiedName string, fn runtime.NativeFunc)
	RegisterConstant(qualifiedName string, value runtime.Value)
}

var _ Registrar = (*interpreter.Interpreter)(nil)

// Register installs every bundled module.
func Register(r Registrar) {
	RegisterMath(r)
	RegisterText(r)
}

func arg(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) {
		return args[idx]
	}
	return runtime.None
}

func needArgs(name string, args []runtime.Value, n int) error {
	if len(args) < n {
		return runtime.Errorf(runtime.TypeError, "%s expects at least %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func number(name string, args []runtime.Value, idx int) (float64, error) {
	n, ok := arg(args, idx).(runtime.NumberValue)
	if !ok {
		return 0, runtime.Errorf(runtime.TypeError, "%s() argument %d must be num, got %s", name, idx+1, runtime.TypeName(arg(args, idx)))
	}
	return n.Val, nil
}

func text(name string, args []runtime.Value, idx int) (string, error) {
	s, ok := arg(args, idx).(runtime.StringValue)
	if !ok {
		return "", runtime.Errorf(runtime.TypeError, "%s() argument %d must be text, got %s", name, idx+1, runtime.TypeName(arg(args, idx)))
	}
	return s.Val, nil
}
