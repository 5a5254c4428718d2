package interpreter

import (
	"bytes"
	"context"
	"errors"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/parser"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, source)
	}
	return program
}

// runSource evaluates source in a fresh interpreter and returns the program
// value together with everything printed.
func runSource(t *testing.T, source string, opts ...Option) (runtime.Value, string) {
	t.Helper()
	val, out, err := evalSource(t, source, opts...)
	if err != nil {
		t.Fatalf("evaluation failed: %v\noutput so far:\n%s", err, out)
	}
	return val, out
}

func evalSource(t *testing.T, source string, opts ...Option) (runtime.Value, string, error) {
	t.Helper()
	program := mustParse(t, source)
	var buf bytes.Buffer
	interp := New(append([]Option{WithOutput(&buf)}, opts...)...)
	val, err := interp.Run(context.Background(), program)
	return val, buf.String(), err
}

// expectRuntimeError runs source and requires it to fail with the given kind.
func expectRuntimeError(t *testing.T, source string, kind runtime.ErrorKind) *RuntimeError {
	t.Helper()
	_, out, err := evalSource(t, source)
	if err == nil {
		t.Fatalf("expected %s, program succeeded with output:\n%s", kind, out)
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	if rerr.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, rerr.Kind, rerr.Message)
	}
	return rerr
}

func expectOutput(t *testing.T, source string, want ...string) {
	t.Helper()
	_, out := runSource(t, source)
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if out == "" {
		got = nil
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines %q, got %d lines %q", len(want), want, len(got), got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("line %d: expected %q, got %q\nfull output:\n%s", idx+1, want[idx], got[idx], out)
		}
	}
}

func expectNumber(t *testing.T, val runtime.Value, want float64) {
	t.Helper()
	num, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("expected number %v, got %#v", want, val)
	}
	if num.Val != want {
		t.Fatalf("expected %v, got %v", want, num.Val)
	}
}

func expectText(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	str, ok := val.(runtime.StringValue)
	if !ok {
		t.Fatalf("expected text %q, got %#v", want, val)
	}
	if str.Val != want {
		t.Fatalf("expected %q, got %q", want, str.Val)
	}
}

// memoryLoader serves modules from an in-memory source table keyed by the
// dotted path or quoted source written in the grab.
type memoryLoader struct {
	sources map[string]string
	loads   map[string]int
}

func newMemoryLoader(sources map[string]string) *memoryLoader {
	return &memoryLoader{sources: sources, loads: make(map[string]int)}
}

func (l *memoryLoader) LoadModule(req ModuleRequest) (*LoadedModule, error) {
	name := req.Name()
	src, ok := l.sources[name]
	if !ok {
		return nil, ErrModuleNotFound
	}
	program, err := parser.ParseSource(src)
	if err != nil {
		return nil, err
	}
	l.loads[name]++
	return &LoadedModule{ID: "mem:" + name, Path: name, Program: program}, nil
}

// settledGoroutines waits up to a second for the goroutine count to fall to
// limit and returns the last count observed.
func settledGoroutines(limit int) int {
	n := goruntime.NumGoroutine()
	for tries := 0; n > limit && tries < 100; tries++ {
		time.Sleep(10 * time.Millisecond)
		n = goruntime.NumGoroutine()
	}
	return n
}

// runRepeatedly runs program count times in fresh interpreters and requires
// each run to print want.
func runRepeatedly(t *testing.T, program *ast.Program, count int, want string) {
	t.Helper()
	for n := 0; n < count; n++ {
		var buf bytes.Buffer
		interp := New(WithOutput(&buf))
		if _, err := interp.Run(context.Background(), program); err != nil {
			t.Fatalf("run %d: %v", n, err)
		}
		if buf.String() != want {
			t.Fatalf("run %d: expected output %q, got %q", n, want, buf.String())
		}
	}
}
