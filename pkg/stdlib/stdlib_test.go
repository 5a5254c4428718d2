package stdlib

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/interpreter"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/parser"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func runWithStdlib(t *testing.T, source string) (string, error) {
	t.Helper()
	program, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var out bytes.Buffer
	interp := interpreter.New(interpreter.WithOutput(&out))
	Register(interp)
	_, err = interp.Run(context.Background(), program)
	return out.String(), err
}

func expectLines(t *testing.T, source string, want ...string) {
	t.Helper()
	out, err := runWithStdlib(t, source)
	if err != nil {
		t.Fatalf("run failed: %v\noutput:\n%s", err, out)
	}
	got := strings.TrimSuffix(out, "\n")
	if got != strings.Join(want, "\n") {
		t.Fatalf("expected output %q, got %q", strings.Join(want, "\n"), got)
	}
}

func TestMathModule(t *testing.T) {
	expectLines(t, `grab math
print(math.sqrt(16), math.pow(2, 10), math.abs(-4))
print(math.floor(2.7), math.ceil(2.1), math.round(3.14159, 2), math.round(2.5))
print(math.min(~3, 1, 2!), math.max(3, 7), math.sin(0), math.cos(0))
print(math.round(math.PI, 4), math.round(math.E, 3))
`,
		"4 1024 4",
		"2 3 3.14 3",
		"1 7 0 1",
		"3.1416 2.718",
	)
}

func TestGrabSingleExportWithAlias(t *testing.T) {
	expectLines(t, `grab math.sqrt as root
grab math.*
print(root(81), max(1, 2))
`, "9 2")
}

func TestMathErrors(t *testing.T) {
	_, err := runWithStdlib(t, "grab math\nmath.sqrt(-1)\n")
	var rerr *runtime.RuntimeError
	if !asRuntimeError(err, &rerr) || rerr.Kind != runtime.TypeError {
		t.Fatalf("expected TypeError for negative sqrt, got %v", err)
	}
	_, err = runWithStdlib(t, "grab math\nmath.pow(2)\n")
	if !asRuntimeError(err, &rerr) || !strings.Contains(rerr.Message, "pow expects at least 2 arguments") {
		t.Fatalf("expected arity error, got %v", err)
	}
	_, err = runWithStdlib(t, "grab math\nmath.max(~!)\n")
	if !asRuntimeError(err, &rerr) || rerr.Kind != runtime.TypeError {
		t.Fatalf("expected TypeError for empty max, got %v", err)
	}
}

func TestTextModule(t *testing.T) {
	expectLines(t, `grab text
print(text.upper("rift"), text.lower("RIFT"))
print(text.split("a b  c"), text.split("x;y", ";"))
print(text.join(~1, "a", yes, none!, "-"), text.join(~~1, 2!, @ k: "v" #!, " "))
print("[" + text.pad("ab", 4) + "]", text.pad("7", -3, "0"), text.pad("long", 2))
`,
		"RIFT rift",
		`["a", "b", "c"] ["x", "y"]`,
		`1-a-yes-none [1, 2] {k: "v"}`,
		"[ab  ] 007 long",
	)
}

func TestTextJoinRequiresList(t *testing.T) {
	_, err := runWithStdlib(t, "grab text\ntext.join(\"abc\")\n")
	var rerr *runtime.RuntimeError
	if !asRuntimeError(err, &rerr) || rerr.Kind != runtime.TypeError {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestModulesStayOutOfGlobals(t *testing.T) {
	_, err := runWithStdlib(t, "math.sqrt(4)\n")
	var rerr *runtime.RuntimeError
	if !asRuntimeError(err, &rerr) || rerr.Kind != runtime.NameError {
		t.Fatalf("expected NameError without grab, got %v", err)
	}
}

func asRuntimeError(err error, target **runtime.RuntimeError) bool {
	rerr, ok := err.(*runtime.RuntimeError)
	if ok {
		*target = rerr
	}
	return ok
}
