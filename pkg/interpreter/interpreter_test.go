package interpreter

import (
	"context"
	"strings"
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func TestEvaluateLiteralsAndArithmetic(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment()

	val, err := interp.evaluateExpression(ast.Bin("+", ast.Num(1), ast.Bin("*", ast.Num(2), ast.Num(3))), env)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	expectNumber(t, val, 7)

	val, err = interp.evaluateExpression(ast.Bin("**", ast.Num(2), ast.Bin("**", ast.Num(3), ast.Num(2))), env)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	expectNumber(t, val, 512)

	val, err = interp.evaluateExpression(ast.Bin("*", ast.Str("ab"), ast.Num(3)), env)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	expectText(t, val, "ababab")
}

func TestArithmeticOutput(t *testing.T) {
	expectOutput(t, `print(1 + 2 * 3)
print(10 / 4)
print(7 % 3)
print(-2 ** 2)
print("n=" + 5)
print(~1, 2! + ~3!)
`, "7", "2.5", "1", "4", "n=5", "[1, 2, 3]")
}

func TestDivisionByZeroIsTypeError(t *testing.T) {
	expectRuntimeError(t, "let x = 1 / 0", runtime.TypeError)
}

func TestLogicalOperatorsReturnDecidingOperand(t *testing.T) {
	val, _ := runSource(t, `none or "fallback"`)
	expectText(t, val, "fallback")
	val, _ = runSource(t, `0 and 5`)
	expectNumber(t, val, 0)
	val, _ = runSource(t, `none ?? 3`)
	expectNumber(t, val, 3)
	val, _ = runSource(t, `no ?? 3`)
	if b, ok := val.(runtime.BoolValue); !ok || b.Val {
		t.Fatalf("?? must only replace none, got %#v", val)
	}
}

func TestChainedComparison(t *testing.T) {
	expectOutput(t, `let x = 5
print(1 < x <= 10)
print(1 < x < 3)
print(2 in ~1, 2, 3!)
print("ell" in "hello")
`, "yes", "no", "yes", "yes")
}

func TestLetBindingIsImmutable(t *testing.T) {
	expectRuntimeError(t, "let x = 1\nx = 2\n", runtime.ImmutableBindingError)
	expectRuntimeError(t, "const x = 1\nx += 2\n", runtime.ImmutableBindingError)
}

func TestMutBindingAndTypeHint(t *testing.T) {
	val, _ := runSource(t, "mut n: num = 1\nn += 41\nn\n")
	expectNumber(t, val, 42)
	expectRuntimeError(t, "mut n: num = 1\nn = \"two\"\n", runtime.TypeError)
	expectRuntimeError(t, "let s: text = 3\n", runtime.TypeError)
}

func TestUndefinedVariableReportsPosition(t *testing.T) {
	rerr := expectRuntimeError(t, "let a = 1\nlet b = a + missing\n", runtime.NameError)
	if rerr.Pos.Line != 2 || rerr.Pos.Column != 13 {
		t.Fatalf("expected error at 2:13, got %d:%d", rerr.Pos.Line, rerr.Pos.Column)
	}
	if !strings.Contains(rerr.Message, "missing") {
		t.Fatalf("expected message to name the variable, got %q", rerr.Message)
	}
}

func TestBlockScopesShadowing(t *testing.T) {
	expectOutput(t, `let x = 1
if yes @
    let x = 2
    print(x)
#
print(x)
`, "2", "1")
}

func TestClosureCounter(t *testing.T) {
	expectOutput(t, `conduit makeCounter() @
    mut count = 0
    give () =! @
        count += 1
        give count
    #
#
let a = makeCounter()
let b = makeCounter()
a()
a()
print(a())
print(b())
`, "3", "1")
}

func TestConduitParameters(t *testing.T) {
	expectOutput(t, `conduit greet(name, greeting = "Hello") @
    give `+"`$@ greeting #, $@ name #!`"+`
#
conduit total(first, ...rest) @
    mut sum = first
    repeat n in rest @ sum += n #
    give sum
#
conduit show(a, b) @ give `+"`$@ a # $@ b #`"+` #
print(greet("Ada"))
print(greet("Bob", "Hi"))
print(total(1, 2, 3, 4))
print(show(1))
print(show(1, 2, 3))
`, "Hello, Ada!", "Hi, Bob!", "10", "1 none", "1 2")
}

func TestConduitLastValueIsResult(t *testing.T) {
	val, _ := runSource(t, "conduit f(x) @\n    let y = x * 2\n    y + 1\n#\nf(4)\n")
	expectNumber(t, val, 9)
}

func TestReturnTypeIsChecked(t *testing.T) {
	val, _ := runSource(t, "conduit f(): num @ give 1 #\nf()\n")
	expectNumber(t, val, 1)
	expectRuntimeError(t, "conduit f(): num @ give \"x\" #\nf()\n", runtime.TypeError)
	expectRuntimeError(t, "conduit f(n: num) @ give n #\nf(\"x\")\n", runtime.TypeError)
}

func TestRecursionDepthLimit(t *testing.T) {
	_, _, err := evalSource(t, "conduit f(n) @ give f(n + 1) #\nf(0)\n", WithMaxCallDepth(50))
	if err == nil || !strings.Contains(err.Error(), "maximum call depth 50") {
		t.Fatalf("expected call depth error, got %v", err)
	}
	val, _ := runSource(t, `conduit fib(n) @
    if n < 2 @ give n #
    give fib(n - 1) + fib(n - 2)
#
fib(15)
`)
	expectNumber(t, val, 610)
}

func TestIfElseChainValue(t *testing.T) {
	src := `conduit size(n) @
    give if n > 100 @ "big" # else if n > 10 @ "medium" # else @ "small" #
#
print(size(500))
print(size(50))
print(size(5))
print(if no @ 1 #)
`
	expectOutput(t, src, "big", "medium", "small", "none")
}

func TestWhileLoopWithStopAndNext(t *testing.T) {
	expectOutput(t, `mut i = 0
mut odd = ~!
while yes @
    i += 1
    if i > 9 @ stop #
    if i % 2 == 0 @ next #
    odd = odd + ~i!
#
print(odd)
`, "[1, 3, 5, 7, 9]")
}

func TestRepeatOverCollections(t *testing.T) {
	expectOutput(t, `repeat c in "héllo" @ print(c) #
repeat (idx, ~k, v!) in @ a: 1, b: 2 # @ print(idx, k, v) #
repeat n in 3 to 1 @ print(n) #
`, "h", "é", "l", "l", "o", "0 a 1", "1 b 2", "3", "2", "1")
}

func TestRepeatSnapshotsList(t *testing.T) {
	expectOutput(t, `let xs = ~1, 2!
repeat x in xs @
    push(xs, x * 10)
#
print(xs)
`, "[1, 2, 10, 20]")
}

func TestStopOutsideLoopIsTypeError(t *testing.T) {
	expectRuntimeError(t, "stop\n", runtime.TypeError)
	expectRuntimeError(t, "conduit f() @ next #\nf()\n", runtime.TypeError)
}

func TestTopLevelGiveEndsProgram(t *testing.T) {
	val, out := runSource(t, "print(1)\ngive 42\nprint(2)\n")
	expectNumber(t, val, 42)
	if out != "1\n" {
		t.Fatalf("statements after give must not run, got %q", out)
	}
}

func TestRanges(t *testing.T) {
	expectOutput(t, `print(1..4)
print(4..1)
print(1 to 3)
print(range(3))
print(range(1, 10, 4))
`, "[1, 2, 3, 4]", "[4, 3, 2, 1]", "[1, 2, 3]", "[0, 1, 2]", "[1, 5, 9]")
	expectRuntimeError(t, "let r = 1..2.5\n", runtime.TypeError)
}

func TestTemplateStrings(t *testing.T) {
	expectOutput(t, "let user = @ name: \"Ada\", langs: ~\"go\", \"rift\"! #\n"+
		"print(`$@ user.name # knows $@ len(user.langs) # languages: $@ user.langs #`)\n"+
		"print(`nested $@ `inner $@ 1 + 1 #` # done`)\n",
		`Ada knows 2 languages: ["go", "rift"]`,
		"nested inner 2 done",
	)
}

func TestStringifyValues(t *testing.T) {
	expectOutput(t, `print(yes, no, none)
print(@ a: 1, b: ~"x", @ c: no #! #)
print(3.25, 1e21, 0.1 + 0.2)
print(print)
`,
		"yes no none",
		`{a: 1, b: ["x", {c: no}]}`,
		"3.25 1e+21 0.30000000000000004",
		"<native conduit print>",
	)
}

func TestPipelines(t *testing.T) {
	expectOutput(t, `conduit double(x) @ give x * 2 #
conduit add(x, y) @ give x + y #
print(5 -! double -! add(1))
let r = ~1, 2, 3!
    -! map(double)
    -! sum
print(r)
print("rift" -! upper)
`, "11", "12", "RIFT")
}

func TestPipelineIntoNonCallableFails(t *testing.T) {
	expectRuntimeError(t, "let n = 5\n1 -! n\n", runtime.TypeError)
}

func TestListAndMapIndexing(t *testing.T) {
	expectOutput(t, `let xs = ~10, 20, 30!
print(xs~0!, xs~-1!)
let m = @ "full name": "Ada", n: 1 #
print(m~"full name"!, m.n)
mut grid = ~~1, 2!, ~3, 4!!
grid~1!~0! = 9
print(grid)
let nothing = none
print(nothing?~5!)
print(m.length, xs.length, "héllo".length)
`, "10 30", "Ada 1", "[[1, 2], [9, 4]]", "none", "2 3 5")
	expectRuntimeError(t, "let xs = ~1!\nxs~3!\n", runtime.TypeError)
	expectRuntimeError(t, "let m = @ a: 1 #\nm~\"b\"!\n", runtime.NameError)
}

func TestMapLiteralSpreadsAndComputedKeys(t *testing.T) {
	expectOutput(t, `let defaults = @ host: "localhost", port: 80 #
let key = "debug"
let port = 8080
let cfg = @ ...defaults, port, ~key!: yes #
print(cfg)
print(@ ...cfg, host: "example.org" #.host)
`, `{host: "localhost", port: 8080, debug: yes}`, "example.org")
}

func TestSafeNavigation(t *testing.T) {
	expectOutput(t, `let user = @ profile: none #
print(user.profile?.name)
print(user?.profile?.name?.upper())
let u2 = @ profile: @ name: "ada" # #
print(u2?.profile.name)
`, "none", "none", "ada")
	expectRuntimeError(t, "let m = @ a: 1 #\nm.b\n", runtime.NameError)
}

func TestCheckFirstMatchWins(t *testing.T) {
	src := `conduit label(value) @
    give check value @
        0 =! "zero"
        1..9 =! "small"
        n: num when n > 100 =! "huge"
        n: num =! "number"
        ~first, ...rest! =! ` + "`list starting $@ first # with $@ len(rest) # more`" + `
        @ name # =! "named " + name
        _ =! "other"
    #
#
print(label(0))
print(label(5))
print(label(500))
print(label(50))
print(label(~1, 2, 3!))
print(label(@ name: "Ada" #))
print(label("x"))
`
	expectOutput(t, src, "zero", "small", "huge", "number", "list starting 1 with 2 more", "named Ada", "other")
}

func TestCheckClausesOnOneLine(t *testing.T) {
	expectOutput(t, `print(check 5 @ 1..10 =! "a" 5 =! "b" #)
print(check 10 @ 0..10 =! "in" _ =! "out" #)
print(check 11 @ 0..10 =! "in" _ =! "out" #)
`, "a", "in", "out")
}

func TestCheckWithoutMatchFails(t *testing.T) {
	expectRuntimeError(t, "check 3 @\n    1 =! \"one\"\n#\n", runtime.NoMatchError)
}

func TestDestructuringDeclarations(t *testing.T) {
	expectOutput(t, `let ~a, b, ...rest! = ~1, 2, 3, 4!
print(a, b, rest)
const @ host, port: p # = @ host: "h", port: 1 #
print(host, p)
let ~_, second! = ~"x", "y"!
print(second)
`, "1 2 [3, 4]", "h 1", "y")
	expectRuntimeError(t, "let ~a, b! = ~1!\n", runtime.TypeError)
}

func TestLambdaTakesVariableName(t *testing.T) {
	expectOutput(t, "let sq = x =! x * x\nprint(sq)\nprint(sq(4))\n", "<conduit sq>", "16")
}

func TestEvaluateProgramKeepsEnvironment(t *testing.T) {
	interp := New(WithOutput(&strings.Builder{}))
	env := interp.NewModuleEnvironment()
	if _, err := interp.EvaluateProgram(context.Background(), mustParse(t, "mut total = 1\n"), env); err != nil {
		t.Fatalf("first chunk failed: %v", err)
	}
	val, err := interp.EvaluateProgram(context.Background(), mustParse(t, "total += 2\ntotal\n"), env)
	if err != nil {
		t.Fatalf("second chunk failed: %v", err)
	}
	expectNumber(t, val, 3)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interp := New()
	_, err := interp.Run(ctx, mustParse(t, "while yes @ #\n"))
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRegisterBuiltinNamespaces(t *testing.T) {
	var out strings.Builder
	interp := New(WithOutput(&out))
	interp.RegisterBuiltin("shout", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.Str(strings.ToUpper(args[0].(runtime.StringValue).Val) + "!"), nil
	})
	interp.RegisterBuiltin("geo.area", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		w := args[0].(runtime.NumberValue).Val
		h := args[1].(runtime.NumberValue).Val
		return runtime.Num(w * h), nil
	})
	interp.RegisterConstant("geo.unit", runtime.Num(1))
	program := mustParse(t, `print(shout("hi"))
grab geo
print(geo.area(2, 3), geo.unit)
grab geo.area as area
print(area(4, 5))
`)
	if _, err := interp.Run(context.Background(), program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "HI!\n6 1\n20\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if _, ok := interp.Namespace("geo"); !ok {
		t.Fatalf("expected geo namespace to be registered")
	}
}

func TestNativeCallbackIntoUserConduit(t *testing.T) {
	interp := New(WithOutput(&strings.Builder{}))
	interp.RegisterBuiltin("twice", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		first, err := ctx.Caller.CallValue(args[0], []runtime.Value{runtime.Num(1)})
		if err != nil {
			return nil, err
		}
		return ctx.Caller.CallValue(args[0], []runtime.Value{first})
	})
	val, err := interp.Run(context.Background(), mustParse(t, "twice(x =! x + 10)\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	expectNumber(t, val, 21)
}
