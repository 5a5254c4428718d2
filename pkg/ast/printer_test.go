package ast_test

import (
	"reflect"
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/parser"
)

func TestPrintExpressions(t *testing.T) {
	cases := []struct {
		node ast.Node
		want string
	}{
		{ast.Bin("*", ast.Bin("+", ast.Num(1), ast.Num(2)), ast.Num(3)), "(1 + 2) * 3"},
		{ast.Bin("-", ast.Num(10), ast.Bin("-", ast.Num(4), ast.Num(3))), "10 - (4 - 3)"},
		{ast.Bin("**", ast.Bin("**", ast.Num(2), ast.Num(3)), ast.Num(2)), "(2 ** 3) ** 2"},
		{ast.Num(2.5), "2.5"},
		{ast.Num(1e21), "1e+21"},
		{ast.Arr(), "~!"},
		{ast.MapLit(), "(@#)"},
		{ast.Arr(ast.Num(1), ast.Str("a\"b")), `~1, "a\"b"!`},
		{ast.MapLit(ast.Entry("name", ast.Str("x")), ast.Entry("full name", ast.Num(1)), ast.Entry("if", ast.Bool(true))),
			`(@ name: "x", "full name": 1, "if": yes #)`},
		{ast.Pipe(ast.Pipe(ast.ID("xs"), ast.ID("f")), ast.ID("g")), "xs -! f -! g"},
		{ast.Pipe(ast.ID("x"), ast.Pipe(ast.ID("f"), ast.ID("g"))), "x -! (f -! g)"},
		{ast.Index(ast.Member(ast.Me(), "items"), ast.Num(0)), "me.items~0!"},
		{ast.Tmpl(ast.Str("cost: $"), ast.ID("n"), ast.Str("`")), "`cost: \\$$@ n #\\``"},
		{ast.Arrow([]*ast.FunctionParameter{ast.Param("x")}, ast.MapLit(ast.Entry("v", ast.ID("x")))), "(x) =! (@ v: x #)"},
		{ast.Un("not", ast.Bin("and", ast.ID("a"), ast.ID("b"))), "not (a and b)"},
		{ast.Range(ast.Num(1), ast.Bin("+", ast.ID("n"), ast.Num(1))), "1..n + 1"},
	}
	for _, tc := range cases {
		if got := ast.Print(tc.node); got != tc.want {
			t.Fatalf("Print mismatch: got %q want %q", got, tc.want)
		}
	}
}

func TestPrintPatterns(t *testing.T) {
	pattern := ast.MapP([]*ast.MapPatternField{
		ast.FieldP("name", ast.ID("name")),
		ast.FieldP("age", ast.TypedP(ast.ID("a"), "num")),
	}, ast.ID("rest"))
	if got, want := ast.Print(pattern), "@ name, age: a: num, ...rest #"; got != want {
		t.Fatalf("Print mismatch: got %q want %q", got, want)
	}
	if got, want := ast.Print(ast.RangeP(-5, -1)), "-5..-1"; got != want {
		t.Fatalf("Print mismatch: got %q want %q", got, want)
	}
}

func TestPrintBlocksIndent(t *testing.T) {
	fn := ast.Fn("f", []*ast.FunctionParameter{ast.Param("x")},
		ast.If(ast.ID("x"), ast.Block(ast.Ret(ast.Num(1))), nil),
		ast.Ret(ast.Num(0)),
	)
	want := "conduit f(x) @\n    if x @\n        give 1\n    #\n    give 0\n#"
	if got := ast.Print(fn); got != want {
		t.Fatalf("Print mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`let x = 1 + 2 * 3`,
		"mut total: num = 0\ntotal += 5\n",
		`let xs = ~1, ~2, 3!, ~!, ...rest!`,
		`let m = @ a: 1, "b c": 2, ~key!: 3, ...base, shorthand #`,
		"let s = `hi $@ name # you owe \\$$@ cost * 2 #`",
		`let r = xs -! map(x =! x * 2) ~! sum`,
		`let ok = 1 < x <= 10 and not done or fallback ?? no`,
		`let v = user?.profile?.name ?? "anon"`,
		`let v = grid~i!~j! + xs?~0!`,
		`let f = async (a, b = 2, ...rest) =! wait g(a, ...rest)`,
		`let g = conduit*(n) @ repeat i in 1 to n @ yield i # #`,
		`let p = 2 ** -x ** 2`,
		"conduit fact(n: num): num @\n    if n <= 1 @ give 1 # else @ give n * fact(n - 1) #\n#\n",
		"let label = check v @\n    0 =! \"zero\"\n    -3..-1 =! \"neg\"\n    n: num when n > 10 =! \"big\"\n    ~a, ...more! =! a\n    @ name, age: _ # =! name\n    _ =! @ give none #\n#\n",
		"try @ fail \"x\" # catch e @ print(e) # finally @ done() #\n",
		"repeat (i, ~k, v!) in pairs @\n    if i > 2 @ stop #\n    next\n#\nwhile yes @ stop #\n",
		"make Point extend Base @\n    x = 0\n    static count: num = 0\n    build(x) @ parent.build(); me.x = x #\n    get len() @ give me.x #\n    set len(v) @ me.x = v #\n    static conduit origin() @ give Point(0) #\n    async conduit load() @ give wait fetch() #\n#\n",
		"grab math\ngrab a.b.c as c\ngrab util.*\ngrab \"./lib\" as lib\nshare let z = 1\nshare @ a, b #\n",
		"(@ a: 1 #)\n",
		"let e = if a @ 1 # else if b @ 2 # else @ 3 #\n",
	}
	for _, src := range sources {
		first, err := parser.ParseSource(src)
		if err != nil {
			t.Fatalf("ParseSource(%q) returned error: %v", src, err)
		}
		printed := ast.Print(first)
		second, err := parser.ParseSource(printed)
		if err != nil {
			t.Fatalf("reparse of printed source failed: %v\nsource:\n%s\nprinted:\n%s", err, src, printed)
		}
		if !reflect.DeepEqual(ast.ClearSpans(first), ast.ClearSpans(second)) {
			t.Fatalf("round trip changed the tree\nsource:\n%s\nprinted:\n%s\nreprinted:\n%s", src, printed, ast.Print(second))
		}
	}
}
