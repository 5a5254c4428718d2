package interpreter

import (
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func TestCollectionBuiltins(t *testing.T) {
	expectOutput(t, `let xs = ~3, 1, 2!
print(map(xs, x =! x * 2), map(x =! x + 1, xs))
print(filter(xs, x =! x > 1))
print(reduce(xs, (acc, x) =! acc + x), reduce(xs, (acc, x) =! acc + x, 10))
print(find(xs, x =! x < 3), find(xs, x =! x > 10))
print(every(xs, x =! x > 0), some(xs, x =! x > 2))
print(sum(xs), min(xs), max(4, 9, 2))
print(sort(xs), xs)
print(sort(~"pear", "fig", "apple"!, s =! s.length))
print(sort(xs, (a, b) =! b - a))
print(reverse(xs), reverse("abc"))
print(slice(~1, 2, 3, 4!, 1, 3), slice("hello", -3))
print(join(~1, "a", yes!, "-"), indexOf(xs, 2), indexOf("héllo", "l"))
print(contains(xs, 3), contains(@ a: 1 #, "b"))
`,
		"[6, 2, 4] [4, 2, 3]",
		"[3, 2]",
		"6 16",
		"1 none",
		"yes yes",
		"6 1 9",
		"[1, 2, 3] [3, 1, 2]",
		`["fig", "pear", "apple"]`,
		"[3, 2, 1]",
		"[2, 1, 3] cba",
		"[2, 3] llo",
		"1-a-yes 2 2",
		"yes no",
	)
}

func TestListMutationBuiltins(t *testing.T) {
	expectOutput(t, `let xs = ~1!
print(push(xs, 2, 3))
print(unshift(xs, 0))
print(pop(xs), shift(xs), xs)
let empty = ~!
print(pop(empty), shift(empty))
`, "[1, 2, 3]", "[0, 1, 2, 3]", "3 0 [1, 2]", "none none")
}

func TestMapBuiltins(t *testing.T) {
	expectOutput(t, `let m = @ b: 2, a: 1 #
print(keys(m), values(m))
print(entries(m))
print(len(m), len(~1, 2!), len("héllo"))
`, `["b", "a"] [2, 1]`, `[["b", 2], ["a", 1]]`, "2 2 5")
}

func TestConversionBuiltins(t *testing.T) {
	expectOutput(t, `print(type(1), type("s"), type(none), type(~!), type(@#), type(print))
print(num("1_000.5"), int(7.9), int("-2.5"), bool(""), bool(~0!))
print(str(~1, "a"!) + "!")
print(round(2.346, 2), round(2.5), floor(-1.5), ceil(1.2), abs(-3))
`,
		"num text none list map conduit",
		"1000.5 7 -2 no yes",
		`[1, "a"]!`,
		"2.35 3 -2 2 3",
	)
	expectRuntimeError(t, `num("abc")`, runtime.TypeError)
}

func TestTextBuiltins(t *testing.T) {
	expectOutput(t, `print(upper("rift"), lower("RIFT"), trim("  x  "))
print(split("a,b,c", ","), split(" a  b "))
print(replace("aXbX", "X", "-"), repeat("ab", 2))
print(startsWith("rift", "ri"), endsWith("rift", "x"))
print("shout".upper(), ~1, 2!.length)
`,
		"RIFT rift x",
		`["a", "b", "c"] ["a", "b"]`,
		"a-b- abab",
		"yes no",
		"SHOUT 2",
	)
}

func TestBuiltinArityAndTypeErrors(t *testing.T) {
	rerr := expectRuntimeError(t, "len()\n", runtime.TypeError)
	if rerr.Message != "len expects at least 1 arguments, got 0" {
		t.Fatalf("unexpected message %q", rerr.Message)
	}
	expectRuntimeError(t, "map(~1!, 2)\n", runtime.TypeError)
	expectRuntimeError(t, "reduce(~!, (a, b) =! a)\n", runtime.TypeError)
	expectRuntimeError(t, "sort(~1, \"a\"!)\n", runtime.TypeError)
	expectRuntimeError(t, "range(1, 5, 0)\n", runtime.TypeError)
}

func TestCloneIsDeep(t *testing.T) {
	expectOutput(t, `let a = @ xs: ~1! #
let b = clone(a)
push(b.xs, 2)
print(a, b)
`, "{xs: [1]} {xs: [1, 2]}")
}
