package interpreter

import (
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

const animalSource = `make Animal @
    name: text
    sound = "..."
    static count = 0

    build(name) @
        me.name = name
        Animal::count += 1
    #

    conduit speak() @
        give ` + "`$@ me.name # says $@ me.sound #`" + `
    #

    get loud() @
        give me.sound + "!"
    #

    set label(v) @
        me.name = v
    #

    static conduit create(n) @
        give Animal(n)
    #
#

make Dog extend Animal @
    build(name) @
        parent.build(name)
        me.sound = "woof"
    #

    conduit speak() @
        give "Dog: " + parent.speak()
    #
#
`

func TestClassInstantiationAndMethods(t *testing.T) {
	expectOutput(t, animalSource+`let cat = Animal("Tom")
let dog = Dog("Rex")
print(cat.speak())
print(dog.speak())
print(dog.loud)
dog.label = "Max"
print(dog.name)
print(Animal::count, Animal.count)
print(Animal.create("Kit").name, Animal::count)
print(type(dog), Dog.name)
`,
		"Tom says ...",
		"Dog: Rex says woof",
		"woof!",
		"Max",
		"2 2",
		"Kit 3",
		"Dog Dog",
	)
}

func TestClassFieldDefaultsAreFreshPerInstance(t *testing.T) {
	expectOutput(t, `make Bag @
    items = ~!
    conduit add(x) @ push(me.items, x) #
#
let a = Bag()
let b = Bag()
a.add(1)
a.add(2)
print(a.items, b.items)
`, "[1, 2] []")
}

func TestClassFieldTypeHints(t *testing.T) {
	expectRuntimeError(t, `make Point @
    x: num = 0
#
let p = Point()
p.x = "far"
`, runtime.TypeError)
}

func TestParentBuildWithoutAncestorConstructor(t *testing.T) {
	expectOutput(t, `make Base @
    kind = "base"
#
make Child extend Base @
    build() @
        parent.build()
        me.kind = "child"
    #
#
print(Child().kind)
`, "child")
}

func TestInheritedMethodLookup(t *testing.T) {
	expectOutput(t, `make A @
    conduit who() @ give "A" #
    conduit hello() @ give "hello from " + me.who() #
#
make B extend A @
    conduit who() @ give "B" #
#
print(B().hello())
print(A().hello())
`, "hello from B", "hello from A")
}

func TestInstantiatedClassIsFrozen(t *testing.T) {
	rerr := expectRuntimeError(t, `make Box @
    v = 1
#
let b = Box()
make Box @
    v = 2
#
`, runtime.TypeError)
	if rerr.Pos.Line != 5 {
		t.Fatalf("expected error on the redefinition at line 5, got %d", rerr.Pos.Line)
	}

	expectRuntimeError(t, `make Box @
    conduit open() @ give 1 #
#
let b = Box()
Box::open = 3
`, runtime.TypeError)
}

func TestRedefiningUninstantiatedClassIsAllowed(t *testing.T) {
	expectOutput(t, `make Box @
    v = 1
#
make Box @
    v = 2
#
print(Box().v)
`, "2")
}

func TestToTextHookControlsStringification(t *testing.T) {
	expectOutput(t, `make Point @
    x = 0
    y = 0
    build(x, y) @
        me.x = x
        me.y = y
    #
    conduit toText() @ give `+"`($@ me.x #, $@ me.y #)`"+` #
#
make Plain @
    v = 1
#
let p = Point(1, 2)
print(p)
print(`+"`at $@ p #`"+`)
print(Plain())
`, "(1, 2)", "at (1, 2)", "<Plain {v: 1}>")
}

func TestMeOutsideMethodIsNameError(t *testing.T) {
	expectRuntimeError(t, "print(me)\n", runtime.NameError)
	expectRuntimeError(t, "make A @\n    conduit f() @ give parent.f() #\n#\nA().f()\n", runtime.NameError)
}

func TestExtendingNonClassFails(t *testing.T) {
	expectRuntimeError(t, "let Base = 1\nmake C extend Base @ #\n", runtime.TypeError)
	expectRuntimeError(t, "make C extend Missing @ #\n", runtime.NameError)
}

func TestClassDefinitionFromDSL(t *testing.T) {
	interp := New()
	env := interp.NewModuleEnvironment()
	class := ast.Class("Counter", "",
		ast.Prop("n", ast.Num(0)),
		ast.Method("bump", nil,
			ast.AssignOp(ast.AssignmentAdd, ast.Member(ast.Me(), "n"), ast.Num(1)),
			ast.Ret(ast.Me()),
		),
	)
	program := ast.Prog(
		class,
		ast.Let("c", ast.CallName("Counter")),
		ast.Call(ast.Member(ast.Call(ast.Member(ast.ID("c"), "bump")), "bump")),
		ast.Member(ast.ID("c"), "n"),
	)
	val, err := interp.EvaluateModule(program, env)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	expectNumber(t, val, 2)
	cls, err := env.Get("Counter")
	if err != nil {
		t.Fatalf("class not bound: %v", err)
	}
	if !cls.(*runtime.ClassValue).Instantiated() {
		t.Fatalf("expected class to be marked instantiated")
	}
}
