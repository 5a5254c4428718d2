package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// RuntimeError is the error type raised by RIFT programs.
type RuntimeError = runtime.RuntimeError

const defaultMaxCallDepth = 10000

// Interpreter drives evaluation of RIFT AST nodes.
type Interpreter struct {
	ctx    context.Context
	global *runtime.Environment
	logger *slog.Logger
	out    io.Writer

	namespaces map[string]*runtime.NamespaceValue
	loader     ModuleLoader
	modules    map[string]*moduleRecord
	loading    []string
	module     *moduleRecord
	entryPath  string

	sched *scheduler

	// current is the fiber executing right now; nil on the root program.
	current   *fiber
	rootDepth int
	maxDepth  int

	// generator is the generator whose body is executing; nil inside ordinary calls.
	generator *generatorInstance
	// generators holds started generators whose bodies have not finished.
	generators map[*generatorInstance]struct{}
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes interpreter diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithOutput sets where `print` writes.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// WithModuleLoader resolves `grab` specifiers that are not builtin namespaces.
func WithModuleLoader(loader ModuleLoader) Option {
	return func(i *Interpreter) {
		i.loader = loader
	}
}

// WithMaxCallDepth bounds conduit recursion.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxDepth = depth
		}
	}
}

// WithEntryPath names the file the program was read from; relative grabs resolve against it.
func WithEntryPath(path string) Option {
	return func(i *Interpreter) {
		i.entryPath = path
	}
}

// New returns an interpreter with the core builtins installed.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		ctx:        context.Background(),
		global:     runtime.NewEnvironment(nil),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:        os.Stdout,
		namespaces: make(map[string]*runtime.NamespaceValue),
		modules:    make(map[string]*moduleRecord),
		generators: make(map[*generatorInstance]struct{}),
		maxDepth:   defaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.sched = newScheduler(i)
	i.registerCoreBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// NewModuleEnvironment returns a fresh top-level scope for a program or REPL session.
func (i *Interpreter) NewModuleEnvironment() *runtime.Environment {
	return i.global.Extend()
}

// Run evaluates a whole program in a fresh module scope, drains outstanding
// async work and releases suspended generators.
func (i *Interpreter) Run(ctx context.Context, program *ast.Program) (runtime.Value, error) {
	defer i.Close()
	return i.EvaluateProgram(ctx, program, i.NewModuleEnvironment())
}

// Close unwinds parked fibers and generators suspended mid-body, running
// their finally blocks. Sessions that call EvaluateProgram repeatedly call
// Close once they are done; the interpreter stays usable afterwards.
func (i *Interpreter) Close() {
	for {
		i.sched.abandon()
		if len(i.generators) == 0 {
			return
		}
		for g := range i.generators {
			if g.running() {
				delete(i.generators, g)
				continue
			}
			g.Close()
		}
	}
}

// EvaluateProgram evaluates program in env (kept across calls by the REPL)
// and drains the scheduler afterwards.
func (i *Interpreter) EvaluateProgram(ctx context.Context, program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	prevCtx := i.ctx
	i.ctx = ctx
	defer func() { i.ctx = prevCtx }()

	record := &moduleRecord{id: i.entryPath, path: i.entryPath, env: env}
	if i.entryPath != "" {
		if abs, err := filepath.Abs(i.entryPath); err == nil {
			record.id = abs
		}
		i.loading = append(i.loading, record.id)
		defer func() { i.loading = i.loading[:len(i.loading)-1] }()
	}
	prevModule := i.module
	i.module = record
	defer func() { i.module = prevModule }()

	// fibers still parked once the program ends can never be resumed
	defer i.sched.abandon()

	result, err := i.EvaluateModule(program, env)
	if err != nil {
		return nil, err
	}
	if err := i.sched.drain(); err != nil {
		return nil, err
	}
	return result, nil
}

// EvaluateModule executes the statements of program in env and returns the last value.
func (i *Interpreter) EvaluateModule(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.None
	for _, stmt := range program.Body {
		val, err := i.evaluateStatement(stmt, env)
		if err != nil {
			switch sig := err.(type) {
			case returnSignal:
				return sig.value, nil
			case breakSignal:
				return nil, i.errorAt(stmt, runtime.TypeError, "'stop' outside of a loop")
			case continueSignal:
				return nil, i.errorAt(stmt, runtime.TypeError, "'next' outside of a loop")
			}
			return nil, err
		}
		last = val
	}
	return last, nil
}

// Evaluate evaluates a single node in env.
func (i *Interpreter) Evaluate(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Program:
		return i.EvaluateModule(n, env)
	case ast.Statement:
		return i.evaluateStatement(n, env)
	default:
		return nil, fmt.Errorf("cannot evaluate %s", node.NodeType())
	}
}

// RegisterBuiltin installs a native conduit. A bare name is global; a dotted
// name such as `math.sqrt` becomes an export of the `math` namespace.
func (i *Interpreter) RegisterBuiltin(qualifiedName string, fn runtime.NativeFunc) {
	name := qualifiedName
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		name = qualifiedName[idx+1:]
	}
	i.RegisterConstant(qualifiedName, runtime.NativeFunctionValue{Name: name, Arity: -1, Impl: fn})
}

// RegisterConstant installs a value under a bare or dotted name.
func (i *Interpreter) RegisterConstant(qualifiedName string, value runtime.Value) {
	idx := strings.LastIndex(qualifiedName, ".")
	if idx < 0 {
		i.global.DefineConst(qualifiedName, value)
		return
	}
	nsName, member := qualifiedName[:idx], qualifiedName[idx+1:]
	ns, ok := i.namespaces[nsName]
	if !ok {
		ns = runtime.NewNamespace(nsName)
		i.namespaces[nsName] = ns
	}
	ns.Exports.Set(member, value)
}

// Namespace returns a registered builtin namespace.
func (i *Interpreter) Namespace(name string) (*runtime.NamespaceValue, bool) {
	ns, ok := i.namespaces[name]
	return ns, ok
}

// evaluateStatement dispatches on statement kind; expressions fall through to evaluateExpression.
func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return i.evaluateVariableDeclaration(n, env)
	case *ast.FunctionDefinition:
		return i.evaluateFunctionDefinition(n, env)
	case *ast.ClassDefinition:
		return i.evaluateClassDefinition(n, env)
	case *ast.WhileLoop:
		return i.evaluateWhileLoop(n, env)
	case *ast.RepeatLoop:
		return i.evaluateRepeatLoop(n, env)
	case *ast.TryStatement:
		return i.evaluateTryStatement(n, env)
	case *ast.FailStatement:
		return i.evaluateFailStatement(n, env)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	case *ast.BreakStatement:
		return nil, breakSignal{}
	case *ast.ContinueStatement:
		return nil, continueSignal{}
	case *ast.GrabStatement:
		return i.evaluateGrabStatement(n, env)
	case *ast.ShareStatement:
		return i.evaluateShareStatement(n, env)
	case ast.Expression:
		return i.evaluateExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

// evaluateExpression evaluates expr and stamps the innermost source position
// onto runtime errors that do not carry one yet.
func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpressionInner(node, env)
	if err != nil {
		if rerr, ok := err.(*RuntimeError); ok && rerr.Pos.Line == 0 {
			rerr.Pos = node.Span().Start
		}
		return nil, err
	}
	return val, nil
}

func (i *Interpreter) evaluateExpressionInner(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NoneLiteral:
		return runtime.None, nil
	case *ast.Identifier:
		return env.Get(n.Name)
	case *ast.MeExpression:
		val, err := env.Get("me")
		if err != nil {
			return nil, runtime.Errorf(runtime.NameError, "'me' used outside of a method")
		}
		return val, nil
	case *ast.ParentExpression:
		parent, err := parentClass(env)
		if err != nil {
			return nil, err
		}
		return parent, nil
	case *ast.TemplateString:
		return i.evaluateTemplateString(n, env)
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n, env)
	case *ast.MapLiteral:
		return i.evaluateMapLiteral(n, env)
	case *ast.SpreadExpression:
		return nil, runtime.Errorf(runtime.TypeError, "spread is only allowed in lists, maps and call arguments")
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.CompareExpression:
		return i.evaluateCompareExpression(n, env)
	case *ast.RangeExpression:
		return i.evaluateRangeExpression(n, env)
	case *ast.PipelineExpression:
		return i.evaluatePipeline(n, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.MemberAccessExpression:
		return i.evaluateMemberAccess(n, env)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env)
	case *ast.LambdaExpression:
		return runtime.NewFunctionFromLambda(n, env), nil
	case *ast.BlockExpression:
		return i.evaluateBlock(n, env)
	case *ast.IfExpression:
		return i.evaluateIfExpression(n, env)
	case *ast.CheckExpression:
		return i.evaluateCheckExpression(n, env)
	case *ast.WaitExpression:
		return i.evaluateWaitExpression(n, env)
	case *ast.YieldExpression:
		return i.evaluateYieldExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) errorAt(node ast.Node, kind runtime.ErrorKind, format string, args ...any) *RuntimeError {
	err := runtime.Errorf(kind, format, args...)
	if node != nil {
		err.Pos = node.Span().Start
	}
	return err
}
