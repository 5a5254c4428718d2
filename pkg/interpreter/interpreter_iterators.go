package interpreter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// errGeneratorClosed unwinds a generator body whose consumer stopped early.
var errGeneratorClosed = errors.New("generator closed")

type generatorResult struct {
	value runtime.Value
	done  bool
	err   error
}

// generatorInstance runs a `conduit*` body on its own goroutine. Control is
// handed back and forth over requests/results so only one side runs at a time.
type generatorInstance struct {
	interpreter *Interpreter
	fn          *runtime.FunctionValue
	body        func() (runtime.Value, error)

	requests chan struct{}
	results  chan generatorResult

	mu      sync.Mutex
	started bool
	busy    bool
	done    bool
	err     error
	closed  bool
}

func newGeneratorInstance(i *Interpreter, fn *runtime.FunctionValue, body func() (runtime.Value, error)) *generatorInstance {
	return &generatorInstance{
		interpreter: i,
		fn:          fn,
		body:        body,
		requests:    make(chan struct{}),
		results:     make(chan generatorResult),
	}
}

// Next resumes the body until its next yield or completion.
func (g *generatorInstance) Next() (runtime.Value, bool, error) {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return nil, true, runtime.Errorf(runtime.TypeError, "generator %s resumed while already running", g.fn.Name)
	}
	if g.closed || g.done {
		err := g.err
		g.mu.Unlock()
		return runtime.None, true, err
	}
	g.busy = true
	if !g.started {
		g.started = true
		g.interpreter.generators[g] = struct{}{}
		go g.run()
	}
	g.mu.Unlock()

	prev := g.interpreter.generator
	g.interpreter.generator = g
	g.requests <- struct{}{}
	res, ok := <-g.results
	g.interpreter.generator = prev

	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	if !ok || res.done {
		g.done = true
		delete(g.interpreter.generators, g)
		return runtime.None, true, nil
	}
	if res.err != nil {
		g.done = true
		delete(g.interpreter.generators, g)
		g.err = res.err
		return nil, true, res.err
	}
	if res.value == nil {
		return runtime.None, false, nil
	}
	return res.value, false, nil
}

// Close abandons the generator. A suspended body unwinds through its finally blocks.
func (g *generatorInstance) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	started, done := g.started, g.done
	close(g.requests)
	g.mu.Unlock()
	delete(g.interpreter.generators, g)
	if started && !done {
		prev := g.interpreter.generator
		g.interpreter.generator = g
		// wait for the body to finish unwinding
		for range g.results {
		}
		g.interpreter.generator = prev
	}
}

func (g *generatorInstance) running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

func (g *generatorInstance) run() {
	defer close(g.results)

	if !g.awaitRequest() {
		return
	}
	_, err := safeInvoke(g.body)
	switch {
	case err == nil, errors.Is(err, errGeneratorClosed):
		g.results <- generatorResult{done: true}
	default:
		if _, ok := err.(returnSignal); ok {
			g.results <- generatorResult{done: true}
			return
		}
		g.results <- generatorResult{err: err}
	}
}

// emit hands value to the consumer and blocks until the next request.
func (g *generatorInstance) emit(value runtime.Value) error {
	g.results <- generatorResult{value: value}
	if !g.awaitRequest() {
		return errGeneratorClosed
	}
	return nil
}

func (g *generatorInstance) awaitRequest() bool {
	_, ok := <-g.requests
	return ok
}

// startGenerator wraps a generator conduit call; the body runs lazily on the first next().
func (i *Interpreter) startGenerator(fn *runtime.FunctionValue, body func() (runtime.Value, error)) *runtime.GeneratorValue {
	return &runtime.GeneratorValue{Name: fn.Name, Iter: newGeneratorInstance(i, fn, body)}
}

func (i *Interpreter) evaluateYieldExpression(expr *ast.YieldExpression, env *runtime.Environment) (runtime.Value, error) {
	gen := i.generator
	if gen == nil {
		return nil, runtime.Errorf(runtime.TypeError, "'yield' outside of a generator conduit")
	}
	var value runtime.Value = runtime.None
	if expr.Argument != nil {
		v, err := i.evaluateExpression(expr.Argument, env)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := gen.emit(value); err != nil {
		return nil, err
	}
	return runtime.None, nil
}

// generatorStep wraps one Next call in the `@ value, done #` map `.next()` returns.
func generatorStep(gen *runtime.GeneratorValue) (runtime.Value, error) {
	value, done, err := gen.Iter.Next()
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = runtime.None
	}
	return runtime.MapOf("value", value, "done", runtime.Bool(done)), nil
}

func generatorMember(gen *runtime.GeneratorValue, name string) (runtime.Value, bool) {
	switch name {
	case "next":
		return runtime.NativeFunctionValue{
			Name:  "next",
			Arity: 0,
			Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
				return generatorStep(gen)
			},
		}, true
	case "close":
		return runtime.NativeFunctionValue{
			Name:  "close",
			Arity: 0,
			Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
				gen.Iter.Close()
				return runtime.None, nil
			},
		}, true
	}
	return nil, false
}

// drainGenerator collects the remaining values; used by spreads and list().
func drainGenerator(gen *runtime.GeneratorValue) ([]runtime.Value, error) {
	var out []runtime.Value
	for {
		value, done, err := gen.Iter.Next()
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		out = append(out, value)
	}
}

func safeInvoke(task func() (runtime.Value, error)) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task()
}
