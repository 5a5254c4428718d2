package interpreter

import (
	"bytes"
	"context"
	"errors"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// withFakeClock makes timers fire instantly while preserving deadline order.
func withFakeClock(interp *Interpreter) *time.Duration {
	var elapsed time.Duration
	start := time.Unix(0, 0)
	interp.sched.now = func() time.Time { return start.Add(elapsed) }
	interp.sched.sleep = func(d time.Duration) error {
		elapsed += d
		return nil
	}
	return &elapsed
}

func TestAsyncConduitRunsUntilFirstWait(t *testing.T) {
	expectOutput(t, `async conduit worker(name, ms) @
    print(name + " start")
    wait sleep(ms)
    print(name + " done")
    give name
#
let a = worker("a", 20)
let b = worker("b", 5)
print("spawned")
print(wait a, wait b)
`, "a start", "b start", "spawned", "b done", "a done", "a b")
}

func TestTickInterleavesFibersInFIFOOrder(t *testing.T) {
	expectOutput(t, `async conduit step(name) @
    print(name + " 1")
    wait tick()
    print(name + " 2")
    wait tick()
    print(name + " 3")
#
step("x")
step("y")
print("main")
`, "x 1", "y 1", "main", "x 2", "y 2", "x 3", "y 3")
}

func TestTimersFireInDeadlineOrder(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithOutput(&buf))
	elapsed := withFakeClock(interp)
	program := mustParse(t, `async conduit after(ms, label) @
    wait sleep(ms)
    print(label)
#
after(60000, "minute")
after(1000, "second")
after(1000, "second again")
after(0, "now")
`)
	if _, err := interp.Run(context.Background(), program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := buf.String(); got != "now\nsecond\nsecond again\nminute\n" {
		t.Fatalf("unexpected timer order %q", got)
	}
	if *elapsed != time.Minute {
		t.Fatalf("expected fake clock to advance one minute, got %v", *elapsed)
	}
}

func TestWaitOnRejectedTaskIsCatchable(t *testing.T) {
	expectOutput(t, `async conduit boom() @
    wait tick()
    fail "exploded"
#
try @
    wait boom()
#
catch e @
    print("caught " + e)
#
`, "caught exploded")
}

func TestUncaughtRejectionNamesTask(t *testing.T) {
	rerr := expectRuntimeError(t, `async conduit boom() @
    wait tick()
    fail "exploded"
#
wait boom()
`, runtime.AsyncRejection)
	if rerr.Message != "task boom rejected: exploded" {
		t.Fatalf("unexpected rejection message %q", rerr.Message)
	}
	if rerr.Value.(runtime.StringValue).Val != "exploded" {
		t.Fatalf("expected rejection to carry the failure value, got %#v", rerr.Value)
	}
}

func TestRejectionPropagatesThroughWaitingFibers(t *testing.T) {
	expectOutput(t, `async conduit inner() @
    wait tick()
    fail @ code: 7 #
#
async conduit outer() @
    give wait inner()
#
try @
    wait outer()
#
catch e @
    print(e.code)
#
`, "7")
}

func TestAwaitingTaskThatCanNeverSettleIsDeadlock(t *testing.T) {
	rerr := expectRuntimeError(t, `mut pending = none
async conduit selfWait() @
    wait tick()
    give wait pending
#
pending = selfWait()
wait pending
`, runtime.AsyncRejection)
	if !strings.Contains(rerr.Message, "deadlock") {
		t.Fatalf("expected deadlock message, got %q", rerr.Message)
	}
}

func TestAsyncPipeline(t *testing.T) {
	expectOutput(t, `async conduit load() @
    wait sleep(1)
    give ~3, 1, 2!
#
async conduit total(xs) @
    wait tick()
    give sum(xs)
#
print(load() ~! sort ~! total)
print(load() ~! sort)
`, "6", "[1, 2, 3]")
}

func TestTaskStateMembers(t *testing.T) {
	expectOutput(t, `async conduit quick() @ give 1 #
async conduit slow() @
    wait tick()
    give 2
#
let q = quick()
let s = slow()
print(q.state, q.done)
print(s.state, s.done)
wait s
print(s.state, s.done)
print(wait 5)
`, "fulfilled yes", "pending no", "fulfilled yes", "5")
}

func TestAsyncLambda(t *testing.T) {
	expectOutput(t, `let fetch = async (x) =! @
    wait tick()
    give x * 2
#
print(wait fetch(21))
`, "42")
}

func TestProgramDrainsOutstandingWork(t *testing.T) {
	expectOutput(t, `async conduit later() @
    wait sleep(2)
    print("late")
#
later()
print("end of program")
`, "end of program", "late")
}

func TestRecursionDepthIsPerFiber(t *testing.T) {
	_, out := runSource(t, `conduit depth(n) @
    if n == 0 @ give 0 #
    give 1 + depth(n - 1)
#
async conduit deep() @
    wait tick()
    give depth(38)
#
let a = deep()
let b = deep()
print(wait a + wait b)
`, WithMaxCallDepth(40))
	if out != "76\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFinishedProgramUnwindsParkedFibers(t *testing.T) {
	program := mustParse(t, `mut pending = none
async conduit selfWait() @
    wait tick()
    try @
        give wait pending
    #
    finally @
        print("unwound")
    #
#
pending = selfWait()
print("main done")
`)
	before := goruntime.NumGoroutine()
	runRepeatedly(t, program, 25, "main done\nunwound\n")
	if after := settledGoroutines(before); after > before {
		t.Fatalf("parked fibers kept goroutines alive: before=%d after=%d", before, after)
	}
}

func TestDeadlockReleasesParkedFibers(t *testing.T) {
	program := mustParse(t, `mut pending = none
async conduit selfWait() @
    wait tick()
    give wait pending
#
pending = selfWait()
wait pending
`)
	before := goruntime.NumGoroutine()
	for n := 0; n < 25; n++ {
		var buf bytes.Buffer
		_, err := New(WithOutput(&buf)).Run(context.Background(), program)
		var rerr *RuntimeError
		if !errors.As(err, &rerr) || rerr.Kind != runtime.AsyncRejection {
			t.Fatalf("run %d: expected deadlock rejection, got %v", n, err)
		}
	}
	if after := settledGoroutines(before); after > before {
		t.Fatalf("deadlocked fibers kept goroutines alive: before=%d after=%d", before, after)
	}
}
