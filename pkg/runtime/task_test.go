package runtime

import (
	"errors"
	"testing"
)

func TestTaskResolve(t *testing.T) {
	task := NewTask("fetch")

	if state := task.State(); state != TaskPending {
		t.Fatalf("expected pending state, got %v", state)
	}

	notified := 0
	task.OnSettle(func() { notified++ })
	task.Resolve(Str("done"))

	val, err := task.Result()
	if task.State() != TaskFulfilled {
		t.Fatalf("expected fulfilled state, got %v", task.State())
	}
	if err != nil {
		t.Fatalf("expected nil error, got %#v", err)
	}
	if got, ok := val.(StringValue); !ok || got.Val != "done" {
		t.Fatalf("unexpected result %#v", val)
	}
	if notified != 1 {
		t.Fatalf("expected waiter notified once, got %d", notified)
	}
}

func TestTaskTerminalStateIsSticky(t *testing.T) {
	task := NewTask("job")
	boom := errors.New("boom")
	task.Reject(boom)
	task.Resolve(Num(1))
	task.Reject(errors.New("again"))

	val, err := task.Result()
	if task.State() != TaskRejected {
		t.Fatalf("expected rejected state, got %v", task.State())
	}
	if val != nil || !errors.Is(err, boom) {
		t.Fatalf("expected original rejection, got %#v / %v", val, err)
	}
}

func TestTaskOnSettleAfterSettlementRunsImmediately(t *testing.T) {
	task := ResolvedTask("ready", Num(5))
	ran := false
	task.OnSettle(func() { ran = true })
	if !ran {
		t.Fatalf("expected callback to run for a settled task")
	}
}
