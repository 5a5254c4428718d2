package runtime

import (
	"sync"
)

// TaskState tracks an async call. Fulfilled and Rejected are terminal.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskFulfilled
	TaskRejected
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskFulfilled:
		return "fulfilled"
	case TaskRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// TaskValue is the handle returned by an async conduit call.
type TaskValue struct {
	Name string

	mu      sync.Mutex
	state   TaskState
	result  Value
	err     error
	waiters []func()
}

func NewTask(name string) *TaskValue {
	return &TaskValue{Name: name}
}

// ResolvedTask returns a task already fulfilled with v.
func ResolvedTask(name string, v Value) *TaskValue {
	t := NewTask(name)
	t.Resolve(v)
	return t
}

func (t *TaskValue) Kind() Kind { return KindTask }

func (t *TaskValue) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the settled outcome. It is only meaningful once State is terminal.
func (t *TaskValue) Result() (Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Resolve fulfills a pending task; settled tasks ignore it.
func (t *TaskValue) Resolve(v Value) {
	t.settle(TaskFulfilled, v, nil)
}

// Reject fails a pending task; settled tasks ignore it.
func (t *TaskValue) Reject(err error) {
	t.settle(TaskRejected, nil, err)
}

func (t *TaskValue) settle(state TaskState, v Value, err error) {
	t.mu.Lock()
	if t.state != TaskPending {
		t.mu.Unlock()
		return
	}
	t.state = state
	t.result = v
	t.err = err
	waiters := t.waiters
	t.waiters = nil
	t.mu.Unlock()
	for _, w := range waiters {
		w()
	}
}

// OnSettle registers fn to run once the task settles. If the task has
// already settled fn runs immediately.
func (t *TaskValue) OnSettle(fn func()) {
	t.mu.Lock()
	if t.state == TaskPending {
		t.waiters = append(t.waiters, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	fn()
}
