package interpreter

import (
	"errors"
	"fmt"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// fiber is one async conduit call. Each fiber owns a goroutine, but control is
// handed off explicitly so exactly one fiber (or the root program) runs at a time.
type fiber struct {
	id    int
	name  string
	task  *runtime.TaskValue
	depth int

	resumeCh chan struct{}
	yieldCh  chan struct{}
	done     bool
	aborted  bool
}

// errFiberAborted unwinds a parked fiber whose program has finished.
var errFiberAborted = errors.New("fiber aborted")

type timer struct {
	deadline time.Time
	seq      int
	fire     func()
}

// scheduler is the cooperative event loop behind `conduit~`, `wait`, sleep and tick.
// Ready work runs first-in first-out; timers fire in deadline order once the
// ready queue is empty.
type scheduler struct {
	interp *Interpreter
	ready  *linkedlistqueue.Queue
	timers *priorityqueue.Queue
	parked map[*fiber]struct{}

	// closing is set while abandon unwinds fibers; nothing may park then.
	closing bool

	nextFiber int
	nextTimer int

	now   func() time.Time
	sleep func(time.Duration) error
}

func newScheduler(i *Interpreter) *scheduler {
	s := &scheduler{
		interp: i,
		ready:  linkedlistqueue.New(),
		timers: priorityqueue.NewWith(func(a, b interface{}) int {
			ta, tb := a.(*timer), b.(*timer)
			switch {
			case ta.deadline.Before(tb.deadline):
				return -1
			case tb.deadline.Before(ta.deadline):
				return 1
			default:
				return ta.seq - tb.seq
			}
		}),
		parked: make(map[*fiber]struct{}),
		now:    time.Now,
	}
	s.sleep = func(d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-i.ctx.Done():
			return i.ctx.Err()
		case <-t.C:
			return nil
		}
	}
	return s
}

func (s *scheduler) enqueue(job func()) {
	s.ready.Enqueue(job)
}

// after schedules fire to run once d has elapsed.
func (s *scheduler) after(d time.Duration, fire func()) {
	s.nextTimer++
	s.timers.Enqueue(&timer{deadline: s.now().Add(d), seq: s.nextTimer, fire: fire})
}

// spawn starts body as a new fiber. The body runs synchronously until it
// first parks on a pending task, then the caller continues with the task handle.
func (s *scheduler) spawn(name string, body func() (runtime.Value, error)) *runtime.TaskValue {
	s.nextFiber++
	f := &fiber{
		id:       s.nextFiber,
		name:     name,
		task:     runtime.NewTask(name),
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
	}
	s.interp.logger.Debug("fiber spawned", "fiber", f.id, "conduit", name)
	go func() {
		<-f.resumeCh
		val, err := safeInvoke(body)
		if err != nil {
			s.interp.logger.Debug("fiber rejected", "fiber", f.id, "error", err)
			f.task.Reject(err)
		} else {
			f.task.Resolve(val)
		}
		f.done = true
		f.yieldCh <- struct{}{}
	}()
	s.resume(f)
	return f.task
}

// resume runs f until it parks or finishes.
func (s *scheduler) resume(f *fiber) {
	if f.done {
		return
	}
	i := s.interp
	prev, prevGen := i.current, i.generator
	i.current, i.generator = f, nil
	f.resumeCh <- struct{}{}
	<-f.yieldCh
	i.current, i.generator = prev, prevGen
}

// park suspends the running fiber until task settles.
func (s *scheduler) park(f *fiber, task *runtime.TaskValue) error {
	if s.closing {
		return errFiberAborted
	}
	task.OnSettle(func() {
		s.enqueue(func() { s.resume(f) })
	})
	s.parked[f] = struct{}{}
	gen := s.interp.generator
	f.yieldCh <- struct{}{}
	<-f.resumeCh
	delete(s.parked, f)
	s.interp.generator = gen
	if f.aborted {
		return errFiberAborted
	}
	return nil
}

// abandon unwinds every parked fiber and discards queued jobs and timers.
// A parked fiber left behind would hold its goroutine forever.
func (s *scheduler) abandon() {
	if len(s.parked) == 0 && s.ready.Empty() && s.timers.Empty() {
		return
	}
	s.closing = true
	defer func() { s.closing = false }()
	for len(s.parked) > 0 {
		for f := range s.parked {
			s.interp.logger.Debug("fiber abandoned", "fiber", f.id, "conduit", f.name)
			f.aborted = true
			s.resume(f)
			break
		}
	}
	s.ready.Clear()
	s.timers.Clear()
}

// runUntil turns the event loop until done reports true. When nothing is
// runnable and done is still false the awaited work can never finish.
func (s *scheduler) runUntil(done func() bool) error {
	for !done() {
		if err := s.interp.ctx.Err(); err != nil {
			return err
		}
		if job, ok := s.ready.Dequeue(); ok {
			job.(func())()
			continue
		}
		if next, ok := s.timers.Peek(); ok {
			t := next.(*timer)
			if wait := t.deadline.Sub(s.now()); wait > 0 {
				if err := s.sleep(wait); err != nil {
					return err
				}
			}
			s.timers.Dequeue()
			t.fire()
			continue
		}
		return runtime.Errorf(runtime.AsyncRejection, "deadlock: awaited task can never settle")
	}
	return nil
}

// drain runs every queued job and timer; called when a program finishes.
func (s *scheduler) drain() error {
	return s.runUntil(func() bool {
		return s.ready.Empty() && s.timers.Empty()
	})
}

// await blocks the current fiber (or drives the loop from the root program)
// until task settles.
func (s *scheduler) await(task *runtime.TaskValue) (runtime.Value, error) {
	if task.State() == runtime.TaskPending {
		if f := s.interp.current; f != nil {
			if err := s.park(f, task); err != nil {
				return nil, err
			}
		} else if err := s.runUntil(func() bool { return task.State() != runtime.TaskPending }); err != nil {
			return nil, err
		}
	}
	val, err := task.Result()
	if err != nil {
		return nil, rejectionError(task, err)
	}
	return val, nil
}

func rejectionError(task *runtime.TaskValue, cause error) *RuntimeError {
	msg := cause.Error()
	out := &RuntimeError{Kind: runtime.AsyncRejection, Cause: cause}
	var rerr *RuntimeError
	if errors.As(cause, &rerr) {
		msg = rerr.Message
		out.Value = rerr.Value
	}
	out.Message = fmt.Sprintf("task %s rejected: %s", task.Name, msg)
	return out
}
