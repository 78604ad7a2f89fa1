// Package executor implements a single-threaded cooperative executor. Tasks
// run one at a time and only give up control by sleeping until a deadline.
//
// Each task is backed by a goroutine that is used as a coroutine: the runtime
// hands a baton to exactly one task and waits for it to come back before
// resuming anything else, so tasks never run in parallel and need no locking
// for state they own.
package executor

import (
	"container/heap"
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	// ErrPoolExhausted is returned by Spawn when every slot of a pool is in
	// use. It is not fatal: the task simply does not run.
	ErrPoolExhausted = errors.New("task pool exhausted")
	// ErrStopped is returned once the runtime has been shut down.
	ErrStopped = errors.New("runtime stopped")
)

// Func is the body of a task. It normally loops forever, calling T.Sleep
// between steps. Returning, with or without an error, ends the task.
type Func func(t *T) error

// settableClock is a clock that can be moved to an arbitrary instant, such as
// *clock.Mock. The runtime treats it as simulated time.
type settableClock interface {
	Set(time.Time)
}

type yieldEvent struct {
	task *T
	done bool
	err  error
}

// Runtime is the cooperative executor. Spawn and Run must be called from a
// single goroutine, or from inside a running task.
type Runtime struct {
	clock  clock.Clock
	logger *slog.Logger

	queue   taskQueue
	seq     uint64
	now     time.Time
	started bool

	yield    chan yieldEvent
	stop     chan struct{}
	stopOnce sync.Once
	tasks    sync.WaitGroup
}

// New creates a runtime driven by clk. A nil clk uses the wall clock.
func New(clk clock.Clock, logger *slog.Logger) *Runtime {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		clock:  clk,
		logger: logger,
		yield:  make(chan yieldEvent),
		stop:   make(chan struct{}),
	}
}

// Now returns the logical time of the runtime: the deadline of the task that
// was resumed last.
func (r *Runtime) Now() time.Time {
	if !r.started {
		return r.clock.Now()
	}
	return r.now
}

// Run resumes tasks in deadline order. It returns only when ctx is done or
// the runtime is shut down, and it shuts the runtime down on return.
func (r *Runtime) Run(ctx context.Context) error {
	defer r.Shutdown()
	return r.loop(ctx, time.Time{})
}

// RunUntil resumes every task whose deadline is before limit, then returns
// with the logical time set to limit. Tasks stay suspended between calls, so
// RunUntil can be called repeatedly to step through time.
//
// A task that acts and then sleeps P runs at start, start+P, and so on, so it
// runs T/P times in a window of length T only when T is a whole multiple of P.
// Otherwise it runs once more than that.
func (r *Runtime) RunUntil(ctx context.Context, limit time.Time) error {
	return r.loop(ctx, limit)
}

func (r *Runtime) loop(ctx context.Context, limit time.Time) error {
	if r.stopped() {
		return ErrStopped
	}
	r.begin()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := r.queue.peek()
		if !limit.IsZero() && (t == nil || !t.deadline.Before(limit)) {
			if !limit.After(r.now) {
				return nil
			}
			r.now = limit
			return r.waitUntil(ctx, limit)
		}

		if t == nil {
			r.logger.Debug("no runnable tasks, idling")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.stop:
				return ErrStopped
			}
		}

		if err := r.waitUntil(ctx, t.deadline); err != nil {
			return err
		}

		heap.Pop(&r.queue)
		r.resume(t)
	}
}

func (r *Runtime) begin() {
	if r.started {
		return
	}
	r.started = true
	r.now = r.clock.Now()
	// Tasks spawned before the first run are ready immediately.
	for _, t := range r.queue {
		t.deadline = r.now
	}
	heap.Init(&r.queue)
}

func (r *Runtime) waitUntil(ctx context.Context, deadline time.Time) error {
	if s, ok := r.clock.(settableClock); ok {
		if deadline.After(r.clock.Now()) {
			s.Set(deadline)
		}
		return ctx.Err()
	}

	d := deadline.Sub(r.clock.Now())
	if d <= 0 {
		return ctx.Err()
	}

	timer := r.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// resume hands control to t and blocks until t suspends again or ends.
func (r *Runtime) resume(t *T) {
	if t.deadline.After(r.now) {
		r.now = t.deadline
	}
	t.now = r.now

	t.resume <- struct{}{}
	ev := <-r.yield

	if ev.task != t {
		panic("executor: task yielded out of turn")
	}

	if !ev.done {
		r.enqueue(t)
		return
	}

	t.pool.active--
	if ev.err != nil {
		r.logger.Error(
			"task aborted",
			"task", t.Name(),
			"error", ev.err)
	} else {
		r.logger.Info("task finished", "task", t.Name())
	}
}

func (r *Runtime) enqueue(t *T) {
	r.seq++
	t.seq = r.seq
	heap.Push(&r.queue, t)
}

func (r *Runtime) stopped() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

// Shutdown stops every task and waits for their goroutines to exit. Suspended
// tasks never return from Sleep. Shutdown must not be called from a task.
func (r *Runtime) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.tasks.Wait()
}

// Pool returns a new pool of at most capacity concurrently live tasks of the
// given kind.
func (r *Runtime) Pool(kind string, capacity int) *Pool {
	return &Pool{rt: r, kind: kind, capacity: capacity}
}

// Pool bounds the number of live tasks of one kind.
type Pool struct {
	rt       *Runtime
	kind     string
	capacity int
	active   int
}

// Kind returns the kind of task the pool holds.
func (p *Pool) Kind() string { return p.kind }

// Cap returns the capacity of the pool.
func (p *Pool) Cap() int { return p.capacity }

// Active returns the number of live tasks spawned from the pool.
func (p *Pool) Active() int { return p.active }

// Spawn starts fn as a new task. The task first runs on the next scheduling
// round. ErrPoolExhausted is returned when the pool is full.
func (p *Pool) Spawn(name string, fn Func) error {
	r := p.rt
	if r.stopped() {
		return ErrStopped
	}
	if p.active >= p.capacity {
		return errors.Wrapf(ErrPoolExhausted, "cannot spawn %s/%s (capacity %d)", p.kind, name, p.capacity)
	}
	p.active++

	t := &T{
		rt:     r,
		pool:   p,
		name:   name,
		index:  -1,
		resume: make(chan struct{}),
	}
	if r.started {
		t.deadline = r.now
	}

	r.tasks.Add(1)
	go t.main(fn)
	r.enqueue(t)

	r.logger.Debug("task spawned", "task", t.Name())
	return nil
}

// T is the handle a task uses to interact with the runtime.
type T struct {
	rt   *Runtime
	pool *Pool
	name string

	now      time.Time
	deadline time.Time
	seq      uint64
	index    int
	resume   chan struct{}
}

// Name returns the task name qualified by its pool kind.
func (t *T) Name() string { return t.pool.kind + "/" + t.name }

// Now returns the time the task was resumed at. It does not move while the
// task runs.
func (t *T) Now() time.Time { return t.now }

// Sleep suspends the task until at least d after Now. Other tasks run in the
// meantime. If the runtime shuts down, Sleep never returns and the task's
// goroutine exits.
func (t *T) Sleep(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.deadline = t.now.Add(d)
	t.rt.yield <- yieldEvent{task: t}

	select {
	case <-t.resume:
	case <-t.rt.stop:
		runtime.Goexit()
	}
}

// Yield lets every other task that is already due run before this one
// continues.
func (t *T) Yield() { t.Sleep(0) }

func (t *T) main(fn Func) {
	defer t.rt.tasks.Done()

	select {
	case <-t.resume:
	case <-t.rt.stop:
		return
	}

	err := t.call(fn)
	t.rt.yield <- yieldEvent{task: t, done: true, err: err}
}

func (t *T) call(fn Func) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Errorf("task panicked: %v", v)
		}
	}()
	return fn(t)
}
