package scheduler

import (
	"context"
	"sync"
)

// Loop is a single-goroutine task loop with a micro-task queue.
//
// Tasks run one at a time. After every task the loop drains its micro-task
// queue, including micro-tasks queued by other micro-tasks, before the next
// task starts.
type Loop struct {
	mu       sync.Mutex
	micro    []func()
	tasks    []func()
	wake     chan struct{}
	draining bool
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Microtask queues fn to run at the end of the current task.
func (l *Loop) Microtask(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// Do runs fn as a task on the calling goroutine, then drains micro-tasks.
func (l *Loop) Do(fn func()) {
	fn()
	l.Drain()
}

// Drain runs queued micro-tasks until none are left. Nested calls return
// immediately; the outer call keeps draining.
func (l *Loop) Drain() {
	l.mu.Lock()
	if l.draining {
		l.mu.Unlock()
		return
	}
	l.draining = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.draining = false
		l.mu.Unlock()
	}()

	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro = l.micro[1:]
		l.mu.Unlock()

		fn()
	}
}

// Dispatch queues fn as a task. It is safe to call from any goroutine.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every dispatched task and returns how many ran.
func (l *Loop) RunPending() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		l.Do(fn)
		n++
	}
}

// Pending reports whether tasks or micro-tasks are waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) > 0 || len(l.micro) > 0
}

// Serve runs dispatched tasks until ctx is done.
func (l *Loop) Serve(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
