package reactive

import "sync"

// Effect re-runs a function whenever a source it read changes.
//
// An Effect does not run on creation; call Run. When Scheduler is set the
// effect calls it on every trigger instead of running synchronously, which
// lets callers batch and order re-runs.
type Effect struct {
	id uint64
	fn func()

	// Scheduler, if set, is called on trigger instead of Run.
	Scheduler func()

	// OnStop runs once when the effect is stopped.
	OnStop func()

	mu           sync.Mutex
	deps         []*dep
	dirty        bool
	active       bool
	running      int
	allowRecurse bool
}

// NewEffect creates an effect owned by the current scope.
func NewEffect(fn func()) *Effect {
	e := &Effect{
		id:     nextID(),
		fn:     fn,
		dirty:  true,
		active: true,
	}
	if s := CurrentScope(); s != nil {
		s.addStopper(e)
	}
	return e
}

// Run executes the effect function while collecting dependencies.
// A stopped effect runs its function untracked.
func (e *Effect) Run() {
	if !e.Active() {
		Untracked(e.fn)
		return
	}

	e.clearDeps()

	old := setActiveSub(e)
	EnableTracking()
	e.mu.Lock()
	e.running++
	e.dirty = false
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running--
		e.mu.Unlock()
		ResetTracking()
		setActiveSub(old)
	}()

	e.fn()
}

// RunIfDirty runs the effect only if a source changed since the last run.
func (e *Effect) RunIfDirty() {
	if e.Dirty() {
		e.Run()
	}
}

// MarkDirty implements Subscriber.
func (e *Effect) MarkDirty() {
	e.mu.Lock()
	if !e.active || (e.running > 0 && !e.allowRecurse) {
		e.mu.Unlock()
		return
	}
	e.dirty = true
	sched := e.Scheduler
	e.mu.Unlock()

	if sched != nil {
		sched()
		return
	}
	e.Run()
}

// ID implements Subscriber.
func (e *Effect) ID() uint64 { return e.id }

func (e *Effect) addDep(d *dep) {
	e.mu.Lock()
	e.deps = append(e.deps, d)
	e.mu.Unlock()
}

func (e *Effect) clearDeps() {
	e.mu.Lock()
	deps := e.deps
	e.deps = nil
	e.mu.Unlock()
	for _, d := range deps {
		d.unsubscribe(e)
	}
}

// Dirty reports whether a source changed since the last run.
func (e *Effect) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Running reports whether the effect function is on the stack.
func (e *Effect) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running > 0
}

// SetAllowRecurse controls whether triggers raised while the effect runs
// are honored. They are ignored by default.
func (e *Effect) SetAllowRecurse(allow bool) {
	e.mu.Lock()
	e.allowRecurse = allow
	e.mu.Unlock()
}

// Stop unsubscribes the effect from all sources. It is idempotent.
func (e *Effect) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	onStop := e.OnStop
	e.mu.Unlock()

	e.clearDeps()
	if onStop != nil {
		onStop()
	}
}

// DepCount returns the number of sources recorded by the last run.
func (e *Effect) DepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.deps)
}
