package reactive

import "sync"

// Computed is a lazily evaluated, cached derivation.
// It recomputes on the first Get after one of its sources changed.
type Computed[T any] struct {
	id  uint64
	dep *dep

	fn    func() T
	value T
	dirty bool
	ran   bool

	deps    []*dep
	mu      sync.Mutex
	stopped bool
}

// NewComputed creates a computed value owned by the current scope.
func NewComputed[T any](fn func() T) *Computed[T] {
	c := &Computed[T]{id: nextID(), dep: newDep(), fn: fn, dirty: true}
	if s := CurrentScope(); s != nil {
		s.addStopper(c)
	}
	return c
}

// Get returns the cached value, recomputing it if a source changed.
func (c *Computed[T]) Get() T {
	c.mu.Lock()
	needs := c.dirty || !c.ran
	c.mu.Unlock()
	if needs {
		c.recompute()
	}
	c.dep.track()
	return c.value
}

// Peek returns the value without subscribing.
func (c *Computed[T]) Peek() T {
	if c.dirty || !c.ran {
		c.recompute()
	}
	return c.value
}

func (c *Computed[T]) recompute() {
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		Untracked(func() { c.value = c.fn() })
		c.ran = true
		return
	}

	c.clearDeps()

	old := setActiveSub(c)
	EnableTracking()
	defer func() {
		ResetTracking()
		setActiveSub(old)
	}()

	c.value = c.fn()
	c.ran = true
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

// MarkDirty implements Subscriber.
func (c *Computed[T]) MarkDirty() {
	c.mu.Lock()
	if c.dirty || c.stopped {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	c.mu.Unlock()
	c.dep.trigger()
}

// ID implements Subscriber.
func (c *Computed[T]) ID() uint64 { return c.id }

func (c *Computed[T]) addDep(d *dep) {
	c.mu.Lock()
	c.deps = append(c.deps, d)
	c.mu.Unlock()
}

func (c *Computed[T]) clearDeps() {
	c.mu.Lock()
	deps := c.deps
	c.deps = nil
	c.mu.Unlock()
	for _, d := range deps {
		d.unsubscribe(c)
	}
}

// Stop detaches the computed from its sources. Later reads recompute every
// time without caching.
func (c *Computed[T]) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.dirty = true
	c.mu.Unlock()
	c.clearDeps()
}
