package reactive

import (
	"sync"
)

// Subscriber is notified when a source it read changes.
type Subscriber interface {
	// MarkDirty is called when a dependency changed.
	MarkDirty()

	// ID returns the unique identifier of the subscriber.
	ID() uint64

	// addDep records d as a source of this subscriber.
	addDep(d *dep)
}

// dep provides type-erased subscriber management.
// It is embedded in Signal, Computed and every key of a Map.
type dep struct {
	id   uint64
	subs []Subscriber
	mu   sync.RWMutex
}

func newDep() *dep {
	return &dep{id: nextID()}
}

// track subscribes the current subscriber, if any.
func (d *dep) track() {
	sub := currentSub()
	if sub == nil {
		return
	}
	if d.subscribe(sub) {
		sub.addDep(d)
	}
}

// subscribe adds s and reports whether it was not already subscribed.
func (d *dep) subscribe(s Subscriber) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	sid := s.ID()
	for _, existing := range d.subs {
		if existing.ID() == sid {
			return false
		}
	}
	d.subs = append(d.subs, s)
	return true
}

func (d *dep) unsubscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sid := s.ID()
	for i, existing := range d.subs {
		if existing.ID() == sid {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// trigger notifies all subscribers in subscription order.
func (d *dep) trigger() {
	d.mu.RLock()
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	ctx := getTrackingContext()
	if ctx.batchDepth > 0 {
		ctx.pendingUpdates = append(ctx.pendingUpdates, subs...)
		return
	}
	for _, s := range subs {
		s.MarkDirty()
	}
}
