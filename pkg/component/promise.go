package component

import (
	"sync"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/scheduler"
)

// Promise is the result of an asynchronous setup. It settles once; its
// continuations always run on the scheduler loop, never on the goroutine
// that settled it.
type Promise struct {
	mu        sync.Mutex
	settled   bool
	value     any
	err       error
	callbacks []func(any, error)
}

// NewPromise runs fn on a new goroutine and settles with its result.
func NewPromise(fn func() (any, error)) *Promise {
	p := &Promise{}
	go func() {
		var (
			v   any
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = errors.FromPanic(r)
				}
			}()
			v, err = fn()
		}()
		p.settle(v, err)
	}()
	return p
}

// Deferred returns an unsettled promise and its settle func.
func Deferred() (*Promise, func(any, error)) {
	p := &Promise{}
	return p, p.settle
}

// Resolved returns a promise already settled with v.
func Resolved(v any) *Promise {
	return &Promise{settled: true, value: v}
}

func (p *Promise) settle(v any, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value, p.err = v, err
	cbs := p.callbacks
	p.callbacks = nil
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(v, err)
	}
}

// Then schedules fn on loop once p settles.
func (p *Promise) Then(loop *scheduler.Loop, fn func(v any, err error)) {
	cb := func(v any, err error) {
		loop.Dispatch(func() { fn(v, err) })
	}
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, cb)
		p.mu.Unlock()
		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()
	cb(v, err)
}

// Settled reports whether p has a result.
func (p *Promise) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}
