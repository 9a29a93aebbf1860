package component

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
)

// Flush selects when a watcher callback runs relative to rendering.
type Flush uint8

const (
	// FlushPre runs before the owning component re-renders.
	FlushPre Flush = iota
	// FlushPost runs after the flush patched the host tree.
	FlushPost
	// FlushSync runs synchronously on every change.
	FlushSync
)

// WatchOptions configures Watch and WatchEffect.
type WatchOptions struct {
	Immediate bool
	Once      bool
	Flush     Flush

	// Equal replaces the default change check for Watch.
	Equal func(a, b any) bool
}

// OnCleanup registers a func to run before the next callback and when the
// watcher stops.
type OnCleanup func(fn func())

// StopHandle stops a watcher.
type StopHandle func()

// Watch calls cb with the new and old value of source whenever it changes.
func Watch(source func() any, cb func(value, old any, onCleanup OnCleanup), opts ...WatchOptions) StopHandle {
	var o WatchOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return doWatch(source, cb, nil, o)
}

// WatchEffect runs fn immediately and again whenever something it read
// changes.
func WatchEffect(fn func(onCleanup OnCleanup), opts ...WatchOptions) StopHandle {
	var o WatchOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return doWatch(nil, nil, fn, o)
}

// WatchPostEffect is WatchEffect with FlushPost.
func WatchPostEffect(fn func(onCleanup OnCleanup)) StopHandle {
	return WatchEffect(fn, WatchOptions{Flush: FlushPost})
}

type watcher struct {
	inst    *Instance
	sched   *scheduler.Scheduler
	effect  *reactive.Effect
	job     *scheduler.Job
	cleanup []func()

	value    any
	oldValue any
	ran      bool
}

func doWatch(source func() any, cb func(any, any, OnCleanup), effectFn func(OnCleanup), o WatchOptions) StopHandle {
	inst := CurrentInstance()
	w := &watcher{inst: inst}
	if inst != nil {
		w.sched = inst.Scheduler()
	} else {
		w.sched = scheduler.Default()
	}

	onCleanup := OnCleanup(func(fn func()) {
		w.cleanup = append(w.cleanup, fn)
	})

	var getter func()
	if source != nil {
		getter = func() {
			CallWithErrorHandling(func() { w.value = source() }, inst, errors.WatchGetter)
		}
	} else {
		getter = func() {
			w.runCleanup()
			CallWithErrorHandling(func() { effectFn(onCleanup) }, inst, errors.WatchCallback)
		}
	}

	equal := o.Equal
	if equal == nil {
		equal = func(a, b any) bool { return !reactive.HasChanged(a, b) }
	}

	var stop StopHandle
	w.effect = reactive.NewEffect(getter)
	w.effect.OnStop = w.runCleanup

	run := func(immediateFirstRun bool) {
		if !w.effect.Active() || (!w.effect.Dirty() && !immediateFirstRun) {
			return
		}
		if cb == nil {
			w.effect.Run()
			return
		}
		w.effect.Run()
		if !w.ran || !equal(w.value, w.oldValue) {
			w.runCleanup()
			old := w.oldValue
			if !w.ran {
				old = nil
			}
			value := w.value
			CallWithErrorHandling(func() { cb(value, old, onCleanup) }, inst, errors.WatchCallback)
			w.oldValue = value
			w.ran = true
			if o.Once {
				stop()
			}
		}
	}

	w.job = &scheduler.Job{ID: scheduler.NoID, Name: "watcher"}
	if inst != nil {
		w.job.Owner = inst
	}
	w.job.Fn = func() error {
		run(false)
		return nil
	}
	if cb != nil {
		w.job.Set(scheduler.AllowRecurse)
	}

	switch o.Flush {
	case FlushSync:
		w.effect.Scheduler = func() { run(false) }
	case FlushPost:
		w.effect.Scheduler = func() { w.queuePost(w.job) }
	default:
		w.job.Set(scheduler.Pre)
		w.job.ID = scheduler.FirstID
		if inst != nil {
			w.job.ID = inst.UID
		}
		w.effect.Scheduler = func() { w.sched.QueueJob(w.job) }
	}

	stop = func() {
		w.effect.Stop()
		w.job.Dispose()
	}

	switch {
	case cb != nil && o.Immediate:
		run(true)
	case cb != nil:
		w.effect.Run()
		w.oldValue = w.value
		w.ran = true
	case o.Flush == FlushPost:
		w.queuePost(scheduler.NewJob(func() error {
			w.effect.Run()
			return nil
		}))
	default:
		w.effect.Run()
	}
	return stop
}

func (w *watcher) queuePost(job *scheduler.Job) {
	if w.inst != nil && w.inst.Suspense != nil && w.inst.Suspense.QueueEffect(job) {
		return
	}
	w.sched.QueuePostFlushCb(job)
}

func (w *watcher) runCleanup() {
	fns := w.cleanup
	w.cleanup = nil
	for _, fn := range fns {
		CallWithErrorHandling(fn, w.inst, errors.WatchCleanup)
	}
}

// WatchSyncEffect is WatchEffect with FlushSync.
func WatchSyncEffect(fn func(onCleanup OnCleanup)) StopHandle {
	return WatchEffect(fn, WatchOptions{Flush: FlushSync})
}
