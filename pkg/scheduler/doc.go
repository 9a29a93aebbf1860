// Package scheduler batches update jobs into one flush per micro-task.
//
// Jobs queued synchronously while application state changes are collected in
// a queue kept sorted by job ID and run once, in order, when the Loop drains
// its micro-tasks. Components get IDs in creation order, so an ancestor's
// render job always runs before a descendant's. Pre-phase jobs (watchers
// flushed before render) sort before the render job of the same component.
//
// # Loop
//
// Go has no micro-task queue, so Loop provides one. All runtime state is
// owned by the goroutine driving the Loop; other goroutines hand work over
// with Dispatch:
//
//	loop := scheduler.NewLoop()
//	s := scheduler.New(loop)
//
//	loop.Do(func() {
//	    count.Set(1)
//	    count.Set(2)
//	}) // one flush runs here, after the task returns
//
// # Failure Semantics
//
// A panic or error raised by a job is recovered and passed to the error
// handler; the flush continues with the next job. A job that re-queues
// itself more than the recursion limit within one flush is skipped and
// reported with the RecursiveUpdate code.
package scheduler
