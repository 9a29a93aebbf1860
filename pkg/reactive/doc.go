// Package reactive provides the dependency-tracking primitives the runtime
// consumes: signals, computed values, a shallow reactive map, effects with a
// scheduler hook, and effect scopes.
//
// # Tracking
//
// Reading a Signal, Computed or Map key while an Effect or Computed is
// running subscribes that subscriber to the source. Writing the source marks
// every subscriber dirty. An Effect with a Scheduler function calls the
// scheduler instead of re-running synchronously; the component renderer uses
// this to enqueue render jobs.
//
// Tracking state is goroutine-local. Every function that changes the active
// subscriber, the active scope or the tracking switch saves the previous
// value and restores it when it returns, so calls nest safely.
//
// # Scopes
//
// A Scope owns the effects, computed values and child scopes created while
// it is active. Stopping a scope stops everything it owns in one operation:
//
//	scope := reactive.NewScope(false)
//	scope.Run(func() {
//	    count := reactive.NewSignal(0)
//	    e := reactive.NewEffect(func() { fmt.Println(count.Get()) })
//	    e.Run()
//	})
//	scope.Stop() // e no longer reacts to count
package reactive
