package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackingContext holds the reactive state of one goroutine.
type trackingContext struct {
	// activeSub is the subscriber collecting dependencies, or nil.
	activeSub Subscriber

	// shouldTrack is false while tracking is paused.
	shouldTrack bool

	// trackStack saves shouldTrack across PauseTracking/ResetTracking.
	trackStack []bool

	// activeScope owns newly created effects.
	activeScope *Scope

	batchDepth     int
	pendingUpdates []Subscriber
}

var contexts sync.Map // int64 -> *trackingContext

func getTrackingContext() *trackingContext {
	gid := goid.Get()
	if ctx, ok := contexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{shouldTrack: true}
	contexts.Store(gid, ctx)
	return ctx
}

func setActiveSub(s Subscriber) Subscriber {
	ctx := getTrackingContext()
	old := ctx.activeSub
	ctx.activeSub = s
	return old
}

// currentSub returns the subscriber that should record a read, or nil.
func currentSub() Subscriber {
	ctx := getTrackingContext()
	if !ctx.shouldTrack {
		return nil
	}
	return ctx.activeSub
}

// PauseTracking stops dependency collection until the matching ResetTracking.
func PauseTracking() {
	ctx := getTrackingContext()
	ctx.trackStack = append(ctx.trackStack, ctx.shouldTrack)
	ctx.shouldTrack = false
}

// EnableTracking re-enables dependency collection until the matching
// ResetTracking.
func EnableTracking() {
	ctx := getTrackingContext()
	ctx.trackStack = append(ctx.trackStack, ctx.shouldTrack)
	ctx.shouldTrack = true
}

// ResetTracking restores the tracking state saved by the last PauseTracking
// or EnableTracking.
func ResetTracking() {
	ctx := getTrackingContext()
	n := len(ctx.trackStack)
	if n == 0 {
		ctx.shouldTrack = true
		return
	}
	ctx.shouldTrack = ctx.trackStack[n-1]
	ctx.trackStack = ctx.trackStack[:n-1]
}

// Untracked runs fn without collecting dependencies.
func Untracked(fn func()) {
	PauseTracking()
	defer ResetTracking()
	fn()
}

// IsTracking reports whether a read right now would be recorded.
func IsTracking() bool {
	return currentSub() != nil
}

// CurrentScope returns the active scope of the calling goroutine.
func CurrentScope() *Scope {
	return getTrackingContext().activeScope
}

func setActiveScope(s *Scope) *Scope {
	ctx := getTrackingContext()
	old := ctx.activeScope
	ctx.activeScope = s
	return old
}

// ReleaseGoroutine drops the tracking state of the calling goroutine.
// Goroutines that used reactive values and are about to exit may call it.
func ReleaseGoroutine() {
	contexts.Delete(goid.Get())
}
