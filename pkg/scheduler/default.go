package scheduler

import "sync"

var (
	defaultOnce      sync.Once
	defaultScheduler *Scheduler
)

// Default returns the process-wide scheduler, creating it and its Loop on
// first use.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultScheduler = New(NewLoop())
	})
	return defaultScheduler
}
