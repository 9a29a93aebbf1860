package scheduler

import "math"

// Flags describe the queue state of a job.
type Flags uint8

const (
	// Queued is set while the job sits in a queue.
	Queued Flags = 1 << iota

	// Pre marks a job that must run before the render job with the same ID.
	Pre

	// AllowRecurse lets a job re-queue itself while it runs.
	AllowRecurse

	// Disposed cancels a job. Disposed jobs are skipped.
	Disposed
)

const (
	// NoID marks a job without an ordering key. Such jobs sort last.
	NoID = math.MaxInt

	// FirstID sorts a post-flush job before every other job. Post-flush jobs
	// with this ID queued during a post flush run next.
	FirstID = -1
)

// Job is a deferred, deduplicated unit of update work.
type Job struct {
	// ID orders the job within a flush. Component jobs use the component UID.
	ID int

	Flags Flags

	// Fn is the work. A returned error is passed to the error handler.
	Fn func() error

	// Owner is reported to the error handler alongside failures.
	Owner any

	// Name labels the job in traces and logs.
	Name string
}

// NewJob creates a job without an ordering key.
func NewJob(fn func() error) *Job {
	return &Job{ID: NoID, Fn: fn}
}

// Has reports whether all bits of f are set.
func (j *Job) Has(f Flags) bool {
	return j.Flags&f == f
}

// Set sets the bits of f.
func (j *Job) Set(f Flags) {
	j.Flags |= f
}

// Clear clears the bits of f.
func (j *Job) Clear(f Flags) {
	j.Flags &^= f
}

// Dispose cancels the job.
func (j *Job) Dispose() {
	j.Flags |= Disposed
}
