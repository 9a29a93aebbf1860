package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/internal/errors"
)

// DefaultRecursionLimit is the number of times one job may run in a flush.
const DefaultRecursionLimit = 100

const defaultTracerName = "vrt/scheduler"

// ErrorHandler receives errors caught while running jobs.
type ErrorHandler func(err error, owner any, code errors.ErrorCode)

// Observer is notified about flush activity.
type Observer interface {
	// FlushDone is called after a flush ran jobs jobs in d.
	FlushDone(jobs int, d time.Duration)

	// RecursionLimitExceeded is called when a job is skipped because it
	// re-queued itself too often.
	RecursionLimitExceeded(job *Job)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithErrorHandler sets the handler that receives job failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Scheduler) {
		s.onError = h
	}
}

// WithRecursionLimit overrides DefaultRecursionLimit.
func WithRecursionLimit(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.recursionLimit = n
		}
	}
}

// WithLogger sets the logger used when no error handler is set.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithObserver sets the flush observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = t
	}
}

// Scheduler owns the job queue and the post-flush queue.
// It must only be used from the goroutine driving its Loop.
type Scheduler struct {
	loop *Loop

	queue      []*Job
	flushIndex int

	pendingPost    []*Job
	activePost     []*Job
	postFlushIndex int

	// flushQueued is set from the moment a flush is scheduled until it
	// finished draining. It gates re-entrant scheduling.
	flushQueued bool
	seen        map[*Job]int
	afterFlush  []func()
	jobsRun     int

	recursionLimit int
	onError        ErrorHandler
	logger         *slog.Logger
	observer       Observer
	tracer         trace.Tracer
}

// New creates a scheduler that flushes on loop.
func New(loop *Loop, opts ...Option) *Scheduler {
	s := &Scheduler{
		loop:           loop,
		flushIndex:     -1,
		recursionLimit: DefaultRecursionLimit,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(defaultTracerName)
	}
	return s
}

// Loop returns the loop the scheduler flushes on.
func (s *Scheduler) Loop() *Loop {
	return s.loop
}

// SetErrorHandler replaces the error handler.
func (s *Scheduler) SetErrorHandler(h ErrorHandler) {
	s.onError = h
}

// QueueJob adds job to the queue unless it is already queued, and schedules
// a flush if none is pending.
func (s *Scheduler) QueueJob(job *Job) {
	if job.Has(Queued) {
		return
	}

	n := len(s.queue)
	if n == 0 || (!job.Has(Pre) && job.ID >= s.queue[n-1].ID) {
		s.queue = append(s.queue, job)
	} else {
		s.queue = slices.Insert(s.queue, s.findInsertionIndex(job.ID), job)
	}
	job.Set(Queued)
	s.queueFlush()
}

// findInsertionIndex binary-searches the unflushed part of the queue for the
// position of id. Existing pre jobs with the same id stay in front.
func (s *Scheduler) findInsertionIndex(id int) int {
	start := s.flushIndex + 1
	end := len(s.queue)
	for start < end {
		middle := int(uint(start+end) >> 1)
		mj := s.queue[middle]
		if mj.ID < id || (mj.ID == id && mj.Has(Pre)) {
			start = middle + 1
		} else {
			end = middle
		}
	}
	return start
}

func (s *Scheduler) queueFlush() {
	if s.flushQueued {
		return
	}
	s.flushQueued = true
	s.loop.Microtask(s.flush)
}

// QueuePostFlushCb adds job to the post-flush queue.
func (s *Scheduler) QueuePostFlushCb(job *Job) {
	switch {
	case s.activePost != nil && job.ID == FirstID:
		s.activePost = slices.Insert(s.activePost, s.postFlushIndex+1, job)
	case !job.Has(Queued):
		s.pendingPost = append(s.pendingPost, job)
		job.Set(Queued)
	}
	s.queueFlush()
}

// QueuePostFlushCbs adds lifecycle hook jobs to the post-flush queue.
// Hooks are only queued by already deduplicated render jobs, so they skip
// the queued check.
func (s *Scheduler) QueuePostFlushCbs(jobs []*Job) {
	if len(jobs) == 0 {
		return
	}
	s.pendingPost = append(s.pendingPost, jobs...)
	s.queueFlush()
}

// NextTick runs fn after the pending flush, or on the next micro-task if
// no flush is pending.
func (s *Scheduler) NextTick(fn func()) {
	if s.flushQueued {
		s.afterFlush = append(s.afterFlush, fn)
		return
	}
	s.loop.Microtask(fn)
}

// IsFlushing reports whether a flush is scheduled or running.
func (s *Scheduler) IsFlushing() bool {
	return s.flushQueued
}

// QueueLen returns the number of jobs waiting in the main queue.
func (s *Scheduler) QueueLen() int {
	return len(s.queue)
}

// FlushPreFlushCbs runs every queued pre job right away.
func (s *Scheduler) FlushPreFlushCbs() {
	s.flushPre(false, 0)
}

// FlushPreFlushCbsFor runs the queued pre jobs with the given ID right away.
// The renderer calls it before re-rendering a component so the component's
// own watchers observe the new props first.
func (s *Scheduler) FlushPreFlushCbsFor(id int) {
	s.flushPre(true, id)
}

func (s *Scheduler) flushPre(filter bool, id int) {
	seen := s.seenMap()
	for i := s.flushIndex + 1; i < len(s.queue); i++ {
		job := s.queue[i]
		if !job.Has(Pre) {
			continue
		}
		if filter && job.ID != id {
			continue
		}
		if s.checkRecursion(seen, job) {
			continue
		}
		s.queue = slices.Delete(s.queue, i, i+1)
		i--
		if job.Has(AllowRecurse) {
			job.Clear(Queued)
		}
		s.call(job)
		if !job.Has(AllowRecurse) {
			job.Clear(Queued)
		}
	}
}

// FlushPostFlushCbs drains the post-flush queue right away.
func (s *Scheduler) FlushPostFlushCbs() {
	s.flushPost(s.seenMap())
}

func (s *Scheduler) flushPost(seen map[*Job]int) {
	if len(s.pendingPost) == 0 {
		return
	}

	deduped := make([]*Job, 0, len(s.pendingPost))
	dup := make(map[*Job]bool, len(s.pendingPost))
	for _, job := range s.pendingPost {
		if !dup[job] {
			dup[job] = true
			deduped = append(deduped, job)
		}
	}
	slices.SortStableFunc(deduped, func(a, b *Job) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	s.pendingPost = nil

	// Called from inside a running post flush: append and let it drain.
	if s.activePost != nil {
		s.activePost = append(s.activePost, deduped...)
		return
	}

	s.activePost = deduped
	defer func() {
		s.activePost = nil
		s.postFlushIndex = 0
	}()
	for s.postFlushIndex = 0; s.postFlushIndex < len(s.activePost); s.postFlushIndex++ {
		job := s.activePost[s.postFlushIndex]
		if s.checkRecursion(seen, job) {
			continue
		}
		if job.Has(AllowRecurse) {
			job.Clear(Queued)
		}
		if !job.Has(Disposed) {
			s.call(job)
		}
		job.Clear(Queued)
	}
}

// flush is the micro-task scheduled by queueFlush.
func (s *Scheduler) flush() {
	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "scheduler.flush")
	s.seen = make(map[*Job]int)
	s.jobsRun = 0

	defer func() {
		span.SetAttributes(attribute.Int("vrt.jobs", s.jobsRun))
		span.End()
		if s.observer != nil {
			s.observer.FlushDone(s.jobsRun, time.Since(start))
		}
		s.seen = nil
		s.flushQueued = false

		waiters := s.afterFlush
		s.afterFlush = nil
		for _, fn := range waiters {
			fn()
		}
	}()

	for {
		s.flushJobs(s.seen, span)
		if len(s.queue) == 0 && len(s.pendingPost) == 0 {
			return
		}
	}
}

func (s *Scheduler) flushJobs(seen map[*Job]int, span trace.Span) {
	defer func() {
		for ; s.flushIndex >= 0 && s.flushIndex < len(s.queue); s.flushIndex++ {
			s.queue[s.flushIndex].Clear(Queued)
		}
		s.flushIndex = -1
		s.queue = s.queue[:0]
		s.flushPost(seen)
	}()

	for s.flushIndex = 0; s.flushIndex < len(s.queue); s.flushIndex++ {
		job := s.queue[s.flushIndex]
		if job.Has(Disposed) {
			continue
		}
		if s.checkRecursion(seen, job) {
			span.SetStatus(codes.Error, "recursive update")
			continue
		}
		if job.Has(AllowRecurse) {
			job.Clear(Queued)
		}
		s.call(job)
		if !job.Has(AllowRecurse) {
			job.Clear(Queued)
		}
	}
}

func (s *Scheduler) seenMap() map[*Job]int {
	if s.seen != nil {
		return s.seen
	}
	return make(map[*Job]int)
}

// checkRecursion counts one more run of job and reports whether the job
// exceeded the recursion limit.
func (s *Scheduler) checkRecursion(seen map[*Job]int, job *Job) bool {
	count := seen[job]
	if count > s.recursionLimit {
		job.Clear(Queued)
		err := errors.New(errors.RecursiveUpdate)
		err.Wrapped = errors.Errorf("job %q re-queued itself more than %d times in one flush", job.Name, s.recursionLimit)
		if s.observer != nil {
			s.observer.RecursionLimitExceeded(job)
		}
		s.report(err, job.Owner, errors.RecursiveUpdate)
		return true
	}
	seen[job] = count + 1
	return false
}

// call runs job, routing panics and errors to the error handler.
func (s *Scheduler) call(job *Job) {
	s.jobsRun++
	code := errors.Scheduler
	if job.Owner != nil {
		code = errors.ComponentUpdate
	}
	defer func() {
		if r := recover(); r != nil {
			s.report(errors.FromPanic(r), job.Owner, code)
		}
	}()
	if err := job.Fn(); err != nil {
		s.report(err, job.Owner, code)
	}
}

func (s *Scheduler) report(err error, owner any, code errors.ErrorCode) {
	if s.onError != nil {
		s.onError(err, owner, code)
		return
	}
	s.logger.Error("scheduler job failed",
		slog.String("code", code.String()),
		slog.Any("error", err),
	)
}
