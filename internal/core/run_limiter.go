package core

// run_limiter.go bounds how many generation runs execute at once.
//
// Each run holds an open workbook in memory, so the number of parallel runs
// is capped. A caller that cannot get a slot waits up to maxWait and then
// fails with ErrTooManyRuns. Drain blocks until every slot is free and is
// used on shutdown.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyRuns is returned when no run slot frees up within the wait time.
var ErrTooManyRuns = errors.New("too many concurrent runs, please try again later")

const (
	// DefaultMaxConcurrentRuns is the default number of parallel runs.
	DefaultMaxConcurrentRuns = 3

	// DefaultMaxWaitTime is how long a run waits for a slot before rejecting.
	DefaultMaxWaitTime = 30 * time.Second
)

// RunLimiter is a counting semaphore for generation runs.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewRunLimiter allows at most maxConcurrent runs at a time.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the configured time.
// Every successful Acquire must be paired with Release.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyRuns
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *RunLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active is the number of runs currently holding a slot.
func (l *RunLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity is the maximum number of parallel runs.
func (l *RunLimiter) Capacity() int {
	return cap(l.slots)
}

// Drain blocks until no run holds a slot or ctx is done.
func (l *RunLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a point-in-time view of a RunLimiter.
type LimiterStatus struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// Status reports current usage for the health endpoint.
func (l *RunLimiter) Status() LimiterStatus {
	return LimiterStatus{Active: l.Active(), Capacity: l.Capacity()}
}
