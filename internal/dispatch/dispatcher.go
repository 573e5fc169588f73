// Package dispatch provides the rate-limited executor that shapes traffic to
// the model API: at most maxConcurrent units of work run at once, and
// successive unit starts are separated by a minimum delay measured globally
// across all workers, not per worker.
package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"oracle/internal/errors"
)

// Dispatcher enforces the two throughput constraints. It never retries;
// failure classification and retries belong to the caller. Create one per
// run and discard it at run end.
type Dispatcher struct {
	sem   *semaphore.Weighted
	delay time.Duration

	mu        sync.Mutex
	nextStart time.Time

	nowFunc   func() time.Time                                  // injectable clock for testing
	sleepFunc func(ctx context.Context, d time.Duration) error // injectable sleep for testing
}

// New creates a dispatcher. maxConcurrent must be positive; a negative
// delay is clamped to zero.
func New(maxConcurrent int, delay time.Duration) (*Dispatcher, error) {
	if maxConcurrent <= 0 {
		return nil, errors.InvalidInput("maxConcurrent must be a positive integer")
	}
	if delay < 0 {
		delay = 0
	}

	return &Dispatcher{
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		delay:     delay,
		nowFunc:   time.Now,
		sleepFunc: sleepContext,
	}, nil
}

// Do runs work under the admission gate: it blocks until a concurrency slot
// is free and this unit's start time arrives, then executes work. Every
// admitted unit runs to completion; a cancelled context before admission
// returns a CANCELLED error without running work.
func (d *Dispatcher) Do(ctx context.Context, work func(ctx context.Context) error) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return errors.Cancelled("dispatcher stopped admitting work", err)
	}
	defer d.sem.Release(1)

	if err := d.waitTurn(ctx); err != nil {
		return err
	}
	return work(ctx)
}

// Pending is the handle for a unit submitted asynchronously
type Pending struct {
	done chan struct{}
	err  error
}

// Wait blocks until the unit has finished and returns its error
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Submit schedules work asynchronously and returns a handle for it
func (d *Dispatcher) Submit(ctx context.Context, work func(ctx context.Context) error) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.err = d.Do(ctx, work)
	}()
	return p
}

// waitTurn reserves the next global start slot and sleeps until it arrives.
// The reservation happens under the lock so concurrent workers serialize
// their start times; the sleep happens outside it.
func (d *Dispatcher) waitTurn(ctx context.Context) error {
	d.mu.Lock()
	now := d.nowFunc()
	start := d.nextStart
	if start.Before(now) {
		start = now
	}
	d.nextStart = start.Add(d.delay)
	d.mu.Unlock()

	if wait := start.Sub(now); wait > 0 {
		if err := d.sleepFunc(ctx, wait); err != nil {
			return errors.Cancelled("dispatcher interrupted while pacing", err)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
