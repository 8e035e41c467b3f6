// Package pool provides the bounded worker pool used to run blocking
// summarization calls without stalling the scan loop.
package pool

import (
	"context"
	"sync"
	"time"
)

// Pool runs tasks on a bounded number of workers. Submit blocks while the
// pool is full, so at most `capacity` tasks run at once.
type Pool struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a pool with the given capacity and per-task timeout.
// A timeout of zero disables the per-task deadline.
func New(capacity int, timeout time.Duration) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		sem:     make(chan struct{}, capacity),
		timeout: timeout,
	}
}

// Submit schedules a task. It blocks until a worker slot is free or ctx is
// cancelled; the returned error is non-nil only in the cancellation case.
// Each task runs with its own deadline derived from ctx.
func (p *Pool) Submit(ctx context.Context, task func(ctx context.Context)) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()

		taskCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		task(taskCtx)
	}()

	return nil
}

// Wait blocks until all submitted tasks have finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
