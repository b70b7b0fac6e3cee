package future

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("future: pool closed")

// Pool runs submitted work with bounded concurrency.
type Pool struct {
	sem      *semaphore.Weighted
	size     int64
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	inFlight atomic.Int64
}

// NewPool creates a pool running at most size tasks at once.
// A non-positive size defaults to four tasks per CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU() * 4
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return int(p.size)
}

// InFlight returns the number of tasks currently holding a slot.
func (p *Pool) InFlight() int64 {
	return p.inFlight.Load()
}

// Submit schedules fn on the pool and returns a future of its result.
// Waiting for a free slot is bounded by ctx; fn receives the same ctx.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return Failed[T](ErrPoolClosed)
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	f := newFuture[T]()
	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			var zero T
			f.complete(zero, fmt.Errorf("acquire pool slot: %w", err))
			return
		}
		p.inFlight.Add(1)
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
		}()

		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				f.complete(zero, fmt.Errorf("task panicked: %v", rec))
			}
		}()

		f.complete(fn(ctx))
	}()
	return f
}

// Close stops accepting work and waits for submitted tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
