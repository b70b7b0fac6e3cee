// Package future provides a single-assignment result type and the bounded
// task pool that resolves it.
package future

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

// Future holds a value that becomes available exactly once.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already completed with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a future already completed with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// complete resolves the future. Calls after the first are ignored.
func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx ends. Ending ctx only stops the
// wait; the underlying work keeps its own deadline.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Await blocks for at most d. A non-positive d waits until resolution.
func (f *Future[T]) Await(d time.Duration) (T, error) {
	if d <= 0 {
		<-f.done
		return f.val, f.err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.val, f.err
	case <-timer.C:
		var zero T
		return zero, fmt.Errorf("await result after %s: %w", d, apperrors.ErrTimeout)
	}
}

// Poll reports the result without blocking. ok is false while pending.
func (f *Future[T]) Poll() (v T, err error, ok bool) {
	select {
	case <-f.done:
		return f.val, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Map derives a future that applies fn to a successful result of f.
// Failures pass through untouched. A panicking fn fails the derived future.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				var zero U
				out.complete(zero, fmt.Errorf("map panicked: %v", rec))
			}
		}()

		<-f.done
		if f.err != nil {
			var zero U
			out.complete(zero, f.err)
			return
		}
		out.complete(fn(f.val))
	}()
	return out
}
