package worker

import (
	"context"
	"fmt"
)

// Future holds the outcome of a function submitted with Go.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go submits fn to p. A submission error completes the future immediately.
func Go[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	err := p.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("task panicked: %v", r)
			}
			close(f.done)
		}()
		f.val, f.err = fn()
	})
	if err != nil {
		f.err = err
		close(f.done)
	}
	return f
}

// Await blocks until the function finished or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
