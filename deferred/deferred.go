// Package deferred implements a single-assignment asynchronous result. The completing party
// resolves or rejects it exactly once, the consuming party registers exactly one continuation.
// Whichever happens last fires the continuation, in the goroutine that did it.
package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrAlreadyCompleted  = errors.New("deferred: already completed")
	ErrAlreadyRegistered = errors.New("deferred: continuation is already registered")
	ErrNilFailure        = errors.New("deferred: rejected with nil error")
)

type Deferred[T any] struct {
	mu         sync.Mutex
	done       chan struct{}
	outcome    Outcome[T]
	completed  bool
	registered bool
	callback   func(Outcome[T])
}

func New[T any]() *Deferred[T] {
	return &Deferred[T]{
		done: make(chan struct{}),
	}
}

// Resolved returns an already successfully completed Deferred.
func Resolved[T any](value T) *Deferred[T] {
	d := New[T]()
	_ = d.Resolve(value)
	return d
}

// Failed returns an already failed Deferred.
func Failed[T any](err error) *Deferred[T] {
	d := New[T]()
	_ = d.Reject(err)
	return d
}

// Go runs fn in a new goroutine and completes the returned Deferred with its result. A panic
// inside fn rejects the Deferred instead of crashing the process.
func Go[T any](fn func() (T, error)) *Deferred[T] {
	d := New[T]()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = d.Reject(fmt.Errorf("deferred: computation panicked: %v", r))
			}
		}()

		value, err := fn()
		if err != nil {
			_ = d.Reject(err)
			return
		}

		_ = d.Resolve(value)
	}()

	return d
}

// Resolve completes the Deferred successfully.
func (d *Deferred[T]) Resolve(value T) error {
	return d.Complete(Success(value))
}

// Reject completes the Deferred with an error.
func (d *Deferred[T]) Reject(err error) error {
	return d.Complete(Failure[T](err))
}

// Complete seals the outcome. Every call after the first one returns ErrAlreadyCompleted and
// changes nothing.
func (d *Deferred[T]) Complete(outcome Outcome[T]) error {
	d.mu.Lock()
	if d.completed {
		d.mu.Unlock()
		return ErrAlreadyCompleted
	}

	d.completed = true
	d.outcome = outcome
	callback := d.callback
	d.callback = nil
	d.mu.Unlock()

	close(d.done)

	if callback != nil {
		callback(outcome)
	}

	return nil
}

// Subscribe registers the continuation. If the Deferred is already completed, the callback
// is called immediately in the caller's goroutine. Only one continuation may be registered.
func (d *Deferred[T]) Subscribe(callback func(Outcome[T])) error {
	d.mu.Lock()
	if d.registered {
		d.mu.Unlock()
		return ErrAlreadyRegistered
	}

	d.registered = true

	if !d.completed {
		d.callback = callback
		d.mu.Unlock()
		return nil
	}

	outcome := d.outcome
	d.mu.Unlock()
	callback(outcome)

	return nil
}

// Then is Subscribe split into two outcome channels. Exactly one of them is called.
func (d *Deferred[T]) Then(onSuccess func(T), onFailure func(error)) error {
	return d.Subscribe(func(outcome Outcome[T]) {
		if outcome.Succeeded() {
			onSuccess(outcome.Value())
		} else {
			onFailure(outcome.Err())
		}
	})
}

// Done returns a channel, which is closed once the Deferred is completed.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the Deferred is completed or the context is done. It doesn't count as
// a registered continuation.
func (d *Deferred[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		d.mu.Lock()
		outcome := d.outcome
		d.mu.Unlock()

		return outcome.Unwrap()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
