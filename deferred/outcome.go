package deferred

// Outcome is the result of a deferred computation: either a value or an error, never both.
type Outcome[T any] struct {
	value T
	err   error
}

func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Failure returns a failed outcome. A nil error is replaced with ErrNilFailure, so the
// outcome stays a failure anyway.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrNilFailure
	}

	return Outcome[T]{err: err}
}

// Succeeded tells which of the variants the outcome holds.
func (o Outcome[T]) Succeeded() bool {
	return o.err == nil
}

func (o Outcome[T]) Value() T {
	return o.value
}

func (o Outcome[T]) Err() error {
	return o.err
}

// Unwrap returns both fields the Go way.
func (o Outcome[T]) Unwrap() (T, error) {
	return o.value, o.err
}
