package generic

import "fmt"

// Result pairs a value with the error from the call that produced it, so both can travel through a channel.
type Result[T any] struct {
	Value T
	Error error
}

func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Error: err}
}

func (r Result[T]) IsOk() bool {
	return r.Error == nil
}

func (r Result[T]) IsErr() bool {
	return r.Error != nil
}

// Parts splits the Result back into a (T, error) pair.
func (r Result[T]) Parts() (T, error) {
	return r.Value, r.Error
}

// Unwrap returns value, or panics if err is non-nil.
func Unwrap[T any](value T, err error) T {
	if err != nil {
		panic(fmt.Errorf("tried to Unwrap() an Err: %w", err))
	}
	return value
}

// Unwrap_ is like Unwrap, but for calls that return only an error.
func Unwrap_(err error) {
	if err != nil {
		panic(fmt.Errorf("tried to Unwrap() an Err: %w", err))
	}
}
