package generic

import "fmt"

// Option holds either a value (Some) or nothing (None). The zero value is None.
type Option[T any] struct {
	value    T
	hasValue bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, hasValue: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// SomeIfNonZero is Some(value) unless value is the zero value of T, in which case it is None.
func SomeIfNonZero[T comparable](value T) Option[T] {
	var zero T
	if value == zero {
		return None[T]()
	}
	return Some(value)
}

func (o Option[T]) IsSome() bool {
	return o.hasValue
}

func (o Option[T]) IsNone() bool {
	return !o.hasValue
}

// Get returns the contained value and whether there was one, like a map lookup.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.hasValue
}

// Unwrap returns the contained value, or panics if there is no value.
func (o Option[T]) Unwrap() T {
	if !o.hasValue {
		panic("tried to Unwrap() a None")
	}
	return o.value
}

// UnwrapOr returns the contained value, or other if there is no value.
func (o Option[T]) UnwrapOr(other T) T {
	if o.hasValue {
		return o.value
	}
	return other
}

func (o Option[T]) String() string {
	if o.hasValue {
		return fmt.Sprintf("Some(%v)", o.value)
	}
	return "None"
}
