package application

import (
	"context"
	"fmt"
)

// State is the phase of a Resource.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Resource is the outcome of an operation as presented to a caller:
// still loading, a value, or an error message.
type Resource[T any] struct {
	state   State
	value   T
	message string
}

func Loading[T any]() Resource[T] {
	return Resource[T]{state: StateLoading}
}

func Success[T any](value T) Resource[T] {
	return Resource[T]{state: StateSuccess, value: value}
}

func Failure[T any](message string) Resource[T] {
	return Resource[T]{state: StateError, message: message}
}

// FromResult maps a (value, error) pair to Success or Failure.
func FromResult[T any](value T, err error) Resource[T] {
	if err != nil {
		return Failure[T](err.Error())
	}
	return Success(value)
}

func (r Resource[T]) State() State { return r.state }

// Value returns the value and whether r is a Success.
func (r Resource[T]) Value() (T, bool) {
	return r.value, r.state == StateSuccess
}

// Message returns the error message of a Failure.
func (r Resource[T]) Message() string { return r.message }

// Match calls the handler for r's state. It panics on a state outside the three defined ones.
func (r Resource[T]) Match(loading func(), success func(T), failure func(string)) {
	switch r.state {
	case StateLoading:
		loading()
	case StateSuccess:
		success(r.value)
	case StateError:
		failure(r.message)
	default:
		panic(fmt.Sprintf("resource: unknown state %v", r.state))
	}
}

// Run emits Loading, then the terminal state of fn, then closes the channel.
// The channel is buffered so Run never leaks a goroutine if nobody reads.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Resource[T] {
	out := make(chan Resource[T], 2)
	out <- Loading[T]()
	go func() {
		defer close(out)
		out <- FromResult(fn(ctx))
	}()
	return out
}
