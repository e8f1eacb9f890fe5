// Package chflow holds small channel helpers: blocking receive/send that give
// up when a context is done, and a non-blocking send.
package chflow

import "context"

// Receive blocks until ch yields a value or ctx is done. ok is false when ctx
// ended first or ch was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (v T, ok bool) {
	select {
	case <-ctx.Done():
		return v, false
	case v, ok = <-ch:
		return v, ok
	}
}

// Send blocks until v is delivered on ch or ctx is done, reporting whether v
// was delivered.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// TrySend sends v without blocking. It returns false when the channel has no
// free buffer slot or waiting receiver.
func TrySend[T any](ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}
