// Package cachestore is the presentation cache consumers read wallet
// collections from. Writes go through an updater so each key is mutated as a
// read-modify-write with last-writer-wins semantics.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNotFound is returned by Read for a missing key.
	ErrNotFound = errors.New("cache key not found")

	// ErrSkipWrite may be returned by an Updater to leave the key untouched.
	ErrSkipWrite = errors.New("skip cache write")
)

// Updater computes the new value of a key from its current one.
type Updater func(old []byte, found bool) ([]byte, error)

// Store is a key/value cache with read-modify-write updates.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)

	// Write applies fn to the current value of key and stores the result.
	// If fn returns ErrSkipWrite nothing is stored and Write returns nil.
	Write(ctx context.Context, key string, fn Updater) error

	// Invalidate drops keys so the next read misses.
	Invalidate(ctx context.Context, keys ...string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Write(_ context.Context, key string, fn Updater) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, found := m.values[key]
	next, err := fn(old, found)
	if errors.Is(err, ErrSkipWrite) {
		return nil
	}
	if err != nil {
		return err
	}

	m.values[key] = next
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Typed is a Store view that encodes values of T with msgpack.
type Typed[T any] struct {
	store Store
}

// NewTyped wraps store.
func NewTyped[T any](store Store) Typed[T] {
	return Typed[T]{store: store}
}

// Read decodes the value of key. It returns ErrNotFound for a missing key.
func (t Typed[T]) Read(ctx context.Context, key string) (T, error) {
	var v T

	raw, err := t.store.Read(ctx, key)
	if err != nil {
		return v, err
	}

	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// Write applies fn to the decoded value of key. A value that fails to decode
// is passed to fn as not found.
func (t Typed[T]) Write(ctx context.Context, key string, fn func(old T, found bool) (T, error)) error {
	return t.store.Write(ctx, key, func(raw []byte, found bool) ([]byte, error) {
		var old T
		if found {
			if err := msgpack.Unmarshal(raw, &old); err != nil {
				var zero T
				old, found = zero, false
			}
		}

		next, err := fn(old, found)
		if err != nil {
			return nil, err
		}

		return msgpack.Marshal(next)
	})
}

// Invalidate drops keys.
func (t Typed[T]) Invalidate(ctx context.Context, keys ...string) error {
	return t.store.Invalidate(ctx, keys...)
}
