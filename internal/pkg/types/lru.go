package types

import (
	"errors"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ErrInvalidCapacity is returned by NewLRU for a non-positive capacity.
var ErrInvalidCapacity = errors.New("lru capacity must be positive")

// LRU is a fixed-capacity map with access-order eviction. Get promotes a key
// to most recently used; Set evicts the least recently used entry once the
// capacity is exceeded. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	cache    *simplelru.LRU[K, V]
}

// NewLRU returns an empty LRU holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	cache, err := simplelru.NewLRU[K, V](capacity, nil)
	if err != nil {
		return nil, err
	}

	return &LRU[K, V]{capacity: capacity, cache: cache}, nil
}

// Get returns the value for key and marks it most recently used.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.Get(key)
}

// Peek returns the value for key without touching its recency.
func (l *LRU[K, V]) Peek(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.Peek(key)
}

// Set stores value under key as the most recently used entry. When this
// pushes the map over capacity, the least recently used key is evicted and
// returned with evicted=true.
func (l *LRU[K, V]) Set(key K, value V) (evictedKey K, evicted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cache.Contains(key) && l.cache.Len() >= l.capacity {
		evictedKey, _, evicted = l.cache.GetOldest()
	}

	l.cache.Add(key, value)
	return evictedKey, evicted
}

// Update applies fn to the current value for key (zero value and false when
// absent) and stores the result, as a single atomic step.
func (l *LRU[K, V]) Update(key K, fn func(current V, found bool) V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, found := l.cache.Get(key)
	l.cache.Add(key, fn(current, found))
}

// Delete removes key regardless of capacity and reports whether it existed.
func (l *LRU[K, V]) Delete(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.Remove(key)
}

// Len returns the number of stored entries.
func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.Len()
}

// Keys returns the stored keys from least to most recently used.
func (l *LRU[K, V]) Keys() []K {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.Keys()
}

// Purge removes every entry.
func (l *LRU[K, V]) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache.Purge()
}
