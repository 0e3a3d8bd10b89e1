package pubsub

import (
	"context"
	"sync"
)

// Store owns one value and publishes it to subscribers whenever it
// changes. Plugins keep their session state in a Store so views can observe
// it without reaching into the plugin.
type Store[T any] struct {
	mu     sync.RWMutex
	value  T
	broker *Broker[T]
}

// NewStore creates a store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, broker: NewBroker[T]()}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.broker.Publish(UpdatedEvent, v)
}

// Update applies fn to the current value under the lock and publishes the
// result.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	s.mu.Unlock()
	s.broker.Publish(UpdatedEvent, v)
	return v
}

// Subscribe receives every value set after the call.
func (s *Store[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return s.broker.Subscribe(ctx)
}

// Close ends all subscriptions.
func (s *Store[T]) Close() { s.broker.Close() }
