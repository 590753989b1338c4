package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errNotOpen = errors.New("not open")

// entry guards one registered value. Handlers for the same id run one at a time.
type entry[T any] struct {
	mu    sync.Mutex
	value T
	// lastUsed is guarded by the registry lock.
	lastUsed time.Time
}

// registry holds server-side state (editors, sessions) under random ids.
// Every lookup counts as a use.
type registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	now     func() time.Time
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{entries: make(map[string]*entry[T]), now: time.Now}
}

func (r *registry[T]) add(v T) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries[id] = &entry[T]{value: v, lastUsed: r.now()}
	r.mu.Unlock()
	return id
}

func (r *registry[T]) lookup(id string) (*entry[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if ok {
		e.lastUsed = r.now()
	}
	return e, ok
}

// with runs fn holding the entry lock.
func (r *registry[T]) with(id string, fn func(T) error) error {
	e, ok := r.lookup(id)
	if !ok {
		return errNotOpen
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.value)
}

// get returns the value without taking the entry lock. The value must be
// safe for concurrent use.
func (r *registry[T]) get(id string) (T, bool) {
	e, ok := r.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (r *registry[T]) remove(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.entries, id)
	return e.value, true
}

func (r *registry[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// drain removes and returns every value.
func (r *registry[T]) drain() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.entries))
	for id, e := range r.entries {
		out = append(out, e.value)
		delete(r.entries, id)
	}
	return out
}

// expire removes and returns the values not used for longer than ttl.
func (r *registry[T]) expire(ttl time.Duration) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	var out []T
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			out = append(out, e.value)
			delete(r.entries, id)
		}
	}
	return out
}
