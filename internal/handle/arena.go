// Package handle implements generation-checked handle tables.
//
// A handle is a 64-bit value: the low 32 bits hold a 1-based slot index and
// the high 32 bits hold the slot's generation at insertion time. Removing a
// value bumps the slot generation, so any copy of the old handle is
// recognised as stale instead of aliasing whatever reuses the slot.
package handle

import (
	"errors"
	"fmt"
	"sync"
)

// ID is an opaque handle value. The zero ID is the null handle.
type ID uint64

var (
	// ErrInvalid reports a null handle or one that never referred to a slot.
	ErrInvalid = errors.New("invalid handle")
	// ErrStale reports a handle whose value has already been removed.
	ErrStale = errors.New("stale handle")
)

func makeID(index int, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index+1))
}

func (id ID) index() int { return int(uint32(id)) - 1 }

func (id ID) generation() uint32 { return uint32(id >> 32) }

// IsNull reports whether id is the null handle.
func (id ID) IsNull() bool { return id == 0 }

func (id ID) String() string {
	if id.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%d@%d", id.index()+1, id.generation())
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena stores values of type T behind generation-checked IDs.
// It is safe for concurrent use.
type Arena[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []int
	live  int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = len(a.slots)
		// Generations start at 1 so no live handle is ever 0.
		a.slots = append(a.slots, slot[T]{generation: 1})
	}

	s := &a.slots[idx]
	s.value = v
	s.live = true
	a.live++
	return makeID(idx, s.generation)
}

// Get returns the value for id.
func (a *Arena[T]) Get(id ID) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Remove deletes the value for id and returns it.
// Removing the same id twice reports ErrStale.
func (a *Arena[T]) Remove(id ID) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	s, err := a.lookup(id)
	if err != nil {
		return zero, err
	}

	v := s.value
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, id.index())
	a.live--
	return v, nil
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *Arena[T]) lookup(id ID) (*slot[T], error) {
	if id.IsNull() {
		return nil, ErrInvalid
	}
	idx := id.index()
	if idx < 0 || idx >= len(a.slots) {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, id)
	}
	s := &a.slots[idx]
	if !s.live || s.generation != id.generation() {
		return nil, fmt.Errorf("%w: %s", ErrStale, id)
	}
	return s, nil
}
