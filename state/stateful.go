package state

import (
	"slices"
	"sync"
)

// EqualFunc compares two values for equality.
type EqualFunc[T any] func(a, b T) bool

// EqualComparable compares comparable values with ==.
func EqualComparable[T comparable](a, b T) bool {
	return a == b
}

// VetoFunc decides whether an assignment from old to new should happen.
type VetoFunc[T any] func(old, new T) bool

// ChangeFunc runs after a value has been replaced.
type ChangeFunc[T any] func(old, new T)

// Stateful is a tracked property. Assignments that change the value are
// reported to the owner's Machine under the property's Key and Types.
//
// Only the stored value is guarded by a lock. Set drives the owner's Machine
// and must be called from the goroutine that owns it.
type Stateful[T any] struct {
	mu    sync.Mutex
	value T
	dirty bool

	owner  Owner
	key    Key
	types  Type
	equal  EqualFunc[T]
	veto   VetoFunc[T]
	didSet ChangeFunc[T]

	observers map[int]ChangeFunc[T]
	nextObs   int
}

// NewStateful declares a tracked comparable property on owner.
func NewStateful[T comparable](owner Owner, key Key, initial T, types ...Type) *Stateful[T] {
	return NewStatefulFunc(owner, key, initial, EqualComparable[T], types...)
}

// NewStatefulFunc declares a tracked property compared with equal.
// A nil equal treats every assignment as a change.
func NewStatefulFunc[T any](owner Owner, key Key, initial T, equal EqualFunc[T], types ...Type) *Stateful[T] {
	s := &Stateful[T]{
		value: initial,
		owner: owner,
		key:   key,
		equal: equal,
	}
	for _, t := range types {
		s.types |= t
	}
	return s
}

// Key returns the property identity.
func (s *Stateful[T]) Key() Key {
	if s == nil {
		return Key{}
	}
	return s.key
}

// Types returns the tags reported alongside the key.
func (s *Stateful[T]) Types() Type {
	if s == nil {
		return None
	}
	return s.types
}

// SetVeto replaces the predicate deciding whether an assignment happens.
// Passing nil restores the default, which rejects equal values.
func (s *Stateful[T]) SetVeto(fn VetoFunc[T]) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.veto = fn
	s.mu.Unlock()
}

// SetDidSet registers the callback run after each accepted assignment.
func (s *Stateful[T]) SetDidSet(fn ChangeFunc[T]) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.didSet = fn
	s.mu.Unlock()
}

// Observe registers an extra listener run after DidSet. It returns a
// function that removes the listener.
func (s *Stateful[T]) Observe(fn ChangeFunc[T]) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.observers == nil {
		s.observers = make(map[int]ChangeFunc[T])
	}
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Get returns the current value.
func (s *Stateful[T]) Get() T {
	if s == nil {
		var zero T
		return zero
	}
	s.mu.Lock()
	value := s.value
	s.mu.Unlock()
	return value
}

// Dirty reports whether the most recent assignment changed the value.
// It describes that single assignment, not the current update cycle.
func (s *Stateful[T]) Dirty() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Set assigns value and reports whether it was accepted. An accepted
// assignment runs DidSet and observers, then marks the key and types dirty
// on the owner's Machine inside a transaction.
func (s *Stateful[T]) Set(value T) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	old := s.value
	veto, equal := s.veto, s.equal
	s.mu.Unlock()

	if !s.shouldSet(veto, equal, old, value) {
		s.mu.Lock()
		s.dirty = false
		s.mu.Unlock()
		return false
	}

	s.mu.Lock()
	s.value = value
	s.dirty = true
	didSet := s.didSet
	observers := s.copyObserversLocked()
	s.mu.Unlock()

	if didSet != nil {
		didSet(old, value)
	}
	for _, fn := range observers {
		fn(old, value)
	}

	// Resolved per assignment so fields may be declared before the owner
	// creates its Machine.
	var m *Machine
	if s.owner != nil {
		m = s.owner.StateMachine()
	}
	if m == nil {
		return true
	}
	opened := m.Begin()
	m.Invalidate(s.key)
	if s.types != None {
		m.InvalidateTypes(s.types)
	}
	if opened {
		m.Commit()
	}
	return true
}

// Update replaces the value using fn.
func (s *Stateful[T]) Update(fn func(T) T) bool {
	if s == nil || fn == nil {
		return false
	}
	return s.Set(fn(s.Get()))
}

func (s *Stateful[T]) shouldSet(veto VetoFunc[T], equal EqualFunc[T], old, value T) bool {
	if veto != nil {
		return veto(old, value)
	}
	if equal == nil {
		return true
	}
	return !equal(old, value)
}

func (s *Stateful[T]) copyObserversLocked() []ChangeFunc[T] {
	if len(s.observers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]ChangeFunc[T], 0, len(ids))
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	return observers
}
