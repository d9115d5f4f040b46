package state

import "sync"

// Subscriptions tracks and clears multiple unsubscribe callbacks, such as
// those returned by Stateful.Observe. Owners typically Clear it on unmount.
type Subscriptions struct {
	mu     sync.Mutex
	unsubs []func()
}

// Add registers an unsubscribe callback.
func (s *Subscriptions) Add(unsub func()) {
	if s == nil || unsub == nil {
		return
	}
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsub)
	s.mu.Unlock()
}

// Len returns the number of tracked callbacks.
func (s *Subscriptions) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unsubs)
}

// Clear unsubscribes all tracked callbacks.
func (s *Subscriptions) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// Observe registers fn on prop and tracks the unsubscribe in subs.
func Observe[T any](subs *Subscriptions, prop *Stateful[T], fn ChangeFunc[T]) {
	if subs == nil || prop == nil || fn == nil {
		return
	}
	subs.Add(prop.Observe(fn))
}
