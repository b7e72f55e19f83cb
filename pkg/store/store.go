// Package store is a reducer-based client state container for the
// storefront API, with cart and session mirrored to a Storage.
package store

import "sync"

type Store struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func New(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]func(State))}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and notifies subscribers when the state changed.
// Subscribers run outside the lock, in no particular order.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	next, changed := reduce(s.state, a)
	s.state = next
	var subs []func(State)
	if changed {
		subs = make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
