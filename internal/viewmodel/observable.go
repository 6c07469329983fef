// Package viewmodel holds the UI-independent state machines behind the
// posts list, detail, and edit screens. Each view model exposes an immutable
// snapshot of its state plus change subscriptions; the UI layer renders
// snapshots and calls the operation methods.
package viewmodel

import "sync"

// Store holds a state value and notifies subscribers after each change.
// Snapshots are copies; mutating one does not affect the store.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	clone  func(S) S
	nextID int
	subs   map[int]func(S)
}

func newStore[S any](initial S, clone func(S) S) *Store[S] {
	return &Store[S]{
		state: initial,
		clone: clone,
		subs:  make(map[int]func(S)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.state)
}

// Subscribe registers fn to receive a snapshot after every change and
// returns a function that removes the subscription.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies mutate and notifies subscribers.
func (s *Store[S]) update(mutate func(*S)) {
	s.updateIf(func(st *S) bool {
		mutate(st)
		return true
	})
}

// updateIf applies mutate; subscribers are notified only when it returns
// true. mutate must leave the state untouched when it returns false.
func (s *Store[S]) updateIf(mutate func(*S) bool) bool {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return false
	}
	snap := s.clone(s.state)
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return true
}
