// Package store holds the shell state behind a single dispatch point.
package store

import (
	"sync"

	"go.uber.org/zap"
)

// Store serializes dispatches and notifies subscribers after each one.
type Store struct {
	// notify orders deliveries so no subscriber sees an older state after
	// a newer one. Subscribers must not Dispatch.
	notify sync.Mutex
	mu     sync.RWMutex
	state  State
	subs   []subscriber
	nextID int
	log    *zap.Logger
}

type subscriber struct {
	id int
	fn func(State)
}

// New returns an empty store. A nil logger discards.
func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log.Named("store")}
}

// Dispatch reduces a into the state and then calls every subscriber with
// the new state, in subscription order and outside the state lock.
func (s *Store) Dispatch(a Action) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.log.Debug("dispatch", zap.String("action", a.Type()))
	for _, sub := range subs {
		sub.fn(next)
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
