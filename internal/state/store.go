// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store holds the current state. Dispatch is serialized; subscribers run
// after the lock is released, in subscription order.
type Store struct {
	mu     sync.Mutex
	state  *AppState
	subs   []subscriber
	nextID int
	logger *zap.Logger
}

type subscriber struct {
	id int
	fn func(*AppState)
}

// NewStore creates a store starting from initial, or an empty state.
func NewStore(initial *AppState) *Store {
	if initial == nil {
		initial = New()
	}
	return &Store{state: initial, logger: zap.NewNop()}
}

// WithLogger logs every dispatched action at debug level.
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.Named("state")
	return s
}

// State returns the current state. Callers must not modify it.
func (s *Store) State() *AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the state and notifies subscribers when the state
// changed. It returns the new state.
func (s *Store) Dispatch(a Action) *AppState {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	s.logger.Debug("dispatch", zap.String("action", fmt.Sprintf("%T", a)))

	if next != prev {
		for _, sub := range subs {
			sub.fn(next)
		}
	}
	return next
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(*AppState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

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
