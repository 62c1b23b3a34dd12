// Package undo keeps a short, time-boxed history of reversible actions.
package undo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/rythudepot/internal/clock"
)

const (
	DefaultWindow   = 10 * time.Second
	DefaultCapacity = 1
)

var (
	ErrNothingToUndo = errors.New("nothing_to_undo")
	ErrUndoExpired   = errors.New("undo_expired")
)

// RevertFunc applies the inverse of an action against tx.
type RevertFunc[T any] func(ctx context.Context, tx T) error

// Action is one recorded, reversible mutation.
type Action[T any] struct {
	Kind   string
	At     time.Time
	Revert RevertFunc[T]
}

// Stack is a bounded LIFO of actions. Only the newest action is reachable
// and only while it is younger than the window.
type Stack[T any] struct {
	mu       sync.Mutex
	clock    clock.Clock
	window   time.Duration
	capacity int
	actions  []Action[T]
}

func NewStack[T any](c clock.Clock, window time.Duration, capacity int) *Stack[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack[T]{
		clock:    c,
		window:   window,
		capacity: capacity,
	}
}

// Push records an action, evicting the oldest one when full.
func (s *Stack[T]) Push(kind string, revert RevertFunc[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, Action[T]{
		Kind:   kind,
		At:     s.clock.Now(),
		Revert: revert,
	})
	if over := len(s.actions) - s.capacity; over > 0 {
		s.actions = append([]Action[T](nil), s.actions[over:]...)
	}
}

// Pop removes and returns the newest action. An expired action empties the
// whole stack, since everything below it is older still.
func (s *Stack[T]) Pop() (Action[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.actions) == 0 {
		return Action[T]{}, ErrNothingToUndo
	}
	last := s.actions[len(s.actions)-1]
	if s.clock.Now().Sub(last.At) > s.window {
		s.actions = nil
		return Action[T]{}, ErrUndoExpired
	}
	s.actions = s.actions[:len(s.actions)-1]
	return last, nil
}

// Restore puts back an action returned by Pop whose revert could not be
// applied. It keeps its original timestamp.
func (s *Stack[T]) Restore(a Action[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, a)
	if over := len(s.actions) - s.capacity; over > 0 {
		s.actions = append([]Action[T](nil), s.actions[over:]...)
	}
}

// Peek reports the newest action without removing it.
func (s *Stack[T]) Peek() (Action[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.actions) == 0 {
		return Action[T]{}, false
	}
	return s.actions[len(s.actions)-1], true
}

// Clear drops every recorded action.
func (s *Stack[T]) Clear() {
	s.mu.Lock()
	s.actions = nil
	s.mu.Unlock()
}

func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

func (s *Stack[T]) Window() time.Duration {
	return s.window
}
