// Package debounce coalesces bursts of events into a single delayed action
// per key.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc implementation.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d. time.AfterFunc satisfies it through
// the default adapter; tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc overrides the timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// Scheduler keeps at most one pending action per key. Re-arming a key cancels
// the previous action; the cancelled action never runs.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[string]*entry
	afterFunc AfterFunc
	closed    bool
}

type entry struct {
	timer Timer
}

// New returns a scheduler backed by time.AfterFunc unless overridden.
func New(options ...Option) *Scheduler {
	s := &Scheduler{
		pending: make(map[string]*entry),
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Schedule arms action under key after delay, replacing any pending action
// for the same key. Calls after CancelAll are ignored.
func (s *Scheduler) Schedule(key string, delay time.Duration, action func()) {
	if action == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if previous, ok := s.pending[key]; ok {
		previous.timer.Stop()
		delete(s.pending, key)
	}

	e := &entry{}
	s.pending[key] = e
	e.timer = s.afterFunc(delay, func() {
		s.fire(key, e, action)
	})
}

// fire runs action only if e is still the current entry for key. A timer that
// lost the race with Stop finds its entry replaced and returns silently.
func (s *Scheduler) fire(key string, e *entry, action func()) {
	s.mu.Lock()
	current, ok := s.pending[key]
	if !ok || current != e || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	action()
}

// Cancel drops the pending action for key. It reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, key)
	return true
}

// Pending reports whether an action is armed for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Len reports the number of armed actions.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// CancelAll stops every pending action and closes the scheduler. No pending
// action fires after CancelAll returns; an action that already started is not
// interrupted.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for key, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, key)
	}
}
