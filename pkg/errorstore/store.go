// Package errorstore holds the field-name to message mapping a presentation
// layer renders. Absence of a key means the field has no error.
//
// Every mutation builds a fresh map and publishes it atomically, so readers
// never see a half-applied update. Writers are serialised and subscribers are
// notified in publish order.
package errorstore

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-formbind/pkg/validation"
)

// State is one published version of the error map. Errors must be treated as
// read-only.
type State struct {
	Errors  map[string]string
	Version uint64
}

// Fields returns the names carrying an error, sorted.
func (s State) Fields() []string {
	names := make([]string, 0, len(s.Errors))
	for name := range s.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listener observes published states. Listeners run on the writer's
// goroutine and must not write back to the store synchronously.
type Listener func(State)

// Store is a reactive error map.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[State]

	listeners map[uint64]Listener
	nextID    uint64
}

// New returns an empty store at version zero.
func New() *Store {
	s := &Store{listeners: make(map[uint64]Listener)}
	s.current.Store(&State{Errors: map[string]string{}})
	return s
}

// Set records message for name. Setting the same message again publishes
// nothing.
func (s *Store) Set(name, message string) {
	s.mutate(func(current map[string]string) (map[string]string, bool) {
		if existing, ok := current[name]; ok && existing == message {
			return nil, false
		}
		next := clone(current)
		next[name] = message
		return next, true
	})
}

// Clear removes the entry for name.
func (s *Store) Clear(name string) {
	s.mutate(func(current map[string]string) (map[string]string, bool) {
		if _, ok := current[name]; !ok {
			return nil, false
		}
		next := clone(current)
		delete(next, name)
		return next, true
	})
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.mutate(func(current map[string]string) (map[string]string, bool) {
		if len(current) == 0 {
			return nil, false
		}
		return map[string]string{}, true
	})
}

// ReplaceAll clears the store and inserts one entry per failure in a single
// publish. The last failure for a repeated path wins.
func (s *Store) ReplaceAll(failures []validation.Failure) {
	s.mutate(func(current map[string]string) (map[string]string, bool) {
		next := make(map[string]string, len(failures))
		for _, failure := range failures {
			next[failure.Path] = failure.Message
		}
		if equal(current, next) {
			return nil, false
		}
		return next, true
	})
}

// Read returns a copy of the current error map.
func (s *Store) Read() map[string]string {
	return clone(s.current.Load().Errors)
}

// State returns the current published state without copying.
func (s *Store) State() State {
	return *s.current.Load()
}

// Get returns the message recorded for name.
func (s *Store) Get(name string) (string, bool) {
	message, ok := s.current.Load().Errors[name]
	return message, ok
}

// Len reports how many fields carry an error.
func (s *Store) Len() int {
	return len(s.current.Load().Errors)
}

// Version reports how many changes have been published.
func (s *Store) Version() uint64 {
	return s.current.Load().Version
}

// Subscribe registers a listener for published states. The returned function
// removes it.
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) mutate(apply func(map[string]string) (map[string]string, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current.Load()
	next, changed := apply(current.Errors)
	if !changed {
		return
	}
	published := &State{Errors: next, Version: current.Version + 1}
	s.current.Store(published)

	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.listeners[id](*published)
	}
}

func clone(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func equal(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, value := range a {
		if other, ok := b[key]; !ok || other != value {
			return false
		}
	}
	return true
}
