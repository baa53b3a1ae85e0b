package field

import (
	"errors"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrEmptyName is returned when a field is registered without a name.
	ErrEmptyName = errors.New("field: empty name")
	// ErrUnregistered is returned when input arrives through a binding whose
	// field has been unmounted.
	ErrUnregistered = errors.New("field: binding is not registered")
)

// Element is the opaque handle a presentation layer attaches to a binding.
// Implementations must tolerate concurrent Value calls.
type Element interface {
	Value() string
	SetValue(string)
}

// Listener observes input events that reached a registered field.
type Listener func(name, value string)

// Registry tracks the fields currently mounted by one form instance.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]*Binding
	order  []string

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fields:    make(map[string]*Binding),
		listeners: make(map[uint64]Listener),
	}
}

// NormalizeName is the key form of a field name. Every registry method
// applies it, so " a " and "a" name the same field.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Register returns the binding for name, creating the descriptor on first
// use. Later calls with the same name return the same binding.
func (r *Registry) Register(name string) (*Binding, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.fields[name]; ok {
		return existing, nil
	}
	binding := &Binding{
		name:    name,
		reg:     r,
		element: &valueCell{},
	}
	r.fields[name] = binding
	r.order = append(r.order, name)
	return binding, nil
}

// Lookup returns the binding registered under name.
func (r *Registry) Lookup(name string) (*Binding, bool) {
	name = NormalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.fields[name]
	return binding, ok
}

// Unregister destroys the descriptor for name. It reports whether a field was
// removed.
func (r *Registry) Unregister(name string) bool {
	name = NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fields[name]; !ok {
		return false
	}
	delete(r.fields, name)
	for idx, candidate := range r.order {
		if candidate == name {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return true
}

// Names returns the registered field names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len reports how many fields are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields)
}

// Snapshot captures the current value of every registered field. It performs
// no I/O and always reflects the latest input.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[string]string, len(r.fields))
	for _, name := range r.order {
		values[name] = r.fields[name].element.Value()
	}
	return Snapshot{
		values: values,
		names:  append([]string(nil), r.order...),
	}
}

// Subscribe registers a listener for input events. The returned function
// removes it.
func (r *Registry) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	r.lmu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener
	r.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lmu.Lock()
			delete(r.listeners, id)
			r.lmu.Unlock()
		})
	}
}

func (r *Registry) notify(name, value string) {
	r.lmu.Lock()
	listeners := make([]Listener, 0, len(r.listeners))
	ids := make([]uint64, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, r.listeners[id])
	}
	r.lmu.Unlock()

	for _, listener := range listeners {
		listener(name, value)
	}
}

// Binding is what the presentation layer attaches to one input element.
type Binding struct {
	name    string
	reg     *Registry
	element Element
}

// Name returns the stable field identity.
func (b *Binding) Name() string {
	return b.name
}

// Attach swaps the element handle behind the descriptor. The current value is
// carried over when the new element is empty so a re-render does not lose
// input.
func (b *Binding) Attach(el Element) {
	if el == nil {
		return
	}
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if previous := b.element; previous != nil && el.Value() == "" {
		el.SetValue(previous.Value())
	}
	b.element = el
}

// Value returns the element's current value.
func (b *Binding) Value() string {
	b.reg.mu.RLock()
	defer b.reg.mu.RUnlock()
	return b.element.Value()
}

// Input records an input event: the value is written to the element and every
// registry listener is notified.
func (b *Binding) Input(value string) error {
	b.reg.mu.Lock()
	if current, ok := b.reg.fields[b.name]; !ok || current != b {
		b.reg.mu.Unlock()
		return ErrUnregistered
	}
	b.element.SetValue(value)
	b.reg.mu.Unlock()

	b.reg.notify(b.name, value)
	return nil
}

type valueCell struct {
	mu    sync.RWMutex
	value string
}

func (c *valueCell) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *valueCell) SetValue(value string) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}
