package field

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Snapshot is an immutable point-in-time capture of field values.
type Snapshot struct {
	values map[string]string
	names  []string
}

// NewSnapshot builds a snapshot from a plain map. Names are ordered
// lexically since the map carries no registration order.
func NewSnapshot(values map[string]string) Snapshot {
	clone := make(map[string]string, len(values))
	names := make([]string, 0, len(values))
	for name, value := range values {
		clone[name] = value
		names = append(names, name)
	}
	sort.Strings(names)
	return Snapshot{values: clone, names: names}
}

// Get returns the value captured for name.
func (s Snapshot) Get(name string) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Value returns the captured value for name or an empty string.
func (s Snapshot) Value(name string) string {
	return s.values[name]
}

// Values returns a copy of the captured mapping.
func (s Snapshot) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for name, value := range s.values {
		out[name] = value
	}
	return out
}

// Names returns the captured field names in registration order.
func (s Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Len reports the number of captured fields.
func (s Snapshot) Len() int {
	return len(s.values)
}

// MarshalJSON encodes the snapshot as a flat JSON object.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

// Decode copies the snapshot into v using its JSON field tags.
func (s Snapshot) Decode(v any) error {
	payload, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("field: encode snapshot: %w", err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("field: decode snapshot: %w", err)
	}
	return nil
}
