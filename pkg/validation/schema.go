package validation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is returned when the supplied value cannot act as a
	// Schema and lenient handling was not requested.
	ErrInvalidSchema = errors.New("validation: invalid schema")
)

// Schema is the external validator capability. Implementations are immutable
// and safe for concurrent use; the engine never mutates them.
//
// Both methods report violations as a Failures error. Any other error is
// treated as an infrastructure problem (cancellation, timeout, broken schema)
// rather than a field failure.
type Schema interface {
	// ValidateAt checks only the rules attached to path. The full value set is
	// passed so cross-field rules can look at their references.
	ValidateAt(ctx context.Context, path string, values map[string]string) error
	// Validate checks every rule without stopping at the first violation.
	Validate(ctx context.Context, values map[string]string) error
}

// Funcs adapts two plain functions into a Schema. A nil function validates
// everything.
type Funcs struct {
	At  func(ctx context.Context, path string, values map[string]string) error
	All func(ctx context.Context, values map[string]string) error
}

// ValidateAt calls At.
func (f Funcs) ValidateAt(ctx context.Context, path string, values map[string]string) error {
	if f.At == nil {
		return nil
	}
	return f.At(ctx, path, values)
}

// Validate calls All.
func (f Funcs) Validate(ctx context.Context, values map[string]string) error {
	if f.All == nil {
		return nil
	}
	return f.All(ctx, values)
}

// FromAny narrows a dynamically typed value (for example one pulled from a
// plugin registry) into a Schema.
func FromAny(value any) (Schema, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidSchema)
	}
	schema, ok := value.(Schema)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement Schema", ErrInvalidSchema, value)
	}
	return schema, nil
}

// noopSchema accepts every value. It stands in for a misused schema when the
// adapter runs in lenient mode.
type noopSchema struct{}

func (noopSchema) ValidateAt(context.Context, string, map[string]string) error { return nil }
func (noopSchema) Validate(context.Context, map[string]string) error           { return nil }
