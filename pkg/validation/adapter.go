package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formbind/pkg/field"
)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLenientSchema turns schema misuse into a logged no-op instead of a
// construction error. Every validation then passes.
func WithLenientSchema() AdapterOption {
	return func(a *Adapter) {
		a.lenient = true
	}
}

// WithLogger sets the logger used to report schema misuse.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter exposes the two validation operations the form engine needs over
// an opaque Schema, normalising whatever the schema reports into
// path-tagged failures.
type Adapter struct {
	schema  Schema
	lenient bool
	logger  *slog.Logger
}

// NewAdapter wraps schema. A nil schema is rejected with ErrInvalidSchema
// unless WithLenientSchema is supplied.
func NewAdapter(schema Schema, options ...AdapterOption) (*Adapter, error) {
	a := newAdapter(options)
	if schema == nil {
		return a.misuse(fmt.Errorf("%w: nil", ErrInvalidSchema))
	}
	a.schema = schema
	return a, nil
}

// NewAdapterFromAny wraps a dynamically typed schema value. Values that do not
// implement Schema follow the same strict/lenient policy as NewAdapter.
func NewAdapterFromAny(value any, options ...AdapterOption) (*Adapter, error) {
	a := newAdapter(options)
	schema, err := FromAny(value)
	if err != nil {
		return a.misuse(err)
	}
	a.schema = schema
	return a, nil
}

func newAdapter(options []AdapterOption) *Adapter {
	a := &Adapter{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

func (a *Adapter) misuse(err error) (*Adapter, error) {
	if !a.lenient {
		return nil, err
	}
	a.logger.Warn("validation disabled: schema misuse", slog.String("error", err.Error()))
	a.schema = noopSchema{}
	return a, nil
}

// Lenient reports whether the adapter was built in lenient mode.
func (a *Adapter) Lenient() bool {
	return a.lenient
}

// Disabled reports whether misuse replaced the schema with a no-op.
func (a *Adapter) Disabled() bool {
	_, ok := a.schema.(noopSchema)
	return ok
}

// ValidateField validates the rules attached to name against snapshot. It
// returns a nil failure when the field passes or has no rules. The error
// result is reserved for infrastructure problems.
func (a *Adapter) ValidateField(ctx context.Context, name string, snapshot field.Snapshot) (*Failure, error) {
	err := a.schema.ValidateAt(ctx, name, snapshot.Values())
	if err == nil || errors.Is(err, ErrUnknownPath) {
		return nil, nil
	}

	failures, ok := AsFailures(err)
	if !ok {
		return nil, fmt.Errorf("validation: validate %q: %w", name, err)
	}
	// Failures reported for other fields are not this field's concern. An
	// exact path beats a nested one.
	var picked *Failure
	for _, failure := range FirstPerPath(failures) {
		if !Owns(name, failure.Path) {
			continue
		}
		if failure.Path == name {
			picked = &failure
			break
		}
		if picked == nil {
			picked = &failure
		}
	}
	if picked != nil {
		picked.Path = name
	}
	return picked, nil
}

// ValidateAll validates every rule against snapshot and collects all
// violations, keeping the first message per path.
func (a *Adapter) ValidateAll(ctx context.Context, snapshot field.Snapshot) ([]Failure, error) {
	err := a.schema.Validate(ctx, snapshot.Values())
	if err == nil {
		return nil, nil
	}
	failures, ok := AsFailures(err)
	if !ok {
		return nil, fmt.Errorf("validation: validate form: %w", err)
	}
	if len(failures) == 0 {
		// A schema that reports violations without naming any still blocks.
		return []Failure{{Message: fallbackMessage("")}}, nil
	}
	return FirstPerPath(failures), nil
}
