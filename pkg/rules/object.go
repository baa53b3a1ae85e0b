package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// FieldRules pairs a field name with its rule chain.
type FieldRules struct {
	Name   string
	Schema *StringSchema
}

// Field declares the rules for one field.
func Field(name string, schema *StringSchema) FieldRules {
	return FieldRules{Name: strings.TrimSpace(name), Schema: schema}
}

// ObjectSchema validates a snapshot field by field. It implements
// validation.Schema.
type ObjectSchema struct {
	fields []FieldRules
	index  map[string]int
}

var (
	_ validation.Schema = (*ObjectSchema)(nil)
	_ field.Describer   = (*ObjectSchema)(nil)
)

// Object builds a schema from field declarations. A later declaration for
// the same name replaces the earlier one in place.
func Object(fields ...FieldRules) *ObjectSchema {
	schema := &ObjectSchema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		if f.Schema == nil {
			f.Schema = String()
		}
		if i, ok := schema.index[f.Name]; ok {
			schema.fields[i] = f
			continue
		}
		schema.index[f.Name] = len(schema.fields)
		schema.fields = append(schema.fields, f)
	}
	return schema
}

// ValidateAt checks a single path against the snapshot values. Paths
// without rules return validation.ErrUnknownPath.
func (o *ObjectSchema) ValidateAt(ctx context.Context, path string, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i, ok := o.index[path]
	if !ok {
		return fmt.Errorf("rules: %q: %w", path, validation.ErrUnknownPath)
	}
	if msg := o.fields[i].Schema.check(path, values[path], values); msg != "" {
		return validation.Fail(path, msg)
	}
	return nil
}

// Validate checks every declared field and collects one failure per field.
func (o *ObjectSchema) Validate(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var failures validation.Failures
	for _, f := range o.fields {
		if msg := f.Schema.check(f.Name, values[f.Name], values); msg != "" {
			failures = append(failures, validation.Failure{Path: f.Name, Message: msg})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

// Describe lists the declared fields in declaration order.
func (o *ObjectSchema) Describe() []field.Info {
	out := make([]field.Info, 0, len(o.fields))
	for _, f := range o.fields {
		info := field.Info{
			Name:     f.Name,
			Label:    f.Schema.label,
			Secret:   f.Schema.secret,
			Required: f.Schema.hasReq,
		}
		for _, r := range f.Schema.rules {
			info.Rules = append(info.Rules, r.kind)
		}
		out = append(out, info)
	}
	return out
}
