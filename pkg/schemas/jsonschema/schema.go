package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	jschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/schemas/internal/formvalue"
	"github.com/goliatone/go-formbind/pkg/validation"
)

const resourceURL = "mem://formbind/schema.json"

// Schema validates form snapshots against a compiled JSON Schema.
type Schema struct {
	compiled *jschema.Schema
	object   formvalue.Object
}

var (
	_ validation.Schema = (*Schema)(nil)
	_ field.Describer   = (*Schema)(nil)
)

// Compile compiles a Draft 2020-12 document. Documents declaring another
// draft through $schema keep that draft.
func Compile(raw []byte) (*Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("jsonschema: document payload is empty")
	}
	doc, err := scan(raw)
	if err != nil {
		return nil, err
	}
	if doc.Type != nil && !hasType(doc.Type, "object") {
		return nil, fmt.Errorf("%w: root type is not object", validation.ErrInvalidSchema)
	}

	compiler := jschema.NewCompiler()
	compiler.Draft = jschema.Draft2020
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("jsonschema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: compile: %w", err)
	}
	return &Schema{compiled: compiled, object: doc.object()}, nil
}

// rawDocument is the part of the document read directly for coercion and
// message overrides. The validator ignores the vendor keywords.
type rawDocument struct {
	Type       any                    `json:"type"`
	Required   []string               `json:"required"`
	Properties map[string]rawProperty `json:"properties"`
}

type rawProperty struct {
	Type     any               `json:"type"`
	Title    string            `json:"title"`
	Format   string            `json:"format"`
	Messages map[string]string `json:"x-messages"`
	Equals   string            `json:"x-equals"`
}

func scan(raw []byte) (rawDocument, error) {
	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return rawDocument{}, fmt.Errorf("jsonschema: parse document: %w", err)
	}
	return doc, nil
}

func (d rawDocument) object() formvalue.Object {
	object := formvalue.Object{
		Properties: make(map[string]formvalue.Property, len(d.Properties)),
		Required:   append([]string(nil), d.Required...),
	}
	for name, prop := range d.Properties {
		object.Names = append(object.Names, name)
		object.Properties[name] = formvalue.Property{
			Types:    types(prop.Type),
			Title:    prop.Title,
			Format:   prop.Format,
			Messages: prop.Messages,
			Equals:   strings.TrimSpace(prop.Equals),
		}
	}
	sort.Strings(object.Names)
	return object
}

func types(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func hasType(value any, want string) bool {
	for _, t := range types(value) {
		if t == want {
			return true
		}
	}
	return false
}

// ValidateAt validates the whole snapshot and keeps the failures for path.
func (s *Schema) ValidateAt(ctx context.Context, path string, values map[string]string) error {
	if !s.object.Has(path) {
		return fmt.Errorf("jsonschema: %q: %w", path, validation.ErrUnknownPath)
	}
	failures, err := s.check(ctx, values)
	if err != nil {
		return err
	}
	var own validation.Failures
	for _, failure := range failures {
		if failure.Path == path {
			own = append(own, failure)
		}
	}
	if len(own) == 0 {
		return nil
	}
	return own
}

// Validate collects every violation in the snapshot.
func (s *Schema) Validate(ctx context.Context, values map[string]string) error {
	failures, err := s.check(ctx, values)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

// Describe lists the properties in name order.
func (s *Schema) Describe() []field.Info {
	return s.object.Describe()
}

func (s *Schema) check(ctx context.Context, values map[string]string) (validation.Failures, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures validation.Failures
	if err := s.compiled.Validate(s.object.Coerce(values)); err != nil {
		var verr *jschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("jsonschema: validate: %w", err)
		}
		failures = append(failures, s.leaves(verr)...)
	}
	failures = append(failures, s.object.EqualsFailures(values)...)
	return failures, nil
}

// leaves walks the cause tree and turns every leaf into failures.
func (s *Schema) leaves(verr *jschema.ValidationError) validation.Failures {
	if len(verr.Causes) > 0 {
		var out validation.Failures
		for _, cause := range verr.Causes {
			out = append(out, s.leaves(cause)...)
		}
		return out
	}

	keyword := lastSegment(verr.KeywordLocation)
	path := validation.FieldFromPointer(verr.InstanceLocation)
	if keyword == "required" {
		var out validation.Failures
		for _, name := range missingProperties(verr.Message) {
			full := name
			if path != "" {
				full = path + "." + name
			}
			out = append(out, validation.Failure{
				Path:    full,
				Message: s.object.Message(topLevel(full), keyword, verr.Message),
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return validation.Failures{{
		Path:    path,
		Message: s.object.Message(topLevel(path), keyword, verr.Message),
	}}
}

// missingProperties parses messages like "missing properties: 'a', 'b'".
func missingProperties(message string) []string {
	_, list, ok := strings.Cut(message, ":")
	if !ok {
		return nil
	}
	var names []string
	for _, part := range strings.Split(list, ",") {
		name := strings.Trim(strings.TrimSpace(part), `'"`)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func lastSegment(location string) string {
	location = strings.TrimRight(location, "/")
	if idx := strings.LastIndex(location, "/"); idx >= 0 {
		return location[idx+1:]
	}
	return location
}

func topLevel(path string) string {
	if idx := strings.Index(path, "."); idx >= 0 {
		return path[:idx]
	}
	return path
}
