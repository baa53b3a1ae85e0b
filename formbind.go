package formbind

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/rules"
	"github.com/goliatone/go-formbind/pkg/schemas/jsonschema"
	"github.com/goliatone/go-formbind/pkg/schemas/openapi"
	"github.com/goliatone/go-formbind/pkg/source"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// SchemaKind names the document formats a form schema can be loaded from.
type SchemaKind string

const (
	KindAuto       SchemaKind = "auto"
	KindRules      SchemaKind = "rules"
	KindOpenAPI    SchemaKind = "openapi"
	KindJSONSchema SchemaKind = "jsonschema"
)

// ErrUnknownKind is returned when a document format cannot be determined.
var ErrUnknownKind = errors.New("formbind: unknown schema kind")

// ParseKind normalises a user supplied kind. An empty string means auto.
func ParseKind(raw string) (SchemaKind, error) {
	switch SchemaKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindAuto:
		return KindAuto, nil
	case KindRules:
		return KindRules, nil
	case KindOpenAPI:
		return KindOpenAPI, nil
	case KindJSONSchema, "json-schema":
		return KindJSONSchema, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Request describes where a schema comes from. Document takes precedence
// over Source when both are set.
type Request struct {
	Source      source.Source
	Document    *source.Document
	Kind        SchemaKind
	OperationID string
}

// DetectKind inspects the top level keys of a JSON or YAML document.
func DetectKind(raw []byte) (SchemaKind, error) {
	var top map[string]any
	if err := yaml.Unmarshal(raw, &top); err != nil {
		return "", fmt.Errorf("formbind: detect kind: %w", err)
	}
	switch {
	case top["openapi"] != nil:
		return KindOpenAPI, nil
	case top["fields"] != nil:
		return KindRules, nil
	case top["$schema"] != nil, top["properties"] != nil:
		return KindJSONSchema, nil
	default:
		return "", ErrUnknownKind
	}
}

// LoadSchema resolves req into a validation.Schema. A nil loader reads
// files only.
func LoadSchema(ctx context.Context, loader *source.Loader, req Request) (validation.Schema, error) {
	var doc source.Document
	switch {
	case req.Document != nil:
		doc = *req.Document
	case req.Source != nil:
		if loader == nil {
			loader = source.NewLoader()
		}
		loaded, err := loader.Load(ctx, req.Source)
		if err != nil {
			return nil, fmt.Errorf("formbind: load %s: %w", req.Source.Location(), err)
		}
		doc = loaded
	default:
		return nil, errors.New("formbind: request needs a source or document")
	}

	raw := doc.Raw()
	kind := req.Kind
	if kind == "" || kind == KindAuto {
		detected, err := DetectKind(raw)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	switch kind {
	case KindRules:
		return rules.Load(raw)
	case KindJSONSchema:
		if converted, err := yamlToJSON(raw); err == nil {
			raw = converted
		}
		return jsonschema.Compile(raw)
	case KindOpenAPI:
		operationID := req.OperationID
		if operationID == "" {
			ids, err := openapi.Operations(ctx, raw)
			if err != nil {
				return nil, err
			}
			if len(ids) != 1 {
				return nil, fmt.Errorf("formbind: document has %d form operations, pick one of %v", len(ids), ids)
			}
			operationID = ids[0]
		}
		return openapi.FromDocument(ctx, raw, operationID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewForm loads the schema for req, builds a form over it and registers
// every field the schema declares.
func NewForm(ctx context.Context, loader *source.Loader, req Request, options ...form.Option) (*form.Form, error) {
	schema, err := LoadSchema(ctx, loader, req)
	if err != nil {
		return nil, err
	}
	f, err := form.New(schema, options...)
	if err != nil {
		return nil, err
	}
	for _, info := range Fields(schema) {
		if _, err := f.Register(info.Name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Fields lists the fields a schema declares, or nil when it cannot say.
func Fields(schema validation.Schema) []field.Info {
	if describer, ok := schema.(field.Describer); ok {
		return describer.Describe()
	}
	return nil
}
