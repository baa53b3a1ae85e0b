package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/schemas/internal/formvalue"
	"github.com/goliatone/go-formbind/pkg/validation"
)

var (
	// ErrOperationNotFound is returned when the document has no operation
	// with the requested id.
	ErrOperationNotFound = errors.New("openapi schema: operation not found")
	// ErrNoRequestBody is returned when the operation declares no usable
	// request body schema.
	ErrNoRequestBody = errors.New("openapi schema: operation has no request body schema")
)

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Schema validates form snapshots against an OpenAPI object schema.
type Schema struct {
	root   *openapi3.Schema
	object formvalue.Object
}

var (
	_ validation.Schema = (*Schema)(nil)
	_ field.Describer   = (*Schema)(nil)
)

// FromDocument loads an OpenAPI 3 document and wraps the request body schema
// of operationID.
func FromDocument(ctx context.Context, raw []byte, operationID string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi schema: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi schema: load document: %w", err)
	}

	op, err := findOperation(doc, operationID)
	if err != nil {
		return nil, err
	}
	ref := requestSchema(op.RequestBody)
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	return New(ref.Value)
}

// New wraps an already loaded object schema.
func New(root *openapi3.Schema) (*Schema, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil openapi schema", validation.ErrInvalidSchema)
	}
	if root.Type != nil && !root.Type.Is(openapi3.TypeObject) {
		return nil, fmt.Errorf("%w: request body is %v, want object", validation.ErrInvalidSchema, root.Type.Slice())
	}
	return &Schema{root: root, object: describe(root)}, nil
}

// Operations lists the operation ids in a document that carry a request
// body schema.
func Operations(ctx context.Context, raw []byte) ([]string, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi schema: load document: %w", err)
	}
	var ids []string
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range item.Operations() {
				if op == nil || op.OperationID == "" {
					continue
				}
				if ref := requestSchema(op.RequestBody); ref != nil && ref.Value != nil {
					ids = append(ids, op.OperationID)
				}
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func findOperation(doc *openapi3.T, operationID string) (*openapi3.Operation, error) {
	id := strings.TrimSpace(operationID)
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range item.Operations() {
				if op != nil && op.OperationID == id {
					return op, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func describe(root *openapi3.Schema) formvalue.Object {
	object := formvalue.Object{
		Properties: make(map[string]formvalue.Property, len(root.Properties)),
		Required:   append([]string(nil), root.Required...),
	}
	for name, ref := range root.Properties {
		object.Names = append(object.Names, name)
		if ref == nil || ref.Value == nil {
			object.Properties[name] = formvalue.Property{}
			continue
		}
		prop := ref.Value
		var types []string
		if prop.Type != nil {
			types = prop.Type.Slice()
		}
		object.Properties[name] = formvalue.Property{
			Types:    types,
			Title:    prop.Title,
			Format:   prop.Format,
			Messages: formvalue.StringMap(prop.Extensions[formvalue.MessagesExtension]),
			Equals:   formvalue.String(prop.Extensions[formvalue.EqualsExtension]),
		}
	}
	sort.Strings(object.Names)
	return object
}

// ValidateAt validates the whole snapshot and keeps the failures for path.
func (s *Schema) ValidateAt(ctx context.Context, path string, values map[string]string) error {
	if !s.object.Has(path) {
		return fmt.Errorf("openapi schema: %q: %w", path, validation.ErrUnknownPath)
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

// Describe lists the request body properties in name order.
func (s *Schema) Describe() []field.Info {
	return s.object.Describe()
}

func (s *Schema) check(ctx context.Context, values map[string]string) (validation.Failures, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures validation.Failures
	err := s.root.VisitJSON(s.object.Coerce(values), openapi3.MultiErrors())
	if err != nil {
		collected, ok := s.collect(err)
		if !ok {
			return nil, fmt.Errorf("openapi schema: validate: %w", err)
		}
		failures = append(failures, collected...)
	}
	failures = append(failures, s.object.EqualsFailures(values)...)
	return failures, nil
}

// collect flattens kin-openapi errors into failures. It reports false when
// err contains anything other than schema violations.
func (s *Schema) collect(err error) (validation.Failures, bool) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out validation.Failures
		for _, item := range multi {
			collected, ok := s.collect(item)
			if !ok {
				return nil, false
			}
			out = append(out, collected...)
		}
		return out, true
	}

	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return nil, false
	}
	path := validation.JoinPath(schemaErr.JSONPointer())
	keyword := schemaErr.SchemaField
	if keyword == "required" && path == "" {
		path = missingProperty(schemaErr.Reason)
	}
	return validation.Failures{{
		Path:    path,
		Message: s.object.Message(topLevel(path), keyword, schemaErr.Reason),
	}}, true
}

// missingProperty extracts the name from reasons like `property "x" is missing`.
func missingProperty(reason string) string {
	start := strings.Index(reason, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(reason[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return reason[start+1 : start+1+end]
}

func topLevel(path string) string {
	if idx := strings.Index(path, "."); idx >= 0 {
		return path[:idx]
	}
	return path
}
