// Package formvalue bridges flat string snapshots and typed schema
// documents: it coerces values to declared property types and resolves
// message overrides declared next to each property.
package formvalue

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/validation"
)

const (
	// MessagesExtension maps a keyword to a user facing message.
	MessagesExtension = "x-messages"
	// EqualsExtension names a sibling property the value must equal.
	EqualsExtension = "x-equals"
	// EqualsKeyword is the keyword used to look up the x-equals message.
	EqualsKeyword = "equals"
)

// Property is the subset of a property schema the bridge cares about.
type Property struct {
	Types    []string
	Title    string
	Format   string
	Messages map[string]string
	Equals   string
}

// Object is an ordered set of top level properties.
type Object struct {
	Names      []string
	Properties map[string]Property
	Required   []string
}

// Has reports whether name is a declared property.
func (o Object) Has(name string) bool {
	_, ok := o.Properties[name]
	return ok
}

// Coerce converts snapshot strings into the JSON value a schema validator
// expects. Blank values are left out so "required" fires. Values that do not
// parse as the declared type stay strings and surface as type errors.
func (o Object) Coerce(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for name, raw := range values {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out[name] = coerce(o.Properties[name].Types, raw)
	}
	return out
}

func coerce(types []string, raw string) any {
	trimmed := strings.TrimSpace(raw)
	for _, t := range types {
		switch t {
		case "integer":
			if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				return float64(n)
			}
		case "number":
			if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return n
			}
		case "boolean":
			if b, err := strconv.ParseBool(trimmed); err == nil {
				return b
			}
		case "string":
			return raw
		}
	}
	return raw
}

// Message returns the override for keyword on path, or fallback.
func (o Object) Message(path, keyword, fallback string) string {
	if prop, ok := o.Properties[path]; ok {
		if msg := strings.TrimSpace(prop.Messages[keyword]); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(fallback)
}

// EqualsFailures checks every x-equals declaration against values.
func (o Object) EqualsFailures(values map[string]string) []validation.Failure {
	var out []validation.Failure
	for _, name := range o.Names {
		prop := o.Properties[name]
		if prop.Equals == "" {
			continue
		}
		if values[name] == values[prop.Equals] {
			continue
		}
		out = append(out, validation.Failure{
			Path:    name,
			Message: o.Message(name, EqualsKeyword, "must match "+prop.Equals),
		})
	}
	return out
}

// Describe lists the properties in declaration order.
func (o Object) Describe() []field.Info {
	required := make(map[string]bool, len(o.Required))
	for _, name := range o.Required {
		required[name] = true
	}
	out := make([]field.Info, 0, len(o.Names))
	for _, name := range o.Names {
		prop := o.Properties[name]
		out = append(out, field.Info{
			Name:     name,
			Label:    prop.Title,
			Secret:   prop.Format == "password",
			Required: required[name],
		})
	}
	return out
}

// StringMap decodes an extension value into a string map. Extension values
// arrive as decoded JSON, raw JSON or YAML maps depending on the loader.
func StringMap(value any) map[string]string {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for key, item := range v {
			if s, ok := item.(string); ok {
				out[key] = s
			}
		}
		return out
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}
	return out
}

// String decodes an extension value into a string.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	var out string
	if err := json.Unmarshal(payload, &out); err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
