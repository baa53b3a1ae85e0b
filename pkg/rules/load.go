package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrUnknownRule is returned when a document names a rule kind that does not
// exist.
var ErrUnknownRule = errors.New("rules: unknown rule kind")

type documentFile struct {
	Fields []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name   string     `json:"name" yaml:"name"`
	Label  string     `json:"label" yaml:"label"`
	Secret bool       `json:"secret" yaml:"secret"`
	Rules  []ruleFile `json:"rules" yaml:"rules"`
}

type ruleFile struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Message string   `json:"message" yaml:"message"`
	Value   int      `json:"value" yaml:"value"`
	Pattern string   `json:"pattern" yaml:"pattern"`
	Values  []string `json:"values" yaml:"values"`
	Field   string   `json:"field" yaml:"field"`
}

// Load parses a JSON or YAML rules document.
func Load(data []byte) (*ObjectSchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("rules: document is empty")
	}
	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("rules: parse: invalid JSON or YAML: %w", yerr)
		}
	}
	return build(doc)
}

// LoadYAML parses a YAML rules document.
func LoadYAML(data []byte) (*ObjectSchema, error) {
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: parse yaml: %w", err)
	}
	return build(doc)
}

func build(doc documentFile) (*ObjectSchema, error) {
	if len(doc.Fields) == 0 {
		return nil, errors.New("rules: document declares no fields")
	}
	fields := make([]FieldRules, 0, len(doc.Fields))
	for i, raw := range doc.Fields {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, fmt.Errorf("rules: field %d has an empty name", i)
		}
		schema := String().Label(raw.Label)
		if raw.Secret {
			schema.Secret()
		}
		for _, r := range raw.Rules {
			if err := apply(schema, r); err != nil {
				return nil, fmt.Errorf("rules: field %q: %w", name, err)
			}
		}
		fields = append(fields, Field(name, schema))
	}
	return Object(fields...), nil
}

func apply(schema *StringSchema, r ruleFile) error {
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "required":
		schema.Required(r.Message)
	case "min":
		schema.Min(r.Value, r.Message)
	case "max":
		schema.Max(r.Value, r.Message)
	case "matches", "pattern":
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", r.Pattern, err)
		}
		schema.Matches(re, r.Message)
	case "email":
		schema.Email(r.Message)
	case "oneof", "enum":
		if len(r.Values) == 0 {
			return errors.New("oneOf requires values")
		}
		schema.OneOf(r.Values, r.Message)
	case "equalto", "equals":
		ref := strings.TrimSpace(r.Field)
		if ref == "" {
			return errors.New("equalTo requires field")
		}
		schema.EqualTo(ref, r.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRule, r.Kind)
	}
	return nil
}
