package formbind

import (
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// yamlToJSON re-encodes a YAML document as JSON. JSON input is returned
// unchanged.
func yamlToJSON(raw []byte) ([]byte, error) {
	if json.Valid(raw) {
		return raw, nil
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
