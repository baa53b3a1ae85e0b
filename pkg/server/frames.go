package server

// Client frame types.
const (
	FrameInput    = "input"
	FrameValidate = "validate"
	FrameSubmit   = "submit"
)

// Server frame types.
const (
	FrameFields    = "fields"
	FrameErrors    = "errors"
	FrameStatus    = "status"
	FrameSubmitted = "submitted"
	FrameRejected  = "rejected"
	FrameError     = "error"
)

// ClientFrame is a message sent by the browser. Input carries Field and
// Value; validate carries Field; submit carries nothing.
type ClientFrame struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// ServerFrame is a message pushed to the browser.
type ServerFrame struct {
	Type    string            `json:"type"`
	Field   string            `json:"field,omitempty"`
	Status  string            `json:"status,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Fields  []FieldFrame      `json:"fields,omitempty"`
	Version uint64            `json:"version,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Message string            `json:"message,omitempty"`
}

// FieldFrame describes one mounted field.
type FieldFrame struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Secret   bool   `json:"secret,omitempty"`
	Required bool   `json:"required,omitempty"`
}
