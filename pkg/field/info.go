package field

// Info describes a field declared by a schema. Presentation layers use it to
// decide which fields to mount and how to prompt for them.
type Info struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Secret   bool     `json:"secret,omitempty"`
	Required bool     `json:"required,omitempty"`
	Rules    []string `json:"rules,omitempty"`
}

// Describer is implemented by schemas that can list their fields in
// declaration order.
type Describer interface {
	Describe() []Info
}

// Title returns the label, falling back to the name.
func (i Info) Title() string {
	if i.Label != "" {
		return i.Label
	}
	return i.Name
}
