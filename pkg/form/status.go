package form

// Status is the validation state of one field.
type Status int

const (
	// StatusIdle means no validation is scheduled or running.
	StatusIdle Status = iota
	// StatusPending means input arrived and a validation is armed or running.
	StatusPending
	// StatusValid means the latest validation passed.
	StatusValid
	// StatusInvalid means the latest validation failed.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "idle"
	}
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusHook observes field status transitions.
type StatusHook func(name string, status Status)
