package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPath is returned by a Schema that has no rules for the requested
// path. The adapter treats it as a passing validation.
var ErrUnknownPath = errors.New("validation: schema does not contain path")

// Failure is one violated rule, tagged with the field path it belongs to.
type Failure struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Failures is a collection of violations that implements error.
type Failures []Failure

// Error summarizes the first few failures.
func (fs Failures) Error() string {
	if len(fs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	limit := len(fs)
	if limit > maxShown {
		limit = maxShown
	}
	for i := 0; i < limit; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", fs[i].Path, fs[i].Message)
	}
	if len(fs) > limit {
		fmt.Fprintf(b, "; ... (total %d)", len(fs))
	}
	return b.String()
}

// Fail returns an error carrying a single failure.
func Fail(path, message string) error {
	return Failures{{Path: path, Message: message}}
}

// AsFailures extracts Failures from err. The second result is false for nil
// errors and for errors that do not describe rule violations.
func AsFailures(err error) (Failures, bool) {
	if err == nil {
		return nil, false
	}
	var fs Failures
	if errors.As(err, &fs) {
		return fs, true
	}
	var single *Failure
	if errors.As(err, &single) && single != nil {
		return Failures{*single}, true
	}
	return nil, false
}

// Error lets a single *Failure travel as an error.
func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Path + ": " + f.Message
}

// FirstPerPath keeps the first failure reported for each path, preserving
// report order. Messages are trimmed; a blank message is replaced by a
// generic one so the violation is never lost.
func FirstPerPath(failures []Failure) []Failure {
	if len(failures) == 0 {
		return nil
	}
	out := make([]Failure, 0, len(failures))
	seen := make(map[string]struct{}, len(failures))
	for _, failure := range failures {
		path := strings.TrimSpace(failure.Path)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		message := strings.TrimSpace(failure.Message)
		if message == "" {
			message = fallbackMessage(path)
		}
		out = append(out, Failure{Path: path, Message: message})
	}
	return out
}

func fallbackMessage(path string) string {
	if path == "" {
		return "form is invalid"
	}
	return path + " is invalid"
}

// Owns reports whether path belongs to the field name: the field itself or
// one of its nested paths.
func Owns(name, path string) bool {
	if path == name {
		return true
	}
	return strings.HasPrefix(path, name) &&
		(strings.HasPrefix(path[len(name):], ".") || strings.HasPrefix(path[len(name):], "["))
}
