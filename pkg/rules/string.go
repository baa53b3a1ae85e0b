package rules

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// TestFunc is a custom predicate. values holds the whole snapshot so the
// predicate may look at sibling fields.
type TestFunc func(value string, values map[string]string) bool

type rule struct {
	kind     string
	message  string
	fallback string
	// blank rules also run when the value is blank
	blank bool
	check TestFunc
}

// StringSchema is the rule chain for one string field. Rules run in
// declaration order and stop at the first failure.
type StringSchema struct {
	label    string
	secret   bool
	required string
	hasReq   bool
	rules    []rule
}

// String starts an empty rule chain.
func String() *StringSchema {
	return &StringSchema{}
}

// Label sets the human readable name used by default messages and prompts.
func (s *StringSchema) Label(label string) *StringSchema {
	s.label = strings.TrimSpace(label)
	return s
}

// Secret marks the field as a password style input for presentation layers.
func (s *StringSchema) Secret() *StringSchema {
	s.secret = true
	return s
}

// Required rejects blank values. It is checked before every other rule.
func (s *StringSchema) Required(message string) *StringSchema {
	s.hasReq = true
	s.required = message
	return s
}

// Min requires at least n characters.
func (s *StringSchema) Min(n int, message string) *StringSchema {
	return s.add("min", message, false, func(value string, _ map[string]string) bool {
		return utf8.RuneCountInString(value) >= n
	}, fmt.Sprintf("must be at least %d characters", n))
}

// Max allows at most n characters.
func (s *StringSchema) Max(n int, message string) *StringSchema {
	return s.add("max", message, false, func(value string, _ map[string]string) bool {
		return utf8.RuneCountInString(value) <= n
	}, fmt.Sprintf("must be at most %d characters", n))
}

// Matches requires the value to match re.
func (s *StringSchema) Matches(re *regexp.Regexp, message string) *StringSchema {
	return s.add("matches", message, false, func(value string, _ map[string]string) bool {
		return re != nil && re.MatchString(value)
	}, "has an invalid format")
}

// Email requires a bare address such as user@example.com.
func (s *StringSchema) Email(message string) *StringSchema {
	return s.add("email", message, false, func(value string, _ map[string]string) bool {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value
	}, "must be a valid email")
}

// OneOf restricts the value to the listed options.
func (s *StringSchema) OneOf(options []string, message string) *StringSchema {
	allowed := slices.Clone(options)
	return s.add("oneOf", message, false, func(value string, _ map[string]string) bool {
		return slices.Contains(allowed, value)
	}, "must be one of "+strings.Join(allowed, ", "))
}

// EqualTo requires the value to equal the sibling field ref. It also runs
// for blank values.
func (s *StringSchema) EqualTo(ref, message string) *StringSchema {
	return s.add("equalTo", message, true, func(value string, values map[string]string) bool {
		return value == values[ref]
	}, "must match "+ref)
}

// Test appends a custom predicate under name.
func (s *StringSchema) Test(name, message string, fn TestFunc) *StringSchema {
	if fn == nil {
		return s
	}
	return s.add(name, message, false, fn, "is invalid")
}

func (s *StringSchema) add(kind, message string, blank bool, check TestFunc, fallback string) *StringSchema {
	s.rules = append(s.rules, rule{
		kind:     kind,
		message:  strings.TrimSpace(message),
		fallback: fallback,
		blank:    blank,
		check:    check,
	})
	return s
}

// check returns the first failing message for value, or "".
func (s *StringSchema) check(name, value string, values map[string]string) string {
	blank := strings.TrimSpace(value) == ""
	if blank && s.hasReq {
		if strings.TrimSpace(s.required) != "" {
			return s.required
		}
		return s.display(name) + " is required"
	}
	for _, r := range s.rules {
		if blank && !r.blank {
			continue
		}
		if r.check(value, values) {
			continue
		}
		if r.message != "" {
			return r.message
		}
		return s.display(name) + " " + r.fallback
	}
	return ""
}

func (s *StringSchema) display(name string) string {
	if s.label != "" {
		return s.label
	}
	return name
}
