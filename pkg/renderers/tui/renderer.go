package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/validation"
)

const secretMask = "********"

// Renderer collects form values interactively. It mounts one binding per
// field, checks every answer with the form's own validation and only returns
// output for a snapshot that passed submission.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
	theme        Theme
}

// New constructs a TUI renderer. Without WithPromptDriver the survey driver
// writes to stdout.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
		theme: Theme{
			ErrorPrefix: "✖ ",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if _, err := ParseOutputFormat(string(r.outputFormat)); err != nil {
		return nil, err
	}
	return r, nil
}

// Run prompts for every field, submits the form and serializes the accepted
// snapshot. When fields is empty the form's registered names are used.
//
// A blocked submission prints its messages and asks again for the failing
// fields only. After MaxAttempts blocked submissions Run returns
// ErrAttemptsExhausted wrapping the last failures.
func (r *Renderer) Run(ctx context.Context, f *form.Form, fields []field.Info) ([]byte, error) {
	if f == nil {
		return nil, errors.New("tui: nil form")
	}
	if len(fields) == 0 {
		for _, name := range f.Fields() {
			fields = append(fields, field.Info{Name: name})
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("tui: form has no fields")
	}

	pending := fields
	for attempt := 1; ; attempt++ {
		for _, info := range pending {
			if err := r.promptField(ctx, f, info); err != nil {
				return nil, err
			}
		}

		result, err := f.Submit(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("tui: submit: %w", err)
		}
		if result.Submitted {
			return r.serialize(result.Values, fields)
		}

		if err := r.report(ctx, fields, result.Failures); err != nil {
			return nil, err
		}
		if attempt >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %w", ErrAttemptsExhausted, validation.Failures(result.Failures))
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: "Fix the fields above?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, ErrAborted
		}
		pending = failing(fields, result.Failures)
	}
}

func (r *Renderer) promptField(ctx context.Context, f *form.Form, info field.Info) error {
	binding, err := f.Register(info.Name)
	if err != nil {
		return err
	}

	cfg := InputConfig{
		Message: info.Title(),
		Help:    strings.Join(info.Rules, ", "),
		Validator: func(answer string) error {
			if err := binding.Input(answer); err != nil {
				return err
			}
			failure, err := f.ValidateNow(ctx, info.Name)
			if err != nil {
				return err
			}
			if failure != nil {
				return errors.New(failure.Message)
			}
			return nil
		},
	}

	var answer string
	if info.Secret {
		answer, err = r.driver.Password(ctx, cfg)
	} else {
		cfg.Default = binding.Value()
		answer, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return binding.Input(answer)
}

func (r *Renderer) report(ctx context.Context, fields []field.Info, failures []validation.Failure) error {
	labels := make(map[string]string, len(fields))
	for _, info := range fields {
		labels[info.Name] = info.Title()
	}
	for _, failure := range failures {
		msg := r.theme.ErrorPrefix + failure.Message
		if label, ok := labels[failure.Path]; ok && !strings.Contains(failure.Message, label) {
			msg = r.theme.ErrorPrefix + label + ": " + failure.Message
		}
		if err := r.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// failing keeps the fields named by failures, in declaration order. A failure
// that names no known field sends every field back to the user.
func failing(fields []field.Info, failures []validation.Failure) []field.Info {
	names := make(map[string]struct{}, len(failures))
	for _, failure := range failures {
		names[failure.Path] = struct{}{}
	}
	var out []field.Info
	for _, info := range fields {
		if _, ok := names[info.Name]; ok {
			out = append(out, info)
			delete(names, info.Name)
		}
	}
	if len(names) > 0 || len(out) == 0 {
		return fields
	}
	return out
}

func (r *Renderer) serialize(values field.Snapshot, fields []field.Info) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatJSON:
		return json.Marshal(values.Values())
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for name, value := range values.Values() {
			encoded.Set(name, value)
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values, fields)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, r.outputFormat)
	}
}

func prettyPrint(values field.Snapshot, fields []field.Info) string {
	secret := make(map[string]bool, len(fields))
	for _, info := range fields {
		secret[info.Name] = info.Secret
	}
	names := values.Names()
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		value := values.Value(name)
		if secret[name] && value != "" {
			value = secretMask
		}
		fmt.Fprintf(&b, "%s=%s\n", name, value)
	}
	return b.String()
}
