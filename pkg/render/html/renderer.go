package html

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	gotemplate "github.com/goliatone/go-template"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var embedded embed.FS

const (
	templateExt     = ".tpl"
	summaryTemplate = "summary"
	fieldTemplate   = "field"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	labels    map[string]string
	policy    *bluemonday.Policy
}

// WithTemplates replaces the embedded templates. The filesystem must provide
// summary.tpl and field.tpl.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithLabels maps field names to display labels in the summary.
func WithLabels(labels map[string]string) Option {
	return func(cfg *config) {
		if cfg.labels == nil {
			cfg.labels = make(map[string]string, len(labels))
		}
		for name, label := range labels {
			cfg.labels[strings.TrimSpace(name)] = strings.TrimSpace(label)
		}
	}
}

// WithPolicy overrides the sanitising policy applied to every message.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer turns error maps into HTML fragments.
type Renderer struct {
	engine *gotemplate.Engine
	labels map[string]string
	policy *bluemonday.Policy
}

// New loads the templates and returns a Renderer. Both templates are rendered
// once so a broken filesystem fails here rather than on first use.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{policy: bluemonday.StrictPolicy()}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: open embedded templates: %w", err)
		}
		cfg.templates = sub
	}

	engine, err := gotemplate.NewRenderer(
		gotemplate.WithFS(cfg.templates),
		gotemplate.WithExtension(templateExt),
	)
	if err != nil {
		return nil, fmt.Errorf("html: template engine: %w", err)
	}
	for _, name := range []string{summaryTemplate, fieldTemplate} {
		if _, err := engine.RenderTemplate(name, map[string]any{}); err != nil {
			return nil, fmt.Errorf("html: load %s%s: %w", name, templateExt, err)
		}
	}
	return &Renderer{engine: engine, labels: cfg.labels, policy: cfg.policy}, nil
}

// Summary renders every message in errors. Form level messages (empty key)
// come first, then fields in order; fields missing from order follow sorted
// by name. An empty map renders "".
func (r *Renderer) Summary(errs map[string]string, order ...string) (string, error) {
	var formMessages []string
	if msg := r.sanitize(errs[""]); msg != "" {
		formMessages = append(formMessages, msg)
	}

	entries := make([]map[string]any, 0, len(errs))
	for _, name := range orderedNames(errs, order) {
		msg := r.sanitize(errs[name])
		if msg == "" {
			continue
		}
		entries = append(entries, map[string]any{
			"name":    name,
			"label":   r.label(name),
			"message": msg,
		})
	}
	if len(formMessages) == 0 && len(entries) == 0 {
		return "", nil
	}

	out, err := r.engine.RenderTemplate(summaryTemplate, map[string]any{"form": formMessages, "entries": entries})
	if err != nil {
		return "", fmt.Errorf("html: render summary: %w", err)
	}
	return out, nil
}

// Field renders the message recorded for name, or "" when there is none.
func (r *Renderer) Field(name string, errs map[string]string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("html: field name is required")
	}
	msg := r.sanitize(errs[name])
	if msg == "" {
		return "", nil
	}
	out, err := r.engine.RenderTemplate(fieldTemplate, map[string]any{"name": name, "message": msg})
	if err != nil {
		return "", fmt.Errorf("html: render field %q: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

// WriteSummary renders the summary into w.
func (r *Renderer) WriteSummary(w io.Writer, errs map[string]string, order ...string) error {
	out, err := r.Summary(errs, order...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (r *Renderer) sanitize(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(r.policy.Sanitize(trimmed))
}

func (r *Renderer) label(name string) string {
	if label := r.labels[name]; label != "" {
		return label
	}
	return name
}

func orderedNames(errs map[string]string, order []string) []string {
	seen := make(map[string]struct{}, len(errs))
	out := make([]string, 0, len(errs))
	for _, name := range order {
		if _, ok := errs[name]; !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	var rest []string
	for name := range errs {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
