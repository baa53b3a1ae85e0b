package html_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbind/pkg/render/html"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

func TestSummary_OrdersAndSanitises(t *testing.T) {
	r, err := html.New(html.WithLabels(map[string]string{"username": "Username"}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Summary(map[string]string{
		"":                "Please fix the highlighted fields",
		"username":        "Username must be at least 3 characters",
		"confirmPassword": "<script>alert(1)</script>Passwords do not match & retry",
		"email":           "Invalid email",
	}, "username", "confirmPassword")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Fatalf("message was not sanitised: %s", out)
	}
	for _, want := range []string{
		`<p class="formbind-errors__form">Please fix the highlighted fields</p>`,
		`<a href="#username">Username</a>: Username must be at least 3 characters`,
		`Passwords do not match &amp; retry`,
		`data-field="email"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	username := strings.Index(out, `data-field="username"`)
	confirm := strings.Index(out, `data-field="confirmPassword"`)
	email := strings.Index(out, `data-field="email"`)
	if !(username < confirm && confirm < email) {
		t.Fatalf("unexpected order: username=%d confirm=%d email=%d", username, confirm, email)
	}
}

func TestSummary_Empty(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Summary(nil)
	if err != nil || out != "" {
		t.Fatalf("expected empty output, got %q, %v", out, err)
	}
	out, err = r.Summary(map[string]string{"username": "<b></b>"})
	if err != nil || out != "" {
		t.Fatalf("messages that sanitise to nothing should be skipped, got %q, %v", out, err)
	}
}

func TestField(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	errs := map[string]string{"username": "Username is required"}

	out, err := r.Field("username", errs)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	want := `<p class="formbind-error" id="username-error" data-field="username" role="alert">Username is required</p>`
	if out != want {
		t.Fatalf("unexpected fragment:\nwant %s\ngot  %s", want, out)
	}

	if out, err := r.Field("email", errs); err != nil || out != "" {
		t.Fatalf("expected empty output for valid field, got %q, %v", out, err)
	}
	if _, err := r.Field(" ", errs); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestWithTemplates(t *testing.T) {
	files := fstest.MapFS{
		"summary.tpl": {Data: []byte(`{% for entry in entries %}[{{ entry.name }}={{ entry.message|safe }}]{% endfor %}`)},
		"field.tpl":   {Data: []byte(`{{ message|safe }}`)},
	}
	r, err := html.New(html.WithTemplates(files))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var buf bytes.Buffer
	if err := r.WriteSummary(&buf, map[string]string{"b": "two", "a": "one"}); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if buf.String() != "[a=one][b=two]" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNew_MissingTemplate(t *testing.T) {
	files := fstest.MapFS{
		"summary.tpl": {Data: []byte(`{{ form }}`)},
	}
	if _, err := html.New(html.WithTemplates(files)); err == nil {
		t.Fatalf("expected an error when field.tpl is missing")
	}
}

func TestWriteSummary_Golden(t *testing.T) {
	r, err := html.New(html.WithLabels(map[string]string{"username": "Username"}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	errs := map[string]string{
		"":         "Please fix the highlighted fields",
		"password": "Password is required",
		"username": "Username is required",
	}

	_, written := testsupport.CaptureOutput(t, func(w io.Writer) (string, error) {
		return "", r.WriteSummary(w, errs, "username", "password")
	})

	golden := "testdata/summary.golden"
	if testsupport.WriteMaybeGolden(t, golden, []byte(written)) {
		return
	}
	if diff := testsupport.Diff(testsupport.MustReadGoldenString(t, golden), written); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
