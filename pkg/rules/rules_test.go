package rules_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/rules"
	"github.com/goliatone/go-formbind/pkg/validation"
)

func signupSchema() *rules.ObjectSchema {
	return rules.Object(
		rules.Field("username", rules.String().
			Required("Username is required").
			Min(3, "Username must be at least 3 characters")),
		rules.Field("email", rules.String().Email("Invalid email")),
		rules.Field("password", rules.String().Secret().Required("Password is required")),
		rules.Field("confirmPassword", rules.String().Secret().
			EqualTo("password", "Passwords do not match")),
	)
}

func TestObjectSchema_ValidateAt(t *testing.T) {
	schema := signupSchema()
	ctx := context.Background()

	cases := []struct {
		name   string
		path   string
		values map[string]string
		want   string
	}{
		{name: "too short", path: "username", values: map[string]string{"username": "Ni"}, want: "Username must be at least 3 characters"},
		{name: "ok", path: "username", values: map[string]string{"username": "Nick"}},
		{name: "blank required", path: "username", values: map[string]string{"username": "  "}, want: "Username is required"},
		{name: "blank optional skips email", path: "email", values: map[string]string{"email": ""}},
		{name: "bad email", path: "email", values: map[string]string{"email": "nope"}, want: "Invalid email"},
		{name: "good email", path: "email", values: map[string]string{"email": "nick@example.com"}},
		{name: "mismatch", path: "confirmPassword", values: map[string]string{"password": "Passwordlol123", "confirmPassword": "Passwordlol321"}, want: "Passwords do not match"},
		{name: "blank mismatch", path: "confirmPassword", values: map[string]string{"password": "x"}, want: "Passwords do not match"},
		{name: "match", path: "confirmPassword", values: map[string]string{"password": "Passwordlol123", "confirmPassword": "Passwordlol123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := schema.ValidateAt(ctx, tc.path, tc.values)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}
			failures, ok := validation.AsFailures(err)
			if !ok {
				t.Fatalf("expected failures, got %v", err)
			}
			want := validation.Failures{{Path: tc.path, Message: tc.want}}
			if diff := cmp.Diff(want, failures); diff != "" {
				t.Fatalf("failures mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObjectSchema_UnknownPath(t *testing.T) {
	err := signupSchema().ValidateAt(context.Background(), "nickname", nil)
	if !errors.Is(err, validation.ErrUnknownPath) {
		t.Fatalf("expected ErrUnknownPath, got %v", err)
	}
}

func TestObjectSchema_ValidateCollectsAll(t *testing.T) {
	err := signupSchema().Validate(context.Background(), map[string]string{
		"username":        "Ni",
		"password":        "Passwordlol123",
		"confirmPassword": "Passwordlol321",
	})
	failures, ok := validation.AsFailures(err)
	if !ok {
		t.Fatalf("expected failures, got %v", err)
	}
	want := validation.Failures{
		{Path: "username", Message: "Username must be at least 3 characters"},
		{Path: "confirmPassword", Message: "Passwords do not match"},
	}
	if diff := cmp.Diff(want, failures); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectSchema_StopsAtFirstFailure(t *testing.T) {
	schema := rules.Object(rules.Field("code", rules.String().
		Min(4, "too short").
		Matches(regexp.MustCompile(`^[0-9]+$`), "digits only")))

	err := schema.ValidateAt(context.Background(), "code", map[string]string{"code": "ab"})
	failures, _ := validation.AsFailures(err)
	if len(failures) != 1 || failures[0].Message != "too short" {
		t.Fatalf("expected only the first failure, got %v", failures)
	}
}

func TestObjectSchema_DefaultMessages(t *testing.T) {
	schema := rules.Object(
		rules.Field("role", rules.String().Label("Role").Required("").OneOf([]string{"admin", "user"}, "")),
	)
	ctx := context.Background()

	err := schema.ValidateAt(ctx, "role", map[string]string{})
	if failures, _ := validation.AsFailures(err); len(failures) != 1 || failures[0].Message != "Role is required" {
		t.Fatalf("unexpected required message: %v", err)
	}
	err = schema.ValidateAt(ctx, "role", map[string]string{"role": "root"})
	if failures, _ := validation.AsFailures(err); len(failures) != 1 || failures[0].Message != "Role must be one of admin, user" {
		t.Fatalf("unexpected oneOf message: %v", err)
	}
}

func TestObjectSchema_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := signupSchema().Validate(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := validation.AsFailures(err); ok {
		t.Fatalf("cancellation must not look like a rule failure")
	}
}

func TestObjectSchema_Describe(t *testing.T) {
	got := signupSchema().Describe()
	want := []field.Info{
		{Name: "username", Required: true, Rules: []string{"min"}},
		{Name: "email", Rules: []string{"email"}},
		{Name: "password", Secret: true, Required: true},
		{Name: "confirmPassword", Secret: true, Rules: []string{"equalTo"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
fields:
  - name: username
    label: Username
    rules:
      - {kind: required, message: Username is required}
      - {kind: min, value: 3, message: Username must be at least 3 characters}
  - name: password
    secret: true
    rules:
      - {kind: required}
  - name: confirmPassword
    secret: true
    rules:
      - {kind: equalTo, field: password, message: Passwords do not match}
`)
	schema, err := rules.LoadYAML(doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	err = schema.Validate(context.Background(), map[string]string{"username": "Ni", "confirmPassword": "x"})
	failures, ok := validation.AsFailures(err)
	if !ok {
		t.Fatalf("expected failures, got %v", err)
	}
	want := validation.Failures{
		{Path: "username", Message: "Username must be at least 3 characters"},
		{Path: "password", Message: "password is required"},
		{Path: "confirmPassword", Message: "Passwords do not match"},
	}
	if diff := cmp.Diff(want, failures); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONAndErrors(t *testing.T) {
	schema, err := rules.Load([]byte(`{"fields":[{"name":"code","rules":[{"kind":"pattern","pattern":"^[a-z]+$","message":"lowercase only"}]}]}`))
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	err = schema.ValidateAt(context.Background(), "code", map[string]string{"code": "ABC"})
	if failures, _ := validation.AsFailures(err); len(failures) != 1 || failures[0].Message != "lowercase only" {
		t.Fatalf("unexpected result: %v", err)
	}

	if _, err := rules.Load([]byte("fields:\n  - name: x\n    rules:\n      - {kind: bogus}\n")); !errors.Is(err, rules.ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
	if _, err := rules.Load([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := rules.LoadYAML([]byte("fields: []\n")); err == nil {
		t.Fatalf("expected error for document without fields")
	}
}
