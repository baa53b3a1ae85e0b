package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/validation"
)

func TestAdapter_ValidateFieldPasses(t *testing.T) {
	schema := validation.Funcs{
		At: func(_ context.Context, path string, values map[string]string) error {
			if len(values[path]) < 3 {
				return validation.Fail(path, "too short")
			}
			return nil
		},
	}
	adapter, err := validation.NewAdapter(schema)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	failure, err := adapter.ValidateField(context.Background(), "username", field.NewSnapshot(map[string]string{"username": "Nick"}))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if failure != nil {
		t.Fatalf("expected no failure, got %#v", failure)
	}
}

func TestAdapter_ValidateFieldPicksOwnPath(t *testing.T) {
	schema := validation.Funcs{
		At: func(_ context.Context, _ string, _ map[string]string) error {
			return validation.Failures{
				{Path: "password", Message: "unrelated"},
				{Path: "confirmPassword", Message: "Passwords do not match"},
				{Path: "confirmPassword", Message: "second message"},
			}
		},
	}
	adapter, _ := validation.NewAdapter(schema)

	failure, err := adapter.ValidateField(context.Background(), "confirmPassword", field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := &validation.Failure{Path: "confirmPassword", Message: "Passwords do not match"}
	if diff := cmp.Diff(want, failure); diff != "" {
		t.Fatalf("failure mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_UnknownPathIsValid(t *testing.T) {
	schema := validation.Funcs{
		At: func(context.Context, string, map[string]string) error {
			return validation.ErrUnknownPath
		},
	}
	adapter, _ := validation.NewAdapter(schema)
	failure, err := adapter.ValidateField(context.Background(), "nickname", field.NewSnapshot(nil))
	if err != nil || failure != nil {
		t.Fatalf("expected unknown path to pass, got failure=%v err=%v", failure, err)
	}
}

func TestAdapter_InfrastructureErrorsSurface(t *testing.T) {
	boom := errors.New("schema exploded")
	schema := validation.Funcs{
		At:  func(context.Context, string, map[string]string) error { return boom },
		All: func(context.Context, map[string]string) error { return boom },
	}
	adapter, _ := validation.NewAdapter(schema)

	if _, err := adapter.ValidateField(context.Background(), "username", field.NewSnapshot(nil)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped infrastructure error, got %v", err)
	}
	if _, err := adapter.ValidateAll(context.Background(), field.NewSnapshot(nil)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped infrastructure error, got %v", err)
	}
}

func TestAdapter_ValidateAllFirstMessagePerPath(t *testing.T) {
	schema := validation.Funcs{
		All: func(context.Context, map[string]string) error {
			return validation.Failures{
				{Path: "username", Message: "Username is required"},
				{Path: "username", Message: "Username must be at least 3 characters"},
				{Path: "password", Message: "Password is required"},
				{Path: "email", Message: "   "},
			}
		},
	}
	adapter, _ := validation.NewAdapter(schema)

	got, err := adapter.ValidateAll(context.Background(), field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	want := []validation.Failure{
		{Path: "username", Message: "Username is required"},
		{Path: "password", Message: "Password is required"},
		{Path: "email", Message: "email is invalid"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_BlankMessagesStillFail(t *testing.T) {
	schema := validation.Funcs{
		At:  func(_ context.Context, path string, _ map[string]string) error { return validation.Fail(path, "") },
		All: func(context.Context, map[string]string) error { return validation.Failures{} },
	}
	adapter, _ := validation.NewAdapter(schema)

	failure, err := adapter.ValidateField(context.Background(), "username", field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := &validation.Failure{Path: "username", Message: "username is invalid"}
	if diff := cmp.Diff(want, failure); diff != "" {
		t.Fatalf("failure mismatch (-want +got):\n%s", diff)
	}

	got, err := adapter.ValidateAll(context.Background(), field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	if diff := cmp.Diff([]validation.Failure{{Message: "form is invalid"}}, got); diff != "" {
		t.Fatalf("empty failures should still block (-want +got):\n%s", diff)
	}
}

func TestAdapter_ValidateFieldIgnoresOtherFields(t *testing.T) {
	schema := validation.Funcs{
		At: func(context.Context, string, map[string]string) error {
			return validation.Fail("password", "Password is required")
		},
	}
	adapter, _ := validation.NewAdapter(schema)

	failure, err := adapter.ValidateField(context.Background(), "username", field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if failure != nil {
		t.Fatalf("expected another field's failure to be ignored, got %#v", failure)
	}
}

func TestAdapter_ValidateFieldAcceptsNestedPath(t *testing.T) {
	schema := validation.Funcs{
		At: func(context.Context, string, map[string]string) error {
			return validation.Failures{
				{Path: "user", Message: "prefix only"},
				{Path: "username.minLength", Message: "too short"},
			}
		},
	}
	adapter, _ := validation.NewAdapter(schema)

	failure, err := adapter.ValidateField(context.Background(), "username", field.NewSnapshot(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := &validation.Failure{Path: "username", Message: "too short"}
	if diff := cmp.Diff(want, failure); diff != "" {
		t.Fatalf("failure mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAdapter_MisusePolicy(t *testing.T) {
	if _, err := validation.NewAdapter(nil); !errors.Is(err, validation.ErrInvalidSchema) {
		t.Fatalf("expected strict mode to reject nil schema, got %v", err)
	}
	if _, err := validation.NewAdapterFromAny("not a schema"); !errors.Is(err, validation.ErrInvalidSchema) {
		t.Fatalf("expected strict mode to reject non-schema value, got %v", err)
	}

	adapter, err := validation.NewAdapterFromAny(42, validation.WithLenientSchema())
	if err != nil {
		t.Fatalf("expected lenient mode to accept misuse, got %v", err)
	}
	if !adapter.Disabled() {
		t.Fatalf("expected lenient adapter to be disabled")
	}
	failures, err := adapter.ValidateAll(context.Background(), field.NewSnapshot(map[string]string{"username": ""}))
	if err != nil || len(failures) != 0 {
		t.Fatalf("expected lenient adapter to pass everything, got %v %v", failures, err)
	}
}

func TestFieldFromPointer(t *testing.T) {
	cases := map[string]string{
		"":                                    "",
		"/username":                           "username",
		"#/properties/username/minLength":     "username.minLength",
		"/properties/address/properties/city": "address.city",
		"/a~1b":                               "a/b",
	}
	for pointer, want := range cases {
		if got := validation.FieldFromPointer(pointer); got != want {
			t.Fatalf("FieldFromPointer(%q) = %q, want %q", pointer, got, want)
		}
	}
}

func TestAsFailures(t *testing.T) {
	if _, ok := validation.AsFailures(nil); ok {
		t.Fatalf("expected nil error to yield no failures")
	}
	if _, ok := validation.AsFailures(errors.New("plain")); ok {
		t.Fatalf("expected plain error to yield no failures")
	}
	wrapped := errors.Join(errors.New("context"), validation.Fail("username", "bad"))
	got, ok := validation.AsFailures(wrapped)
	if !ok || len(got) != 1 || got[0].Path != "username" {
		t.Fatalf("expected wrapped failures, got %v %v", got, ok)
	}
}
