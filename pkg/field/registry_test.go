package field_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/field"
)

type inputElement struct {
	mu    sync.Mutex
	value string
}

func (e *inputElement) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *inputElement) SetValue(v string) {
	e.mu.Lock()
	e.value = v
	e.mu.Unlock()
}

func TestRegistry_RegisterTwiceKeepsIdentity(t *testing.T) {
	reg := field.NewRegistry()

	first, err := reg.Register("username")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := reg.Register("username")
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same binding for repeated registration")
	}
	if got := reg.Len(); got != 1 {
		t.Fatalf("expected one descriptor, got %d", got)
	}
}

func TestRegistry_RegisterRejectsEmptyName(t *testing.T) {
	reg := field.NewRegistry()
	if _, err := reg.Register("  "); !errors.Is(err, field.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestRegistry_NamesAreTrimmedEverywhere(t *testing.T) {
	reg := field.NewRegistry()

	registered, err := reg.Register(" username ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Name() != "username" {
		t.Fatalf("expected trimmed name, got %q", registered.Name())
	}
	for _, name := range []string{"username", " username ", "username\t"} {
		got, ok := reg.Lookup(name)
		if !ok || got != registered {
			t.Fatalf("lookup %q: expected the registered binding", name)
		}
	}
	if !reg.Unregister(" username") {
		t.Fatalf("expected unregister with surrounding space to remove the field")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", reg.Names())
	}
}

func TestRegistry_SnapshotReflectsLatestInput(t *testing.T) {
	reg := field.NewRegistry()
	user, _ := reg.Register("username")
	pass, _ := reg.Register("password")

	if err := user.Input("Ni"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if err := user.Input("Nick"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if err := pass.Input("secret"); err != nil {
		t.Fatalf("input: %v", err)
	}

	snap := reg.Snapshot()
	want := map[string]string{"username": "Nick", "password": "secret"}
	if diff := cmp.Diff(want, snap.Values()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"username", "password"}, snap.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_SnapshotIsImmutable(t *testing.T) {
	reg := field.NewRegistry()
	user, _ := reg.Register("username")
	_ = user.Input("Nick")

	snap := reg.Snapshot()
	_ = user.Input("Changed")

	if got := snap.Value("username"); got != "Nick" {
		t.Fatalf("expected captured value to stay Nick, got %q", got)
	}
	values := snap.Values()
	values["username"] = "mutated"
	if got := snap.Value("username"); got != "Nick" {
		t.Fatalf("expected Values to return a copy, got %q", got)
	}
}

func TestBinding_AttachReplacesElementKeepsIdentity(t *testing.T) {
	reg := field.NewRegistry()
	binding, _ := reg.Register("email")
	_ = binding.Input("a@example.com")

	el := &inputElement{}
	binding.Attach(el)

	if got := el.Value(); got != "a@example.com" {
		t.Fatalf("expected value carried into new element, got %q", got)
	}

	el.SetValue("b@example.com")
	if got := reg.Snapshot().Value("email"); got != "b@example.com" {
		t.Fatalf("expected snapshot to read the attached element, got %q", got)
	}

	again, _ := reg.Register("email")
	if again != binding {
		t.Fatalf("expected rebinding to preserve identity")
	}
}

func TestBinding_InputAfterUnregister(t *testing.T) {
	reg := field.NewRegistry()
	binding, _ := reg.Register("username")

	if !reg.Unregister("username") {
		t.Fatalf("expected unregister to report removal")
	}
	if err := binding.Input("late"); !errors.Is(err, field.ErrUnregistered) {
		t.Fatalf("expected ErrUnregistered, got %v", err)
	}
	if reg.Snapshot().Len() != 0 {
		t.Fatalf("expected empty snapshot after unmount")
	}
}

func TestRegistry_SubscribeReceivesInput(t *testing.T) {
	reg := field.NewRegistry()
	binding, _ := reg.Register("username")

	var got []string
	cancel := reg.Subscribe(func(name, value string) {
		got = append(got, name+"="+value)
	})

	_ = binding.Input("N")
	_ = binding.Input("Ni")
	cancel()
	_ = binding.Input("Nic")

	if diff := cmp.Diff([]string{"username=N", "username=Ni"}, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_Decode(t *testing.T) {
	snap := field.NewSnapshot(map[string]string{
		"username":        "Nick",
		"confirmPassword": "pw",
	})

	var payload struct {
		Username        string `json:"username"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := snap.Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Username != "Nick" || payload.ConfirmPassword != "pw" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if diff := cmp.Diff([]string{"confirmPassword", "username"}, snap.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
