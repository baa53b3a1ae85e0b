package errorstore_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/errorstore"
	"github.com/goliatone/go-formbind/pkg/validation"
)

func TestStore_PointUpdatesKeepOtherFields(t *testing.T) {
	store := errorstore.New()
	store.Set("username", "Username is required")
	store.Set("password", "Password is required")
	store.Clear("username")

	want := map[string]string{"password": "Password is required"}
	if diff := cmp.Diff(want, store.Read()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if _, ok := store.Get("username"); ok {
		t.Fatalf("expected cleared key to be absent")
	}
}

func TestStore_NoOpWritesDoNotPublish(t *testing.T) {
	store := errorstore.New()
	var published int
	store.Subscribe(func(errorstore.State) { published++ })

	store.Set("username", "bad")
	store.Set("username", "bad")
	store.Clear("password")
	store.ReplaceAll([]validation.Failure{{Path: "username", Message: "bad"}})

	if published != 1 {
		t.Fatalf("expected a single publish, got %d", published)
	}
	if got := store.Version(); got != 1 {
		t.Fatalf("expected version 1, got %d", got)
	}
}

func TestStore_ReplaceAllLastWins(t *testing.T) {
	store := errorstore.New()
	store.Set("stale", "old message")

	store.ReplaceAll([]validation.Failure{
		{Path: "username", Message: "first"},
		{Path: "username", Message: "second"},
		{Path: "confirmPassword", Message: "Passwords do not match"},
	})

	want := map[string]string{
		"username":        "second",
		"confirmPassword": "Passwords do not match",
	}
	if diff := cmp.Diff(want, store.Read()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReplaceAllIsAtomicForSubscribers(t *testing.T) {
	store := errorstore.New()
	store.Set("a", "old")

	var seen []map[string]string
	store.Subscribe(func(s errorstore.State) {
		seen = append(seen, s.Errors)
	})
	store.ReplaceAll([]validation.Failure{
		{Path: "b", Message: "one"},
		{Path: "c", Message: "two"},
	})

	if len(seen) != 1 {
		t.Fatalf("expected exactly one observed state, got %d", len(seen))
	}
	if diff := cmp.Diff(map[string]string{"b": "one", "c": "two"}, seen[0]); diff != "" {
		t.Fatalf("observed state mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReadIsACopy(t *testing.T) {
	store := errorstore.New()
	store.Set("username", "bad")

	read := store.Read()
	read["username"] = "tampered"
	if got, _ := store.Get("username"); got != "bad" {
		t.Fatalf("expected store to be unaffected by reader mutation, got %q", got)
	}
}

func TestStore_ConcurrentReadersNeverSeeTornState(t *testing.T) {
	store := errorstore.New()
	batches := [][]validation.Failure{
		{{Path: "a", Message: "x"}, {Path: "b", Message: "x"}},
		{{Path: "a", Message: "y"}, {Path: "b", Message: "y"}},
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			store.ReplaceAll(batches[i%2])
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		state := store.State()
		if len(state.Errors) == 0 {
			continue
		}
		if state.Errors["a"] != state.Errors["b"] {
			t.Fatalf("observed torn state: %v", state.Errors)
		}
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	store := errorstore.New()
	var calls int
	cancel := store.Subscribe(func(errorstore.State) { calls++ })
	store.Set("a", "1")
	cancel()
	cancel()
	store.Set("a", "2")
	if calls != 1 {
		t.Fatalf("expected one call before unsubscribe, got %d", calls)
	}
}
