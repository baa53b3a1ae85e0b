package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-formbind/pkg/debounce"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

func TestScheduler_LastWriteWins(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var fired []string
	for _, value := range []string{"N", "Ni", "Nic", "Nick"} {
		value := value
		s.Schedule("username", 500*time.Millisecond, func() {
			fired = append(fired, value)
		})
		clock.Advance(100 * time.Millisecond)
	}

	if len(fired) != 0 {
		t.Fatalf("expected no action inside the quiet period, got %v", fired)
	}
	clock.Advance(500 * time.Millisecond)

	if len(fired) != 1 || fired[0] != "Nick" {
		t.Fatalf("expected exactly one action with the last value, got %v", fired)
	}
	if s.Pending("username") {
		t.Fatalf("expected no pending action after firing")
	}
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var user, pass int
	s.Schedule("username", 500*time.Millisecond, func() { user++ })
	s.Schedule("password", 500*time.Millisecond, func() { pass++ })
	if got := s.Len(); got != 2 {
		t.Fatalf("expected two pending actions, got %d", got)
	}

	clock.Advance(500 * time.Millisecond)
	if user != 1 || pass != 1 {
		t.Fatalf("expected each key to fire once, got user=%d pass=%d", user, pass)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var calls int
	s.Schedule("username", time.Second, func() { calls++ })
	if !s.Cancel("username") {
		t.Fatalf("expected cancel to report a pending action")
	}
	if s.Cancel("username") {
		t.Fatalf("expected second cancel to be a no-op")
	}
	clock.Advance(2 * time.Second)
	if calls != 0 {
		t.Fatalf("expected cancelled action not to run, got %d calls", calls)
	}
}

func TestScheduler_CancelAllStopsFutureWork(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var calls int
	s.Schedule("a", time.Second, func() { calls++ })
	s.Schedule("b", time.Second, func() { calls++ })
	s.CancelAll()
	s.Schedule("c", time.Second, func() { calls++ })

	clock.Advance(5 * time.Second)
	if calls != 0 {
		t.Fatalf("expected no actions after CancelAll, got %d", calls)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no pending actions after CancelAll")
	}
}

func TestScheduler_RealTimer(t *testing.T) {
	s := debounce.New()
	defer s.CancelAll()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		s.Schedule("k", 20*time.Millisecond, func() { calls.Add(1) })
	}

	testsupport.Eventually(t, func() bool { return calls.Load() == 1 }, "expected one coalesced call, got %d", calls.Load())
	time.Sleep(40 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one call, got %d", got)
	}
}
