package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestOpenAppendTake(t *testing.T) {
	s := NewStore(time.Hour)

	if !s.Open(1) {
		t.Fatal("Open returned false for a fresh user")
	}
	if s.Open(1) {
		t.Fatal("Open returned true while a batch is already open")
	}

	for _, code := range []string{"a", "b", "c"} {
		if _, ok := s.Append(1, code); !ok {
			t.Fatalf("Append(%q) failed", code)
		}
	}

	codes, ok := s.Take(1)
	if !ok {
		t.Fatal("Take returned false")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if s.Active(1) {
		t.Error("session still active after Take")
	}
}

func TestAppendWithoutOpen(t *testing.T) {
	s := NewStore(time.Hour)
	if _, ok := s.Append(1, "x"); ok {
		t.Fatal("Append succeeded without an open batch")
	}
}

func TestCancel(t *testing.T) {
	s := NewStore(time.Hour)
	if s.Cancel(1) {
		t.Fatal("Cancel returned true with nothing open")
	}
	s.Open(1)
	if !s.Cancel(1) {
		t.Fatal("Cancel returned false for an open batch")
	}
	if s.Active(1) {
		t.Error("session still active after Cancel")
	}
}

func TestSweepExpires(t *testing.T) {
	now := time.Now()
	s := NewStore(time.Hour)
	s.now = func() time.Time { return now }

	s.Open(1)
	s.Open(2)

	// User 2 stays fresh, user 1 goes idle past the TTL.
	now = now.Add(30 * time.Minute)
	s.Append(2, "x")
	now = now.Add(45 * time.Minute)

	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if s.Active(1) {
		t.Error("expired session 1 still active")
	}
	if !s.Active(2) {
		t.Error("fresh session 2 was swept")
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore(time.Hour)
	s.Open(1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(1, fmt.Sprintf("code-%d", i))
		}(i)
	}
	wg.Wait()

	codes, ok := s.Take(1)
	if !ok {
		t.Fatal("Take returned false")
	}
	if len(codes) != 50 {
		t.Fatalf("got %d codes, want 50", len(codes))
	}
}
