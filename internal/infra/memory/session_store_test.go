package memory

import (
	"strings"
	"testing"
	"time"

	"pairquiz-service/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "pick one", Options: []string{"a", "b"}, CorrectIndex: 0, Points: 1},
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute)

	session, err := store.Create("host", testQuestions(), domain.RewardPolicy{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(session.Code(), "QZ-") || len(session.Code()) != 7 {
		t.Fatalf("unexpected code format: %s", session.Code())
	}
	if _, ok := store.ByID(session.ID()); !ok {
		t.Fatalf("expected session by id")
	}
	if _, ok := store.ByCode(session.Code()); !ok {
		t.Fatalf("expected session by code")
	}

	store.Evict(session.ID())
	if _, ok := store.ByID(session.ID()); ok {
		t.Fatalf("expected session removed")
	}
	if _, ok := store.ByCode(session.Code()); ok {
		t.Fatalf("expected code freed")
	}
}

func TestSessionStoreCodesUniqueAmongActive(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute)

	codes := make(map[string]bool)
	for i := 0; i < 500; i++ {
		session, err := store.Create("host", testQuestions(), domain.RewardPolicy{})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if codes[session.Code()] {
			t.Fatalf("duplicate active code %s", session.Code())
		}
		codes[session.Code()] = true
	}
}

func TestSweepExpiresAndEvicts(t *testing.T) {
	now := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewSessionStoreWithClock(10*time.Minute, 5*time.Minute, clock)

	session, err := store.Create("host", testQuestions(), domain.RewardPolicy{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Before the TTL elapses nothing happens.
	if evicted := store.Sweep(now.Add(5 * time.Minute)); len(evicted) != 0 {
		t.Fatalf("expected no evictions, got %d", len(evicted))
	}

	// Past the TTL the sweep expires the session but retains it.
	now = now.Add(11 * time.Minute)
	if evicted := store.Sweep(now); len(evicted) != 0 {
		t.Fatalf("expired session should be retained, got %d evictions", len(evicted))
	}
	if snap := session.Snapshot(); snap.Status != domain.StatusExpired {
		t.Fatalf("expected EXPIRED, got %s", snap.Status)
	}

	// Past the retention window it is evicted and the code freed.
	now = now.Add(6 * time.Minute)
	evicted := store.Sweep(now)
	if len(evicted) != 1 || evicted[0].ID() != session.ID() {
		t.Fatalf("expected session evicted, got %v", evicted)
	}
	if _, ok := store.ByCode(session.Code()); ok {
		t.Fatalf("expected code freed after eviction")
	}
}
