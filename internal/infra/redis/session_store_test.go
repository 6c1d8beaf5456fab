package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
)

func TestSessionStoreSetsAndClearsMarkers(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	local := memory.NewSessionStore(time.Minute, time.Minute)
	store := NewSessionStore(client, local, time.Minute)

	session, err := store.Create("host", sampleQuestions(), domain.RewardPolicy{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("pair:session:" + session.ID()) {
		t.Fatalf("expected session marker to be set")
	}
	if !mr.Exists("pair:code:" + session.Code()) {
		t.Fatalf("expected code reservation to be set")
	}

	store.Evict(session.ID())
	if mr.Exists("pair:session:" + session.ID()) {
		t.Fatalf("expected session marker to be removed")
	}
	if mr.Exists("pair:code:" + session.Code()) {
		t.Fatalf("expected code reservation to be removed")
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1, Points: 1},
	}
}
