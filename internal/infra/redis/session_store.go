package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - Session state stays in-process (the per-session locking and the
//     broadcast fan-out need it); Redis carries liveness markers and code
//     reservations so other instances can see which codes are taken.
//   - For true distribution you'd pair this with a pub/sub projector that
//     fans snapshots out across instances.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.SessionStore
}

func NewSessionStore(client *redis.Client, local *memory.SessionStore, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		local:  local,
	}
}

func (s *SessionStore) Create(hostID string, questions []domain.Question, rewards domain.RewardPolicy) (*app.Session, error) {
	session, err := s.local.Create(hostID, questions, rewards)
	if err != nil {
		return nil, err
	}
	// best-effort markers
	ctx := context.Background()
	_ = s.client.Set(ctx, s.sessionKey(session.ID()), session.Code(), s.ttl).Err()
	_ = s.client.Set(ctx, s.codeKey(session.Code()), session.ID(), s.ttl).Err()
	return session, nil
}

func (s *SessionStore) ByID(sessionID string) (*app.Session, bool) {
	return s.local.ByID(sessionID)
}

func (s *SessionStore) ByCode(code string) (*app.Session, bool) {
	return s.local.ByCode(code)
}

func (s *SessionStore) Evict(sessionID string) {
	session, ok := s.local.ByID(sessionID)
	s.local.Evict(sessionID)
	if ok {
		s.clearMarkers(session)
	}
}

func (s *SessionStore) Sweep(now time.Time) []*app.Session {
	evicted := s.local.Sweep(now)
	for _, session := range evicted {
		s.clearMarkers(session)
	}
	return evicted
}

func (s *SessionStore) clearMarkers(session *app.Session) {
	ctx := context.Background()
	_ = s.client.Del(ctx, s.sessionKey(session.ID()), s.codeKey(session.Code())).Err()
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "pair:session:" + sessionID
}

func (s *SessionStore) codeKey(code string) string {
	return "pair:code:" + code
}
