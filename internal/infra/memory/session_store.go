package memory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/domain"
)

const (
	codePrefix   = "QZ-"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4

	// codeAttempts bounds retry-on-collision; the active-code space is tiny
	// relative to 36^4, so hitting this means the store is badly overfull.
	codeAttempts = 1000
)

// SessionStore is an in-memory implementation of app.SessionStore. The store
// lock only guards the registry maps; session state is guarded by each
// session's own lock, so unrelated sessions never contend.
type SessionStore struct {
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	rnd      *rand.Rand
	sessions map[string]*app.Session
	codes    map[string]string // active join code -> session id
}

func NewSessionStore(ttl, retention time.Duration) *SessionStore {
	return &SessionStore{
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions:  make(map[string]*app.Session),
		codes:     make(map[string]string),
	}
}

// NewSessionStoreWithClock is test-only for deterministic expiry.
func NewSessionStoreWithClock(ttl, retention time.Duration, now func() time.Time) *SessionStore {
	store := NewSessionStore(ttl, retention)
	store.now = now
	return store
}

// Create allocates an id and a join code unique among active sessions and
// registers the session in WAITING.
func (s *SessionStore) Create(hostID string, questions []domain.Question, rewards domain.RewardPolicy) (*app.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.allocateCodeLocked()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := app.NewSessionWithClock(id, code, hostID, questions, rewards, s.ttl, s.now)
	s.sessions[id] = session
	s.codes[code] = id
	return session, nil
}

func (s *SessionStore) ByID(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) ByCode(code string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, false
	}
	session, ok := s.sessions[id]
	return session, ok
}

// Evict removes the session and frees its join code for reuse.
func (s *SessionStore) Evict(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(sessionID)
}

// Sweep expires idle sessions and evicts terminal ones past the retention
// window. It returns the evicted sessions so wrapping stores can release
// whatever they keyed on them.
func (s *SessionStore) Sweep(now time.Time) []*app.Session {
	s.mu.RLock()
	candidates := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		candidates = append(candidates, session)
	}
	s.mu.RUnlock()

	var evicted []*app.Session
	for _, session := range candidates {
		session.ExpireIfIdle(now)
		if !session.Evictable(now, s.retention) {
			continue
		}
		s.mu.Lock()
		if _, ok := s.sessions[session.ID()]; ok {
			s.evictLocked(session.ID())
			evicted = append(evicted, session)
		}
		s.mu.Unlock()
	}
	return evicted
}

func (s *SessionStore) evictLocked(sessionID string) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	delete(s.codes, session.Code())
}

func (s *SessionStore) allocateCodeLocked() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := s.generateCodeLocked()
		if _, taken := s.codes[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique session code after %d attempts", codeAttempts)
}

func (s *SessionStore) generateCodeLocked() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[s.rnd.Intn(len(codeAlphabet))]
	}
	return codePrefix + string(buf)
}
