package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pairquiz-service/internal/domain"
)

// SessionStore abstracts how pair sessions are registered and looked up
// (in-memory, Redis-backed, etc). Implementations own id and join-code
// allocation; codes must stay unique among non-terminal sessions.
type SessionStore interface {
	Create(hostID string, questions []domain.Question, rewards domain.RewardPolicy) (*Session, error)
	ByID(sessionID string) (*Session, bool)
	ByCode(code string) (*Session, bool)
	Evict(sessionID string)
	Sweep(now time.Time) []*Session
}

// QuestionBank builds a frozen question set from a quiz config.
type QuestionBank interface {
	BuildSet(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error)
}

// PairService contains the pair quiz use cases.
type PairService struct {
	sessions SessionStore
	bank     QuestionBank
	rewards  domain.RewardPolicy
}

func NewPairService(store SessionStore, bank QuestionBank, rewards domain.RewardPolicy) *PairService {
	return &PairService{sessions: store, bank: bank, rewards: rewards}
}

// Create freezes a question set for the config and registers a WAITING session.
func (s *PairService) Create(ctx context.Context, hostID string, cfg domain.QuizConfig) (domain.SessionSnapshot, error) {
	if hostID == "" {
		return domain.SessionSnapshot{}, fmt.Errorf("create: userId is required: %w", domain.ErrValidation)
	}

	questions, err := s.bank.BuildSet(ctx, cfg)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("create: %w", err)
	}

	session, err := s.sessions.Create(hostID, questions, s.rewards)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("create: %w", err)
	}
	return session.Snapshot(), nil
}

// Join pairs a partner to the waiting session holding the code.
func (s *PairService) Join(_ context.Context, userID, code string) (domain.SessionSnapshot, error) {
	if userID == "" || code == "" {
		return domain.SessionSnapshot{}, fmt.Errorf("join: userId and sessionCode are required: %w", domain.ErrValidation)
	}

	session, ok := s.sessions.ByCode(strings.ToUpper(code))
	if !ok {
		return domain.SessionSnapshot{}, fmt.Errorf("join code %s: %w", code, domain.ErrSessionNotFound)
	}
	return session.Join(userID)
}

// Fetch returns the session's current snapshot; clients poll this to observe
// partner progress and terminal transitions.
func (s *PairService) Fetch(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.ByID(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, fmt.Errorf("fetch %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return session.Snapshot(), nil
}

// SubmitAnswer records an answer and reports whether the question advanced.
func (s *PairService) SubmitAnswer(_ context.Context, sessionID, userID, questionID string, optionIndex int) (domain.SubmitResult, error) {
	session, ok := s.sessions.ByID(sessionID)
	if !ok {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return session.SubmitAnswer(userID, questionID, optionIndex)
}

// Cancel ends a non-terminal session with the supplied reason.
func (s *PairService) Cancel(_ context.Context, sessionID, userID, reason string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.ByID(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, fmt.Errorf("cancel %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return session.Cancel(userID, reason)
}

// Watch returns a channel that receives a snapshot on every session mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *PairService) Watch(_ context.Context, sessionID string) (<-chan domain.SessionSnapshot, func(), error) {
	session, ok := s.sessions.ByID(sessionID)
	if !ok {
		return nil, nil, fmt.Errorf("watch %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}
