package app

import (
	"fmt"
	"sync"
	"time"

	"pairquiz-service/internal/domain"
)

// Session holds the live state of one pair quiz. All mutations go through the
// session's own mutex so that concurrent requests from both participants are
// linearized per session without contending with other sessions.
type Session struct {
	id        string
	code      string
	hostID    string
	questions []domain.Question
	rewards   domain.RewardPolicy
	ttl       time.Duration
	now       func() time.Time

	mu           sync.Mutex
	partnerID    string
	status       domain.Status
	current      int
	answers      map[string]map[string]int // question id -> user id -> option index
	scores       []domain.ParticipantScore
	cancelReason string
	createdAt    time.Time
	startedAt    time.Time
	completedAt  time.Time
	lastActivity time.Time
	expiresAt    time.Time
	subscribers  map[chan domain.SessionSnapshot]struct{}
}

// NewSession is exported for infrastructure layers that allocate sessions.
func NewSession(id, code, hostID string, questions []domain.Question, rewards domain.RewardPolicy, ttl time.Duration) *Session {
	return newSessionWithClock(id, code, hostID, questions, rewards, ttl, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, code, hostID string, questions []domain.Question, rewards domain.RewardPolicy, ttl time.Duration, now func() time.Time) *Session {
	return newSessionWithClock(id, code, hostID, questions, rewards, ttl, now)
}

func newSessionWithClock(id, code, hostID string, questions []domain.Question, rewards domain.RewardPolicy, ttl time.Duration, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:           id,
		code:         code,
		hostID:       hostID,
		questions:    questions,
		rewards:      rewards,
		ttl:          ttl,
		now:          now,
		status:       domain.StatusWaiting,
		answers:      make(map[string]map[string]int),
		createdAt:    created,
		lastActivity: created,
		expiresAt:    created.Add(ttl),
		subscribers:  make(map[chan domain.SessionSnapshot]struct{}),
	}
}

// ID returns the immutable session identifier.
func (s *Session) ID() string { return s.id }

// Code returns the immutable join code.
func (s *Session) Code() string { return s.code }

// Join sets the partner exactly once and starts the quiz.
func (s *Session) Join(userID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireIfDueLocked()

	// A partner retrying a join it already won is a success, not a conflict.
	if userID == s.partnerID && s.partnerID != "" {
		return s.snapshotLocked(), nil
	}
	if s.status == domain.StatusExpired {
		return domain.SessionSnapshot{}, fmt.Errorf("join %s: %w", s.id, domain.ErrSessionExpired)
	}
	if userID == s.hostID {
		return domain.SessionSnapshot{}, fmt.Errorf("join %s: host cannot join own session: %w", s.id, domain.ErrConflict)
	}
	if s.status != domain.StatusWaiting || s.partnerID != "" {
		return domain.SessionSnapshot{}, fmt.Errorf("join %s: session not joinable: %w", s.id, domain.ErrConflict)
	}

	s.partnerID = userID
	s.status = domain.StatusInProgress
	s.startedAt = s.now()
	s.touchLocked()
	return s.broadcastLocked(), nil
}

// SubmitAnswer records one participant's answer for the current question.
// Recording, the both-answered check, and advancement happen in a single
// critical section so two simultaneous submissions cannot both skip (or both
// trigger) the advance.
func (s *Session) SubmitAnswer(userID, questionID string, optionIndex int) (domain.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireIfDueLocked()

	if userID != s.hostID && (s.partnerID == "" || userID != s.partnerID) {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: user %s: %w", s.id, userID, domain.ErrUnauthorized)
	}

	question := s.questionByID(questionID)
	if question == nil {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: unknown question %s: %w", s.id, questionID, domain.ErrValidation)
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: option %d out of range: %w", s.id, optionIndex, domain.ErrValidation)
	}

	// Idempotent retry of an already-recorded answer, even if the session
	// advanced or completed since the client's original request.
	if recorded, ok := s.answers[questionID][userID]; ok {
		if recorded == optionIndex {
			return domain.SubmitResult{Session: s.snapshotLocked()}, nil
		}
		return domain.SubmitResult{}, fmt.Errorf("submit %s: answer for %s already recorded: %w", s.id, questionID, domain.ErrConflict)
	}

	if s.status == domain.StatusExpired {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: %w", s.id, domain.ErrSessionExpired)
	}
	if s.status != domain.StatusInProgress {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: session is %s: %w", s.id, s.status, domain.ErrConflict)
	}

	if questionID != s.questions[s.current].ID {
		return domain.SubmitResult{}, fmt.Errorf("submit %s: question %s is not current: %w", s.id, questionID, domain.ErrConflict)
	}

	if s.answers[questionID] == nil {
		s.answers[questionID] = make(map[string]int)
	}
	s.answers[questionID][userID] = optionIndex
	s.touchLocked()

	result := domain.SubmitResult{}
	if s.bothAnsweredLocked(questionID) {
		result.Advanced = true
		if s.current == len(s.questions)-1 {
			s.finalizeLocked(domain.StatusCompleted)
			result.Completed = true
		} else {
			s.current++
		}
	}
	result.Session = s.broadcastLocked()
	return result, nil
}

// Cancel moves a non-terminal session to CANCELLED. Cancelling an already
// terminal session succeeds without changing state, to tolerate client retries.
func (s *Session) Cancel(userID, reason string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireIfDueLocked()

	if userID != s.hostID && (s.partnerID == "" || userID != s.partnerID) {
		return domain.SessionSnapshot{}, fmt.Errorf("cancel %s: user %s: %w", s.id, userID, domain.ErrUnauthorized)
	}
	if s.status.Terminal() {
		return s.snapshotLocked(), nil
	}

	s.cancelReason = reason
	s.finalizeLocked(domain.StatusCancelled)
	return s.broadcastLocked(), nil
}

// Snapshot returns a consistent view, lazily expiring the session first.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expireIfDueLocked() {
		return s.broadcastLocked()
	}
	return s.snapshotLocked()
}

// ExpireIfIdle transitions an overdue session to EXPIRED; used by the sweeper.
func (s *Session) ExpireIfIdle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() || now.Before(s.expiresAt) {
		return false
	}
	s.finalizeLocked(domain.StatusExpired)
	s.broadcastLocked()
	return true
}

// Evictable reports whether the session is terminal and past its retention window.
func (s *Session) Evictable(now time.Time, retention time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		return false
	}
	return !now.Before(s.completedAt.Add(retention))
}

// Subscribe returns a channel that receives a snapshot on every mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) questionByID(id string) *domain.Question {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return &s.questions[i]
		}
	}
	return nil
}

func (s *Session) bothAnsweredLocked(questionID string) bool {
	recorded := s.answers[questionID]
	if recorded == nil || s.partnerID == "" {
		return false
	}
	_, host := recorded[s.hostID]
	_, partner := recorded[s.partnerID]
	return host && partner
}

func (s *Session) touchLocked() {
	now := s.now()
	s.lastActivity = now
	s.expiresAt = now.Add(s.ttl)
}

// expireIfDueLocked applies the lazy inactivity transition. Returns true if
// the session moved to EXPIRED during this call.
func (s *Session) expireIfDueLocked() bool {
	if s.status.Terminal() || s.now().Before(s.expiresAt) {
		return false
	}
	s.finalizeLocked(domain.StatusExpired)
	return true
}

// finalizeLocked moves the session to a terminal state and fixes the scores.
func (s *Session) finalizeLocked(status domain.Status) {
	s.status = status
	s.completedAt = s.now()
	s.lastActivity = s.completedAt

	s.scores = []domain.ParticipantScore{s.scoreLocked(s.hostID)}
	if s.partnerID != "" {
		s.scores = append(s.scores, s.scoreLocked(s.partnerID))
	}
}

func (s *Session) scoreLocked(userID string) domain.ParticipantScore {
	score := domain.ParticipantScore{UserID: userID}
	for _, q := range s.questions {
		recorded, ok := s.answers[q.ID][userID]
		if !ok || recorded != q.CorrectIndex {
			continue
		}
		score.Correct++
		if q.Points > 0 {
			score.Points += q.Points
		} else {
			score.Points++
		}
	}
	score.RewardCoins = score.Correct * s.rewards.CoinsPerCorrect
	if score.Correct == len(s.questions) && len(s.questions) > 0 {
		score.RewardCoins += s.rewards.PerfectBonus
	}
	return score
}

func (s *Session) broadcastLocked() domain.SessionSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow watcher never blocks a mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	views := make([]domain.QuestionView, 0, len(s.questions))
	for _, q := range s.questions {
		points := q.Points
		if points == 0 {
			points = 1
		}
		views = append(views, domain.QuestionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
			Points:  points,
		})
	}

	answers := make(map[string]map[string]int, len(s.answers))
	for qid, byUser := range s.answers {
		copied := make(map[string]int, len(byUser))
		for uid, opt := range byUser {
			copied[uid] = opt
		}
		answers[qid] = copied
	}

	snap := domain.SessionSnapshot{
		ID:                   s.id,
		Code:                 s.code,
		HostUserID:           s.hostID,
		PartnerUserID:        s.partnerID,
		Status:               s.status,
		CurrentQuestionIndex: s.current,
		QuestionCount:        len(s.questions),
		Questions:            views,
		Answers:              answers,
		CancelReason:         s.cancelReason,
		CreatedAt:            s.createdAt,
		ExpiresAt:            s.expiresAt,
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		snap.StartedAt = &started
	}
	if !s.completedAt.IsZero() {
		completed := s.completedAt
		snap.CompletedAt = &completed
	}
	// Correct answers stay hidden until the session is over.
	if s.status.Terminal() {
		correct := make(map[string]int, len(s.questions))
		for _, q := range s.questions {
			correct[q.ID] = q.CorrectIndex
		}
		snap.CorrectAnswers = correct
		snap.Scores = append([]domain.ParticipantScore(nil), s.scores...)
	}
	return snap
}
