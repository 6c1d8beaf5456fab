package domain

import "time"

// Status is the lifecycle state of a pair session.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusExpired    Status = "EXPIRED"
)

// Terminal reports whether no further transitions can leave the state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// QuizConfig describes the question set requested at session creation.
type QuizConfig struct {
	Subject      string `json:"subject"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"numQuestions"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int      `json:"points"` // defaults to 1 if zero
}

// QuestionView is the client-facing shape of a question; the correct option
// is carried separately so it can be withheld while a session is live.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Points  int      `json:"points"`
}

// RewardPolicy maps quiz outcomes to coin rewards for the external ledger.
type RewardPolicy struct {
	CoinsPerCorrect int
	PerfectBonus    int
}

// ParticipantScore is one participant's final tally.
type ParticipantScore struct {
	UserID      string `json:"userId"`
	Correct     int    `json:"correct"`
	Points      int    `json:"points"`
	RewardCoins int    `json:"rewardCoins"`
}

// SessionSnapshot is a consistent read of a session, safe to hand out after
// the session lock is released.
type SessionSnapshot struct {
	ID                   string                    `json:"sessionId"`
	Code                 string                    `json:"sessionCode"`
	HostUserID           string                    `json:"hostUserId"`
	PartnerUserID        string                    `json:"partnerUserId,omitempty"`
	Status               Status                    `json:"status"`
	CurrentQuestionIndex int                       `json:"currentQuestionIndex"`
	QuestionCount        int                       `json:"questionCount"`
	Questions            []QuestionView            `json:"questions"`
	Answers              map[string]map[string]int `json:"answers"`
	CorrectAnswers       map[string]int            `json:"correctAnswers,omitempty"`
	Scores               []ParticipantScore        `json:"scores,omitempty"`
	CancelReason         string                    `json:"cancelReason,omitempty"`
	CreatedAt            time.Time                 `json:"createdAt"`
	StartedAt            *time.Time                `json:"startedAt,omitempty"`
	CompletedAt          *time.Time                `json:"completedAt,omitempty"`
	ExpiresAt            time.Time                 `json:"expiresAt"`
}

// SubmitResult reports what a submission did to the session.
type SubmitResult struct {
	Advanced  bool            `json:"advanced"`
	Completed bool            `json:"completed"`
	Session   SessionSnapshot `json:"session"`
}
