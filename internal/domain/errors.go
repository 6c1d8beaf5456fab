package domain

import "errors"

var (
	// ErrValidation is returned when a request is malformed or the quiz config
	// cannot produce at least one question.
	ErrValidation = errors.New("invalid request")
	// ErrSessionNotFound is returned when no active session matches the id or code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConflict indicates a state-incompatible request: double join,
	// out-of-order answer, or a contradictory resubmission.
	ErrConflict = errors.New("conflicting session state")
	// ErrUnauthorized indicates the acting user is not a party to the session.
	ErrUnauthorized = errors.New("user is not a session participant")
	// ErrSessionExpired is returned when a session lapsed due to inactivity.
	ErrSessionExpired = errors.New("session expired")
)
