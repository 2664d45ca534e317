package models

import "errors"

// Engine error kinds. Services return these (possibly wrapped with %w) so
// callers can discriminate with errors.Is; the HTTP layer maps them to
// status codes.
var (
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates a missing match, record or payment.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates an admission state change the state
	// machine does not allow (e.g. approving a declined record).
	ErrInvalidTransition = errors.New("invalid admission transition")

	// ErrCapacityExceeded indicates an approval would overrun capacity
	// while the waitlist downgrade policy is disabled.
	ErrCapacityExceeded = errors.New("match capacity exceeded")

	// ErrMinimumPlayersNotMet indicates too few approved players to
	// generate teams.
	ErrMinimumPlayersNotMet = errors.New("at least two approved players required")

	// ErrNoExpenseDefined indicates payments were recomputed before any
	// expense was set for the match.
	ErrNoExpenseDefined = errors.New("no expense defined for match")

	// ErrNotAuthorized indicates the actor lacks the organizer capability.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrConflict indicates a racing write lost; the caller should retry
	// explicitly rather than the engine retrying a mutation blindly.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrPersistence indicates the backing store failed mid-operation;
	// transactional writes guarantee no partial state survives it.
	ErrPersistence = errors.New("persistence failure")
)
