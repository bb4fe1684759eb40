package interview

import "errors"

var (
	// ErrValidation flags malformed caller input (empty utterance, bad ids).
	ErrValidation = errors.New("invalid request")

	// ErrSessionNotFound flags an unknown session identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden flags a session/user mismatch. The message stays generic so
	// callers cannot probe whether the session exists for another user.
	ErrForbidden = errors.New("access denied")

	// ErrSessionClosed flags a turn submitted after the interview ended.
	ErrSessionClosed = errors.New("interview session is closed")

	// ErrConflict surfaces after bounded retries against concurrent writes.
	ErrConflict = errors.New("session is busy, retry the turn")

	// ErrCapability wraps failures of the LLM-backed capabilities. The turn is
	// guaranteed not to have mutated the persisted session.
	ErrCapability = errors.New("interview capability failed")
)
