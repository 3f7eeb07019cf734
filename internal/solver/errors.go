// internal/solver/errors.go
//
// Sentinel errors shared across the solver package. All of them are local
// and recoverable by the caller; the solver never retries internally because
// every operation is deterministic.
package solver

import "errors"

var (
	// ErrLengthMismatch is returned when a guess, solution, or feedback row
	// does not match the configured word length. Fatal to the single call,
	// not to the session.
	ErrLengthMismatch = errors.New("word length mismatch")

	// ErrInvalidWord is returned for words containing anything other than
	// lowercase a–z.
	ErrInvalidWord = errors.New("word must be lowercase letters a-z")

	// ErrInvalidMark is returned when a feedback mark name is unknown.
	ErrInvalidMark = errors.New("invalid feedback mark")

	// ErrInvalidState is returned when an operation is invoked in a session
	// state that forbids it, e.g. Suggest after the puzzle is solved.
	// Recoverable via Reset.
	ErrInvalidState = errors.New("operation not valid in current session state")

	// ErrNoCandidates is returned when recorded feedback has eliminated
	// every candidate solution. It signals contradictory or
	// out-of-dictionary feedback and is surfaced, never auto-corrected.
	ErrNoCandidates = errors.New("no candidate solutions remain")

	// ErrTurnsExhausted is returned when a session with a turn limit has no
	// turns left.
	ErrTurnsExhausted = errors.New("no turns remaining")
)
