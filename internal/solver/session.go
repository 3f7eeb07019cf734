// internal/solver/session.go
//
// Solve session: the stateful orchestrator tying the scorer, filter, and
// ranker together. A session owns its remaining-candidates set and guess
// history; dictionaries and the ranker are shared, read-only resources.
// Sessions are single-owner, single-writer: concurrent RecordGuess calls on
// one session must be serialized by the caller.
//
// The session state is computed from the candidate count and history rather
// than stored, so the two can never drift apart.
package solver

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// State is the coarse lifecycle of a session.
type State string

const (
	// StateFresh: no guesses yet, candidates = full solution dictionary.
	StateFresh State = "fresh"
	// StateInProgress: at least one guess recorded, candidates narrowed.
	StateInProgress State = "in_progress"
	// StateSolved: the last guess was all-correct and is the one candidate left.
	StateSolved State = "solved"
	// StateExhausted: recorded feedback eliminated every candidate.
	StateExhausted State = "exhausted"
)

// GuessRecord is one row of play history. Immutable once created.
type GuessRecord struct {
	// Word is the guess as recorded (normalized lowercase).
	Word string `json:"word"`
	// Pattern is the feedback the guess received.
	Pattern Pattern `json:"marks"`
	// ExpectedInfo is the entropy of the guess's pattern distribution over
	// the candidates that remained when it was made: the bits it was
	// expected to yield.
	ExpectedInfo float64 `json:"expectedInfoBits"`
	// EntropyDelta is the bits of puzzle entropy the guess actually removed.
	EntropyDelta float64 `json:"entropyDeltaBits"`
}

// Snapshot is a read-only view of session state returned after mutations.
type Snapshot struct {
	State            State         `json:"state"`
	Turn             int           `json:"turn"`
	MaxTurns         int           `json:"maxTurns,omitempty"`
	Remaining        int           `json:"remaining"`
	RemainingEntropy float64       `json:"remainingEntropyBits"`
	History          []GuessRecord `json:"history"`
}

// Config carries the shared resources a session works against.
type Config struct {
	// Solutions is the solution dictionary the session starts from.
	Solutions []string
	// Ranker scores suggestion requests; shared across sessions.
	Ranker *Ranker
	// Openings optionally holds a precomputed first-turn ranking. Computing
	// the fresh-state ranking is the most expensive call of the whole
	// session and identical for every fresh session, so it can be cached
	// once and served from here.
	Openings []Suggestion
	// MaxTurns limits recorded guesses; 0 means unlimited.
	MaxTurns int
}

// Session tracks one solve from the first guess to solved or exhausted.
type Session struct {
	cfg       Config
	wordLen   int
	remaining []string
	history   []GuessRecord
}

// NewSession starts a fresh session over cfg.Solutions.
func NewSession(cfg Config) (*Session, error) {
	if len(cfg.Solutions) == 0 {
		return nil, fmt.Errorf("new session: %w", ErrNoCandidates)
	}
	if cfg.Ranker == nil {
		return nil, fmt.Errorf("new session: ranker is required")
	}
	s := &Session{cfg: cfg, wordLen: len(cfg.Solutions[0])}
	s.Reset()
	return s, nil
}

// State derives the current lifecycle state.
func (s *Session) State() State {
	switch {
	case len(s.history) == 0:
		return StateFresh
	case len(s.remaining) == 0:
		return StateExhausted
	case len(s.remaining) == 1 && s.history[len(s.history)-1].Pattern.AllCorrect():
		return StateSolved
	default:
		return StateInProgress
	}
}

// RecordGuess validates and applies one guess/feedback pair, narrowing the
// candidate set. The returned snapshot reports the post-guess state,
// including Exhausted when the feedback eliminated every candidate.
func (s *Session) RecordGuess(word string, p Pattern) (Snapshot, error) {
	switch s.State() {
	case StateSolved:
		return s.Snapshot(), fmt.Errorf("record guess: %w", ErrInvalidState)
	case StateExhausted:
		return s.Snapshot(), fmt.Errorf("record guess: %w", ErrNoCandidates)
	}
	if s.cfg.MaxTurns > 0 && len(s.history) >= s.cfg.MaxTurns {
		return s.Snapshot(), fmt.Errorf("record guess: %w", ErrTurnsExhausted)
	}

	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) != s.wordLen || p.Len() != s.wordLen {
		return s.Snapshot(), fmt.Errorf("record guess: %w: want %d letters", ErrLengthMismatch, s.wordLen)
	}
	if !isLowerAlpha(word) {
		return s.Snapshot(), fmt.Errorf("record guess %q: %w", word, ErrInvalidWord)
	}

	expected := expectedInfo(word, s.remaining, make([]int, PatternSpace(s.wordLen)))
	before := s.RemainingEntropy()
	s.remaining = Narrow(s.remaining, word, p)
	s.history = append(s.history, GuessRecord{
		Word:         word,
		Pattern:      p,
		ExpectedInfo: expected,
		EntropyDelta: before - s.RemainingEntropy(),
	})
	return s.Snapshot(), nil
}

// Suggest returns the top n ranked guesses for the current candidate set.
// Valid in Fresh and InProgress only. A fresh session with a sufficiently
// large opening cache is served from the cache instead of ranking.
func (s *Session) Suggest(ctx context.Context, n int) ([]Suggestion, error) {
	switch s.State() {
	case StateFresh:
		if n > 0 && len(s.cfg.Openings) >= n {
			out := make([]Suggestion, n)
			copy(out, s.cfg.Openings)
			return out, nil
		}
	case StateInProgress:
	default:
		return nil, fmt.Errorf("suggest: %w", ErrInvalidState)
	}
	return s.cfg.Ranker.Rank(ctx, s.remaining, n)
}

// Autoplay plays the session against a known answer, scoring each suggested
// guess with the pattern scorer until solved, exhausted, or out of turns.
// Used for the daily mode and for opening benchmarks.
func (s *Session) Autoplay(ctx context.Context, answer string) (Snapshot, error) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if len(answer) != s.wordLen {
		return s.Snapshot(), fmt.Errorf("autoplay: %w: want %d letters", ErrLengthMismatch, s.wordLen)
	}
	if !isLowerAlpha(answer) {
		return s.Snapshot(), fmt.Errorf("autoplay %q: %w", answer, ErrInvalidWord)
	}

	for s.State() == StateFresh || s.State() == StateInProgress {
		if s.cfg.MaxTurns > 0 && len(s.history) >= s.cfg.MaxTurns {
			break
		}
		next, err := s.Suggest(ctx, 1)
		if err != nil {
			return s.Snapshot(), err
		}
		if len(next) == 0 {
			break
		}
		p, err := Score(next[0].Word, answer)
		if err != nil {
			return s.Snapshot(), err
		}
		if _, err := s.RecordGuess(next[0].Word, p); err != nil {
			return s.Snapshot(), err
		}
	}
	return s.Snapshot(), nil
}

// Reset returns the session to Fresh, restoring the full solution set.
func (s *Session) Reset() {
	s.remaining = append([]string(nil), s.cfg.Solutions...)
	s.history = nil
}

// RemainingEntropy is the uncertainty left in the puzzle in bits, assuming
// the solution is uniform over the remaining candidates: log2(N), 0 for one
// or no candidates.
func (s *Session) RemainingEntropy() float64 {
	if len(s.remaining) <= 1 {
		return 0
	}
	return math.Log2(float64(len(s.remaining)))
}

// Candidates returns a copy of the remaining candidate solutions.
func (s *Session) Candidates() []string {
	return append([]string(nil), s.remaining...)
}

// History returns a copy of the guess history, never nil.
func (s *Session) History() []GuessRecord {
	out := make([]GuessRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Turn reports the number of guesses recorded so far.
func (s *Session) Turn() int { return len(s.history) }

// WordLength reports the fixed letter count of this session's words.
func (s *Session) WordLength() int { return s.wordLen }

// Snapshot builds the read-only state view.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:            s.State(),
		Turn:             len(s.history),
		MaxTurns:         s.cfg.MaxTurns,
		Remaining:        len(s.remaining),
		RemainingEntropy: s.RemainingEntropy(),
		History:          s.History(),
	}
}
