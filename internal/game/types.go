// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Phase: lifecycle of a round (not_started → in_progress → over).
//   - Outcome: result of submitting an answer.
//   - State: read-only snapshot of a round for rendering.
//   - RoundResult: immutable record produced when a round ends.

package game

import (
	"errors"
	"time"
)

// Phase is the lifecycle stage of a round.
// Values double as looplab/fsm state names.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseOver       Phase = "over"
)

// Outcome is the evaluation of a submitted answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

var (
	// ErrInvalidTransition is returned when an operation is invoked in a
	// phase that does not allow it. The round is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDegenerateWord is returned for words that have no permutation
	// different from themselves (fewer than two distinct letters).
	ErrDegenerateWord = errors.New("degenerate word")

	ErrInvalidConfig = errors.New("invalid config")
)

// State is a snapshot of a round.
type State struct {
	Phase          Phase  `json:"phase"`
	Word           string `json:"-"` // never sent to the player
	Scramble       string `json:"scramble"`
	Input          string `json:"input"`
	Hint           string `json:"hint,omitempty"`
	Score          int    `json:"score"`
	WordsCompleted int    `json:"wordsCompleted"`
	TimeRemaining  int    `json:"timeRemaining"`
	HintsUsed      int    `json:"hintsUsed"`
	RoundDuration  int    `json:"roundDuration"`
}

// RoundResult is the final tally of a round. Produced exactly once per
// in_progress → over transition.
type RoundResult struct {
	ID             string    `json:"id"`
	Score          int       `json:"score"`
	WordsCompleted int       `json:"wordsCompleted"`
	HintsUsed      int       `json:"hintsUsed"`
	Timestamp      time.Time `json:"timestamp"`
}

// WordSource supplies words for a round.
type WordSource interface {
	Next() string
}

// ResultSink receives the result of a finished round. Implementations must
// not block; persistence belongs on another goroutine.
type ResultSink interface {
	RoundOver(RoundResult)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(RoundResult)

func (f ResultSinkFunc) RoundOver(r RoundResult) { f(r) }
