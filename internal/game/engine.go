// internal/game/engine.go
//
// Round engine for a single timed word-unscrambling session.
// Responsibilities:
//   - Draw words from a WordSource and scramble them.
//   - Validate answers (case-insensitive exact match) and award points.
//   - Track hints, skips, and the countdown driven by Tick.
//   - Track phase transitions: not_started → in_progress → over (→ in_progress on replay).
//
// Notes:
//   - The engine owns no clock. A scheduler calls Tick once per second
//     (see internal/session).
//   - Operations outside their phase return ErrInvalidTransition and change
//     nothing. End on a finished round is a no-op.
//   - Feedback and ResultSink are invoked after the round lock is released.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"
)

const (
	eventStart = "start"
	eventEnd   = "end"
)

// Round holds the mutable state of one session.
type Round struct {
	mu sync.Mutex

	cfg       Config
	policy    Policy
	source    WordSource
	scrambler *Scrambler
	phase     *fsm.FSM
	feedback  Feedback
	sink      ResultSink
	now       func() time.Time

	word           string
	scramble       string
	input          string
	hint           string
	hinted         bool // a hint was counted for the current word
	score          int
	wordsCompleted int
	timeRemaining  int
	hintsUsed      int
	result         *RoundResult
}

// Option customizes a Round.
type Option func(*Round)

// WithFeedback installs a feedback collaborator.
func WithFeedback(f Feedback) Option { return func(r *Round) { r.feedback = f } }

// WithResultSink installs the receiver of finished-round results.
func WithResultSink(s ResultSink) Option { return func(r *Round) { r.sink = s } }

// WithScrambler replaces the default runtime-seeded scrambler.
func WithScrambler(s *Scrambler) Option { return func(r *Round) { r.scrambler = s } }

// WithClock overrides time.Now for result timestamps.
func WithClock(now func() time.Time) Option { return func(r *Round) { r.now = now } }

// NewRound constructs a round in the not_started phase.
func NewRound(cfg Config, source WordSource, opts ...Option) (*Round, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("game: nil word source")
	}
	r := &Round{
		cfg:    cfg,
		policy: cfg.Policy(),
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scrambler == nil {
		r.scrambler = NewScrambler(nil)
	}
	r.phase = fsm.NewFSM(
		string(PhaseNotStarted),
		fsm.Events{
			{Name: eventStart, Src: []string{string(PhaseNotStarted), string(PhaseInProgress), string(PhaseOver)}, Dst: string(PhaseInProgress)},
			{Name: eventEnd, Src: []string{string(PhaseInProgress)}, Dst: string(PhaseOver)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debug().Str("from", e.Src).Str("to", e.Dst).Msg("round phase")
			},
		},
	)
	return r, nil
}

// Start begins (or restarts) the round. Valid from any phase.
func (r *Round) Start() error {
	r.mu.Lock()
	word, scramble, err := r.draw()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.fire(eventStart); err != nil {
		r.mu.Unlock()
		return err
	}
	r.score = 0
	r.wordsCompleted = 0
	r.hintsUsed = 0
	r.timeRemaining = r.cfg.RoundDurationSeconds
	r.result = nil
	r.setWord(word, scramble)
	r.mu.Unlock()

	r.emit(FeedbackMediumImpact, nil)
	return nil
}

// Tick advances the countdown by one second and ends the round at zero.
func (r *Round) Tick() error {
	r.mu.Lock()
	if err := r.require("tick"); err != nil {
		r.mu.Unlock()
		return err
	}
	if r.timeRemaining > 0 {
		r.timeRemaining--
	}
	var res *RoundResult
	if r.timeRemaining == 0 {
		res = r.end()
	}
	r.mu.Unlock()

	if res != nil {
		r.emit(FeedbackSuccess, res)
	}
	return nil
}

// SetInput records the player's in-progress text.
func (r *Round) SetInput(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.require("set input"); err != nil {
		return err
	}
	r.input = s
	return nil
}

// SubmitAnswer checks input against the current word, ignoring case and
// surrounding whitespace. A correct answer scores and draws a new word;
// an incorrect one changes nothing but the stored input.
func (r *Round) SubmitAnswer(input string) (Outcome, error) {
	r.mu.Lock()
	if err := r.require("submit answer"); err != nil {
		r.mu.Unlock()
		return "", err
	}
	if strings.ToUpper(strings.TrimSpace(input)) != r.word {
		r.input = input
		r.mu.Unlock()
		r.emit(FeedbackError, nil)
		return OutcomeIncorrect, nil
	}

	word, scramble, err := r.draw()
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	r.score += r.policy.Award(r.timeRemaining)
	r.wordsCompleted++
	r.setWord(word, scramble)
	r.mu.Unlock()

	r.emit(FeedbackSuccess, nil)
	return OutcomeCorrect, nil
}

// ShowHint reveals the first letter of the current word, or one more leading
// letter per request when HintRevealsFirstLetterOnly is false. The word and
// scramble are unchanged.
func (r *Round) ShowHint() (string, error) {
	r.mu.Lock()
	if err := r.require("show hint"); err != nil {
		r.mu.Unlock()
		return "", err
	}
	switch r.cfg.HintCounting {
	case HintCountRequests:
		r.hintsUsed++
	case HintCountWords:
		if !r.hinted {
			r.hintsUsed++
		}
	}
	r.hinted = true

	letters := []rune(r.word)
	n := 1
	if !r.cfg.HintRevealsFirstLetterOnly {
		// never reveal the whole word
		n = min(len([]rune(r.hint))+1, len(letters)-1)
	}
	r.hint = string(letters[:n])
	hint := r.hint
	r.mu.Unlock()

	r.emit(FeedbackLightImpact, nil)
	return hint, nil
}

// SkipWord draws a new word with no scoring effect.
func (r *Round) SkipWord() error {
	r.mu.Lock()
	if err := r.require("skip word"); err != nil {
		r.mu.Unlock()
		return err
	}
	word, scramble, err := r.draw()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.setWord(word, scramble)
	r.mu.Unlock()

	r.emit(FeedbackLightImpact, nil)
	return nil
}

// End finishes the round and hands its result to the sink.
// Calling End on a finished round does nothing.
func (r *Round) End() error {
	r.mu.Lock()
	if r.phaseLocked() == PhaseOver {
		r.mu.Unlock()
		return nil
	}
	if err := r.require("end"); err != nil {
		r.mu.Unlock()
		return err
	}
	res := r.end()
	r.mu.Unlock()

	r.emit(FeedbackSuccess, res)
	return nil
}

// Phase reports the current phase.
func (r *Round) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phaseLocked()
}

// Snapshot returns a consistent view of the round.
func (r *Round) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Phase:          r.phaseLocked(),
		Word:           r.word,
		Scramble:       r.scramble,
		Input:          r.input,
		Hint:           r.hint,
		Score:          r.score,
		WordsCompleted: r.wordsCompleted,
		TimeRemaining:  r.timeRemaining,
		HintsUsed:      r.hintsUsed,
		RoundDuration:  r.cfg.RoundDurationSeconds,
	}
}

// Result returns the result of the last finished round, if any.
func (r *Round) Result() (RoundResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return RoundResult{}, false
	}
	return *r.result, true
}

// ------------------------------ internals ----------------------------------

// end transitions to over and records the result. Caller holds r.mu.
func (r *Round) end() *RoundResult {
	if err := r.fire(eventEnd); err != nil {
		log.Error().Err(err).Msg("end round")
		return nil
	}
	r.result = &RoundResult{
		ID:             uuid.NewString(),
		Score:          r.score,
		WordsCompleted: r.wordsCompleted,
		HintsUsed:      r.hintsUsed,
		Timestamp:      r.now().UTC(),
	}
	res := *r.result
	return &res
}

// draw picks and scrambles the next word without touching round state.
func (r *Round) draw() (word, scramble string, err error) {
	word = r.source.Next()
	scramble, err = r.scrambler.Scramble(word)
	if err != nil {
		return "", "", fmt.Errorf("draw word: %w", err)
	}
	return word, scramble, nil
}

// setWord installs a new word and clears per-word state. Caller holds r.mu.
func (r *Round) setWord(word, scramble string) {
	r.word = word
	r.scramble = scramble
	r.input = ""
	r.hint = ""
	r.hinted = false
}

// require returns ErrInvalidTransition unless the round is in progress.
func (r *Round) require(op string) error {
	if p := r.phaseLocked(); p != PhaseInProgress {
		return fmt.Errorf("%s in phase %s: %w", op, p, ErrInvalidTransition)
	}
	return nil
}

func (r *Round) phaseLocked() Phase { return Phase(r.phase.Current()) }

// fire triggers an fsm event. A self-transition (start while in progress)
// is not an error.
func (r *Round) fire(event string) error {
	err := r.phase.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return nil
	}
	return fmt.Errorf("%s: %w", event, err)
}

func (r *Round) emit(kind FeedbackKind, res *RoundResult) {
	if r.feedback != nil {
		r.feedback.Notify(kind)
	}
	if res != nil && r.sink != nil {
		r.sink.RoundOver(*res)
	}
}
