package session

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wordchallenge/internal/game"
)

// Session is one player's round plus its timer.
type Session struct {
	ID string

	m     *Manager
	round *game.Round

	mu     sync.Mutex // serializes Start/End/stop against the ticker
	cancel context.CancelFunc
	gen    uint64 // bumped on every timer acquisition

	fbMu     sync.Mutex // guards lastSeen, feedback, warning
	lastSeen time.Time
	feedback []game.FeedbackKind
	warning  string
}

// View is what the display layer renders.
type View struct {
	game.State
	Feedback []game.FeedbackKind `json:"feedback"`
	Warning  string              `json:"warning,omitempty"`
	Result   *game.RoundResult   `json:"result,omitempty"` // set once the round is over
}

// Start begins or restarts the round and acquires a fresh timer.
// Any previous timer is cancelled first.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if err := s.round.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen

	s.m.wg.Add(1)
	go s.runTimer(ctx, gen)
	return nil
}

// End finishes the round early and releases the timer.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return s.round.End()
}

func (s *Session) SetInput(in string) error { return s.round.SetInput(in) }

func (s *Session) Submit(in string) (game.Outcome, error) { return s.round.SubmitAnswer(in) }

func (s *Session) Hint() (string, error) { return s.round.ShowHint() }

func (s *Session) Skip() error { return s.round.SkipWord() }

// View snapshots the round and drains queued feedback.
func (s *Session) View() View {
	st := s.round.Snapshot()
	v := View{State: st}
	if st.Phase == game.PhaseOver {
		if res, ok := s.Result(); ok {
			v.Result = &res
		}
	}
	s.fbMu.Lock()
	defer s.fbMu.Unlock()
	v.Feedback = s.feedback
	s.feedback = nil
	if v.Feedback == nil {
		v.Feedback = []game.FeedbackKind{}
	}
	v.Warning = s.warning
	return v
}

// Result returns the last finished round's result.
func (s *Session) Result() (game.RoundResult, bool) { return s.round.Result() }

// runTimer calls Tick every interval until the round is over or ctx is cancelled.
func (s *Session) runTimer(ctx context.Context, gen uint64) {
	defer s.m.wg.Done()
	t := time.NewTicker(s.m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.tick(gen) {
				return
			}
		}
	}
}

// tick advances the round if gen still owns the timer. It reports whether
// the timer should keep running.
func (s *Session) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.cancel == nil {
		return false
	}
	if err := s.round.Tick(); err != nil {
		s.stopLocked()
		return false
	}
	if s.round.Phase() == game.PhaseOver {
		s.stopLocked()
		return false
	}
	return true
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) touch(now time.Time) {
	s.fbMu.Lock()
	s.lastSeen = now
	s.fbMu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.fbMu.Lock()
	defer s.fbMu.Unlock()
	return s.lastSeen
}

func (s *Session) queueFeedback(k game.FeedbackKind) {
	s.fbMu.Lock()
	defer s.fbMu.Unlock()
	s.feedback = append(s.feedback, k)
	if len(s.feedback) > maxQueuedFeedback {
		s.feedback = s.feedback[len(s.feedback)-maxQueuedFeedback:]
	}
}

func (s *Session) setWarning(w string) {
	s.fbMu.Lock()
	s.warning = w
	s.fbMu.Unlock()
}
