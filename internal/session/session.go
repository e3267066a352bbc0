// internal/session/session.go
//
// Session management for single-player rounds.
// Responsibilities:
//   - One game.Round per session id, created on first use.
//   - The repeating one-second timer that drives Round.Tick. It is acquired
//     when a round starts and cancelled on every exit path: the round ending,
//     a replay, Discard, idle eviction, and Close.
//   - Fire-and-forget persistence of finished rounds to the ledger. Failures
//     are logged and surfaced to the player as a warning; the round is never
//     blocked on them.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchallenge/internal/game"
	"github.com/robalobadob/wordchallenge/internal/ledger"
)

const (
	defaultTickInterval = time.Second
	defaultTTL          = 30 * time.Minute
	persistTimeout      = 5 * time.Second
	maxQueuedFeedback   = 16
)

// ErrClosed is returned once the manager has shut down.
var ErrClosed = errors.New("session: manager closed")

// Manager owns all live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	cfg      game.Config
	words    game.WordSource
	ledger   ledger.Ledger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	roundOps []game.Option

	wg sync.WaitGroup // tickers and pending ledger writes
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTickInterval sets the countdown period (one second in production).
func WithTickInterval(d time.Duration) Option { return func(m *Manager) { m.interval = d } }

// WithTTL sets how long an idle session survives.
func WithTTL(d time.Duration) Option { return func(m *Manager) { m.ttl = d } }

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithRoundOptions forwards options to every round created.
func WithRoundOptions(opts ...game.Option) Option {
	return func(m *Manager) { m.roundOps = append(m.roundOps, opts...) }
}

// NewManager constructs a Manager. cfg is validated when the first round is created.
func NewManager(cfg game.Config, words game.WordSource, l ledger.Ledger, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		words:    words,
		ledger:   l,
		interval: defaultTickInterval,
		ttl:      defaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating it in the not_started phase.
func (m *Manager) GetOrCreate(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s, nil
	}

	s := &Session{ID: id, m: m, lastSeen: m.now()}
	opts := append([]game.Option{
		game.WithFeedback(game.FeedbackFunc(s.queueFeedback)),
		game.WithResultSink(game.ResultSinkFunc(func(res game.RoundResult) { m.persist(s, res) })),
	}, m.roundOps...)
	r, err := game.NewRound(m.cfg, m.words, opts...)
	if err != nil {
		return nil, err
	}
	s.round = r
	m.sessions[id] = s
	log.Debug().Str("session", id).Msg("session created")
	return s, nil
}

// Discard stops the session's timer and forgets it.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.stop()
		log.Debug().Str("session", id).Msg("session discarded")
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep discards sessions idle for longer than the TTL.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.stop()
	}
	if len(stale) > 0 {
		log.Info().Int("evicted", len(stale)).Msg("idle sessions swept")
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Close stops every timer and waits for pending ledger writes.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.stop()
	}
	m.wg.Wait()
}

// Scores returns the ledger contents. A read failure yields an empty list and
// a warning instead of an error.
func (m *Manager) Scores(ctx context.Context) ([]game.RoundResult, string) {
	all, err := m.ledger.All(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read score ledger")
		return []game.RoundResult{}, "high scores are unavailable"
	}
	return all, ""
}

// persist appends res to the ledger without blocking the round. Once the
// manager is closed nobody waits on m.wg, so the write happens inline.
func (m *Manager) persist(s *Session, res game.RoundResult) {
	m.mu.Lock()
	closed := m.closed
	if !closed {
		m.wg.Add(1)
	}
	m.mu.Unlock()
	if closed {
		m.appendResult(s, res)
		return
	}
	go func() {
		defer m.wg.Done()
		m.appendResult(s, res)
	}()
}

func (m *Manager) appendResult(s *Session, res game.RoundResult) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.ledger.Append(ctx, res); err != nil {
		log.Warn().Err(err).Str("session", s.ID).Str("result", res.ID).Msg("persist round result")
		s.setWarning("your score could not be saved")
		return
	}
	log.Info().
		Str("session", s.ID).
		Int("score", res.Score).
		Int("words", res.WordsCompleted).
		Int("hints", res.HintsUsed).
		Msg("round finished")
}
