package game

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

// seqSource returns words in order, cycling.
type seqSource struct {
	words []string
	i     int
}

func (s *seqSource) Next() string {
	w := s.words[s.i%len(s.words)]
	s.i++
	return w
}

type recorder struct {
	results  []RoundResult
	feedback []FeedbackKind
}

func newTestRound(t *testing.T, cfg Config, vocab ...string) (*Round, *recorder) {
	t.Helper()
	rec := &recorder{}
	r, err := NewRound(cfg, &seqSource{words: vocab},
		WithScrambler(NewScrambler(rand.New(rand.NewPCG(1, 1)))),
		WithResultSink(ResultSinkFunc(func(res RoundResult) { rec.results = append(rec.results, res) })),
		WithFeedback(FeedbackFunc(func(k FeedbackKind) { rec.feedback = append(rec.feedback, k) })),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	return r, rec
}

func shortConfig(duration int) Config {
	cfg := DefaultConfig()
	cfg.RoundDurationSeconds = duration
	return cfg
}

func TestCatScenario(t *testing.T) {
	r, rec := newTestRound(t, shortConfig(5), "CAT")
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	st := r.Snapshot()
	if st.Word != "CAT" {
		t.Fatalf("word = %q", st.Word)
	}
	valid := map[string]bool{"ACT": true, "ATC": true, "CTA": true, "TAC": true, "TCA": true}
	if !valid[st.Scramble] {
		t.Fatalf("scramble %q is not a non-identity permutation of CAT", st.Scramble)
	}

	out, err := r.SubmitAnswer("cat")
	if err != nil || out != OutcomeCorrect {
		t.Fatalf("SubmitAnswer = %v, %v", out, err)
	}
	st = r.Snapshot()
	if st.Score != 150 || st.WordsCompleted != 1 {
		t.Fatalf("score=%d words=%d, want 150/1", st.Score, st.WordsCompleted)
	}

	for i := 0; i < 5; i++ {
		if err := r.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if r.Phase() != PhaseOver {
		t.Fatalf("phase = %s, want over", r.Phase())
	}
	if len(rec.results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(rec.results))
	}
	res := rec.results[0]
	if res.Score != 150 || res.WordsCompleted != 1 || res.ID == "" {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.Timestamp.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("timestamp %v", res.Timestamp)
	}
}

func TestStartResetsState(t *testing.T) {
	r, _ := newTestRound(t, DefaultConfig(), "CAT", "DOG")
	if r.Phase() != PhaseNotStarted {
		t.Fatalf("initial phase %s", r.Phase())
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	_, _ = r.SubmitAnswer("cat")
	_, _ = r.ShowHint()
	_ = r.Tick()

	// restart while in progress
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	st := r.Snapshot()
	if st.Phase != PhaseInProgress || st.Score != 0 || st.WordsCompleted != 0 ||
		st.HintsUsed != 0 || st.TimeRemaining != 60 || st.Hint != "" || st.Input != "" {
		t.Errorf("state not reset: %+v", st)
	}

	// replay after over
	if err := r.End(); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	if r.Phase() != PhaseInProgress {
		t.Errorf("replay phase %s", r.Phase())
	}
	if _, ok := r.Result(); ok {
		t.Error("result should be cleared on restart")
	}
}

func TestIncorrectAnswerLeavesState(t *testing.T) {
	r, rec := newTestRound(t, DefaultConfig(), "CAT")
	_ = r.Start()
	before := r.Snapshot()
	out, err := r.SubmitAnswer("dog")
	if err != nil || out != OutcomeIncorrect {
		t.Fatalf("SubmitAnswer = %v, %v", out, err)
	}
	after := r.Snapshot()
	if after.Score != before.Score || after.WordsCompleted != before.WordsCompleted ||
		after.Word != before.Word || after.Scramble != before.Scramble {
		t.Errorf("state changed: before %+v after %+v", before, after)
	}
	if after.Input != "dog" {
		t.Errorf("input = %q", after.Input)
	}
	if last := rec.feedback[len(rec.feedback)-1]; last != FeedbackError {
		t.Errorf("feedback = %s, want error", last)
	}
}

func TestCorrectAnswerDrawsNewWord(t *testing.T) {
	r, _ := newTestRound(t, DefaultConfig(), "CAT", "DOG")
	_ = r.Start()
	_ = r.Tick()
	_ = r.Tick()
	_, _ = r.ShowHint()
	_ = r.SetInput("  CaT ")
	if _, err := r.SubmitAnswer("  CaT "); err != nil {
		t.Fatal(err)
	}
	st := r.Snapshot()
	if st.Word != "DOG" || st.Hint != "" || st.Input != "" {
		t.Errorf("expected fresh DOG word, got %+v", st)
	}
	if st.Score != 100+58*10 {
		t.Errorf("score = %d", st.Score)
	}
}

func TestHintCounting(t *testing.T) {
	r, _ := newTestRound(t, DefaultConfig(), "CAT", "DOG")
	_ = r.Start()
	for i := 0; i < 3; i++ {
		h, err := r.ShowHint()
		if err != nil || h != "C" {
			t.Fatalf("ShowHint = %q, %v", h, err)
		}
	}
	if got := r.Snapshot().HintsUsed; got != 3 {
		t.Errorf("requests counting: hintsUsed = %d, want 3", got)
	}

	cfg := DefaultConfig()
	cfg.HintCounting = HintCountWords
	r, _ = newTestRound(t, cfg, "CAT", "DOG")
	_ = r.Start()
	_, _ = r.ShowHint()
	_, _ = r.ShowHint()
	_ = r.SkipWord()
	_, _ = r.ShowHint()
	if got := r.Snapshot().HintsUsed; got != 2 {
		t.Errorf("words counting: hintsUsed = %d, want 2", got)
	}
}

func TestProgressiveHint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HintRevealsFirstLetterOnly = false
	r, _ := newTestRound(t, cfg, "CAT")
	_ = r.Start()
	want := []string{"C", "CA", "CA"}
	for i, w := range want {
		h, _ := r.ShowHint()
		if h != w {
			t.Errorf("hint %d = %q, want %q", i, h, w)
		}
	}
}

func TestSkipWord(t *testing.T) {
	r, _ := newTestRound(t, DefaultConfig(), "CAT", "DOG")
	_ = r.Start()
	_, _ = r.ShowHint()
	if err := r.SkipWord(); err != nil {
		t.Fatal(err)
	}
	st := r.Snapshot()
	if st.Word != "DOG" || st.Score != 0 || st.WordsCompleted != 0 || st.Hint != "" {
		t.Errorf("unexpected state after skip: %+v", st)
	}
}

func TestInvalidTransitions(t *testing.T) {
	r, rec := newTestRound(t, DefaultConfig(), "CAT")
	if _, err := r.SubmitAnswer("cat"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit before start: %v", err)
	}
	if err := r.Tick(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tick before start: %v", err)
	}
	if _, err := r.ShowHint(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("hint before start: %v", err)
	}
	if err := r.SkipWord(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skip before start: %v", err)
	}
	if err := r.End(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("end before start: %v", err)
	}
	if len(rec.feedback) != 0 {
		t.Errorf("no feedback expected, got %v", rec.feedback)
	}

	_ = r.Start()
	_ = r.End()
	if err := r.End(); err != nil {
		t.Errorf("second End should be a no-op, got %v", err)
	}
	if len(rec.results) != 1 {
		t.Errorf("expected one result, got %d", len(rec.results))
	}
	if err := r.Tick(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tick after over: %v", err)
	}
}

func TestTicksEndRoundOnce(t *testing.T) {
	r, rec := newTestRound(t, shortConfig(3), "CAT")
	_ = r.Start()
	for i := 0; i < 3; i++ {
		_ = r.Tick()
	}
	for i := 0; i < 3; i++ {
		_ = r.Tick()
	}
	if len(rec.results) != 1 {
		t.Fatalf("expected one result, got %d", len(rec.results))
	}
	if st := r.Snapshot(); st.TimeRemaining != 0 || st.Phase != PhaseOver {
		t.Errorf("unexpected final state %+v", st)
	}
}

func TestNewRoundValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundDurationSeconds = 0
	if _, err := NewRound(cfg, &seqSource{words: []string{"CAT"}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.HintCounting = "sometimes"
	if _, err := NewRound(cfg, &seqSource{words: []string{"CAT"}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	for _, rate := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, 1e300} {
		cfg = DefaultConfig()
		cfg.BonusRatePerSecond = rate
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("rate %v: expected ErrInvalidConfig, got %v", rate, err)
		}
	}
}

func TestDegenerateSourceFailsStart(t *testing.T) {
	r, _ := newTestRound(t, DefaultConfig(), "A")
	if err := r.Start(); !errors.Is(err, ErrDegenerateWord) {
		t.Errorf("expected ErrDegenerateWord, got %v", err)
	}
	if r.Phase() != PhaseNotStarted {
		t.Errorf("phase = %s", r.Phase())
	}
}
