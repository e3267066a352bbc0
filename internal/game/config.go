package game

import (
	"fmt"
	"math"
)

// HintCounting selects how hint usage is tallied.
type HintCounting string

const (
	// HintCountRequests counts every hint request, including repeats for the
	// same word.
	HintCountRequests HintCounting = "requests"
	// HintCountWords counts at most one hint per drawn word.
	HintCountWords HintCounting = "words"
)

// maxAward bounds the points awarded for a single answer.
const maxAward = 1_000_000_000

// Config parameterizes a round.
type Config struct {
	RoundDurationSeconds       int
	BasePoints                 int
	BonusRatePerSecond         float64
	HintRevealsFirstLetterOnly bool
	HintCounting               HintCounting
}

// DefaultConfig mirrors the shipped game: 60 seconds, 100 points plus 10 per
// second remaining, first-letter hints counted per request.
func DefaultConfig() Config {
	return Config{
		RoundDurationSeconds:       60,
		BasePoints:                 100,
		BonusRatePerSecond:         10,
		HintRevealsFirstLetterOnly: true,
		HintCounting:               HintCountRequests,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.RoundDurationSeconds <= 0:
		return fmt.Errorf("%w: round duration must be positive, got %d", ErrInvalidConfig, c.RoundDurationSeconds)
	case c.BasePoints < 0:
		return fmt.Errorf("%w: base points must be non-negative, got %d", ErrInvalidConfig, c.BasePoints)
	case math.IsNaN(c.BonusRatePerSecond) || math.IsInf(c.BonusRatePerSecond, 0):
		return fmt.Errorf("%w: bonus rate must be finite, got %v", ErrInvalidConfig, c.BonusRatePerSecond)
	case c.BonusRatePerSecond < 0:
		return fmt.Errorf("%w: bonus rate must be non-negative, got %v", ErrInvalidConfig, c.BonusRatePerSecond)
	case float64(c.BasePoints)+float64(c.RoundDurationSeconds)*c.BonusRatePerSecond > maxAward:
		return fmt.Errorf("%w: base points plus %ds at rate %v exceeds %d points per answer",
			ErrInvalidConfig, c.RoundDurationSeconds, c.BonusRatePerSecond, maxAward)
	}
	switch c.HintCounting {
	case HintCountRequests, HintCountWords:
	default:
		return fmt.Errorf("%w: unknown hint counting %q", ErrInvalidConfig, c.HintCounting)
	}
	return nil
}

// Policy returns the scoring policy described by c.
func (c Config) Policy() Policy {
	return Policy{BasePoints: c.BasePoints, BonusRate: c.BonusRatePerSecond}
}
