package game

import "math"

// Policy awards points for a correct answer.
type Policy struct {
	BasePoints int
	BonusRate  float64 // points per second remaining
}

// Award returns BasePoints + floor(timeRemaining * BonusRate).
// Negative input is treated as zero. A NaN or negative bonus counts as zero and
// the bonus is capped at maxAward.
func (p Policy) Award(timeRemaining int) int {
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	bonus := math.Floor(float64(timeRemaining) * p.BonusRate)
	switch {
	case !(bonus > 0):
		bonus = 0
	case bonus > maxAward:
		bonus = maxAward
	}
	return p.BasePoints + int(bonus)
}
