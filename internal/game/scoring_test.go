package game

import (
	"math"
	"testing"
)

func TestAward(t *testing.T) {
	cases := []struct {
		name string
		p    Policy
		t    int
		want int
	}{
		{"zero time", Policy{100, 10}, 0, 100},
		{"full minute", Policy{100, 10}, 60, 700},
		{"rate five", Policy{100, 5}, 37, 285},
		{"fractional rate floors", Policy{100, 2.5}, 3, 107},
		{"negative clamps", Policy{100, 10}, -4, 100},
		{"nan rate awards base", Policy{100, math.NaN()}, 30, 100},
		{"infinite rate caps", Policy{100, math.Inf(1)}, 30, 100 + maxAward},
		{"negative infinite rate awards base", Policy{100, math.Inf(-1)}, 30, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.Award(tc.t); got != tc.want {
				t.Errorf("Award(%d) = %d, want %d", tc.t, got, tc.want)
			}
		})
	}
}

func TestAwardMonotonic(t *testing.T) {
	for _, rate := range []float64{0, 0.5, 5, 10} {
		p := Policy{BasePoints: 100, BonusRate: rate}
		prev := p.Award(0)
		for s := 1; s <= 120; s++ {
			cur := p.Award(s)
			if cur < prev {
				t.Fatalf("rate %v: Award(%d)=%d < Award(%d)=%d", rate, s, cur, s-1, prev)
			}
			prev = cur
		}
	}
}
