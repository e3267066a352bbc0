package game

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/robalobadob/wordchallenge/internal/words"
)

// maxShuffleAttempts bounds the retry loop; past it Scramble rotates instead.
const maxShuffleAttempts = 64

// Rand is the subset of *rand.Rand used for shuffling.
type Rand interface {
	IntN(n int) int
}

// Scrambler produces letter permutations that differ from the input.
type Scrambler struct {
	mu  sync.Mutex
	rng Rand
}

// NewScrambler returns a Scrambler drawing from rng, or from a runtime-seeded
// PCG source when rng is nil.
func NewScrambler(rng Rand) *Scrambler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Scrambler{rng: rng}
}

// Scramble returns a random anagram of word that is not equal to word.
func (s *Scrambler) Scramble(word string) (string, error) {
	if !words.Scrambleable(word) {
		return "", fmt.Errorf("%w: %q", ErrDegenerateWord, word)
	}
	letters := []rune(word)

	s.mu.Lock()
	defer s.mu.Unlock()
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		out := make([]rune, len(letters))
		copy(out, letters)
		s.shuffle(out)
		if string(out) != word {
			return string(out), nil
		}
	}
	// Rotating by one differs whenever two letters differ.
	return string(append(letters[1:], letters[0])), nil
}

// shuffle is a Fisher–Yates permutation in place.
func (s *Scrambler) shuffle(r []rune) {
	for i := len(r) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		r[i], r[j] = r[j], r[i]
	}
}
