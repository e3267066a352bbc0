// internal/words/words.go
//
// Vocabulary management for the round engine.
//
// Responsibilities:
//   - Load the candidate word list from a file or fall back to the embedded default.
//   - Normalize entries (trim, uppercase, drop blanks/comments, de-duplicate).
//   - Reject words that can never be scrambled into something different.
//   - Supply uniformly random draws via Next.
//
// Environment variables (read by internal/config, passed to Load):
//   WORDS_FILE=/path/to/words.txt
//
// Constraints:
//   • Words are uppercase ASCII letters A–Z.
//   • Every word has at least two distinct letters.
//   • A Vocabulary is immutable after construction.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordchallenge/assets"
)

var (
	ErrEmptyVocabulary = errors.New("words: vocabulary is empty")
	ErrInvalidWord     = errors.New("words: invalid word")
)

// Rand is the subset of *rand.Rand used for draws.
type Rand interface {
	IntN(n int) int
}

// Vocabulary is a fixed list of candidate words.
type Vocabulary struct {
	words []string
	set   map[string]struct{}

	mu  sync.Mutex // guards rng; *rand.Rand is not safe for concurrent use
	rng Rand
}

// New validates list and builds a Vocabulary.
// If rng is nil, a PCG source seeded from the runtime is used.
func New(list []string, rng Rand) (*Vocabulary, error) {
	norm := lo.Uniq(lo.FilterMap(list, func(s string, _ int) (string, bool) {
		w := strings.ToUpper(strings.TrimSpace(s))
		return w, w != "" && !strings.HasPrefix(w, "#")
	}))

	for _, w := range norm {
		if !isAlpha(w) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
	}
	usable := lo.Filter(norm, func(w string, _ int) bool { return Scrambleable(w) })
	if len(usable) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Vocabulary{
		words: usable,
		set:   lo.Associate(usable, func(w string) (string, struct{}) { return w, struct{}{} }),
		rng:   rng,
	}, nil
}

// Load reads one word per line from path.
// An empty path falls back to the embedded default list.
func Load(path string, rng Rand) (*Vocabulary, error) {
	var (
		list []string
		err  error
	)
	if path == "" {
		list, err = assets.DefaultWords()
	} else {
		list, err = readWordFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("words: load %q: %w", path, err)
	}
	return New(list, rng)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// Next returns a uniformly random word.
func (v *Vocabulary) Next() string {
	v.mu.Lock()
	i := v.rng.IntN(len(v.words))
	v.mu.Unlock()
	return v.words[i]
}

// Words returns a copy of the vocabulary.
func (v *Vocabulary) Words() []string {
	return append([]string(nil), v.words...)
}

// Len reports the vocabulary size.
func (v *Vocabulary) Len() int { return len(v.words) }

// Contains reports whether w (any case) is in the vocabulary.
func (v *Vocabulary) Contains(w string) bool {
	_, ok := v.set[strings.ToUpper(w)]
	return ok
}

// Scrambleable reports whether w has a permutation different from itself,
// i.e. at least two distinct letters.
func Scrambleable(w string) bool {
	r := []rune(w)
	for i := 1; i < len(r); i++ {
		if r[i] != r[0] {
			return true
		}
	}
	return false
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
