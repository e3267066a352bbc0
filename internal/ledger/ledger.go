// internal/ledger/ledger.go
//
// Score ledger: the ranked history of finished rounds.
//
// Characteristics:
//   - Entries are kept sorted by score, highest first; ties keep the earlier round first.
//   - Only the top Cap entries survive an Append.
//   - Existing entries are never modified.
//
// Implementations live in memory.go (process-local) and slot.go (a JSON
// document in a key-value store, see internal/kv).

package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/robalobadob/wordchallenge/internal/game"
)

// DefaultCap is the number of results retained.
const DefaultCap = 10

// ErrCorruptSlot is returned when the persisted ledger cannot be decoded.
var ErrCorruptSlot = errors.New("ledger: corrupt slot")

// Ledger defines the persistence interface for round results.
type Ledger interface {
	// Append inserts a result, re-sorts, and truncates to the cap.
	Append(ctx context.Context, r game.RoundResult) error

	// All returns the retained results, highest score first.
	All(ctx context.Context) ([]game.RoundResult, error)
}

// rank merges r into entries, sorts, and truncates to limit.
// The input slice is not modified.
func rank(entries []game.RoundResult, r game.RoundResult, limit int) []game.RoundResult {
	out := make([]game.RoundResult, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, r)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeCap(n int) int {
	if n <= 0 {
		return DefaultCap
	}
	return n
}
