// internal/ledger/memory.go
//
// In-memory implementation of the Ledger interface.
// Used when no database path is configured, and as the fake in tests.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package ledger

import (
	"context"
	"sync"

	"github.com/robalobadob/wordchallenge/internal/game"
)

// memory is a slice-backed Ledger.
type memory struct {
	mu      sync.RWMutex       // guards entries
	entries []game.RoundResult // sorted, len <= cap
	cap     int
}

// NewMemory constructs an in-memory Ledger retaining the top n results
// (DefaultCap if n <= 0).
func NewMemory(n int) Ledger {
	return &memory{cap: normalizeCap(n)}
}

// Append ranks r into the ledger.
func (m *memory) Append(ctx context.Context, r game.RoundResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = rank(m.entries, r, m.cap)
	return nil
}

// All returns a copy of the ranked results.
func (m *memory) All(ctx context.Context) ([]game.RoundResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]game.RoundResult{}, m.entries...), nil
}
