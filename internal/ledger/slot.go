// internal/ledger/slot.go
//
// Ledger persisted as a single JSON document in a key-value slot.
//
// Slot format: a JSON array of results, highest score first, at most Cap long:
//   [{"id":"…","score":850,"wordsCompleted":3,"hintsUsed":1,"timestamp":"2026-01-02T03:04:05Z"}]
//
// Append is read-merge-sort-truncate-write, serialized within the process.

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/robalobadob/wordchallenge/internal/game"
	"github.com/robalobadob/wordchallenge/internal/kv"
)

// DefaultKey is the slot the ledger lives in.
const DefaultKey = "high_scores"

type slot struct {
	mu  sync.Mutex // serializes read-modify-write
	kv  kv.Store
	key string
	cap int
}

// NewSlot returns a Ledger stored under key in store.
func NewSlot(store kv.Store, key string, n int) Ledger {
	if key == "" {
		key = DefaultKey
	}
	return &slot{kv: store, key: key, cap: normalizeCap(n)}
}

func (s *slot) Append(ctx context.Context, r game.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(rank(entries, r, s.cap))
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	return s.kv.Put(ctx, s.key, b)
}

func (s *slot) All(ctx context.Context) ([]game.RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// read loads the slot. A missing slot is an empty ledger.
func (s *slot) read(ctx context.Context) ([]game.RoundResult, error) {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []game.RoundResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []game.RoundResult
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}
	if entries == nil {
		entries = []game.RoundResult{}
	}
	return entries, nil
}
