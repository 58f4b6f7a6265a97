package memory

import (
	"context"
	"sync"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// TickStore is an in-memory implementation of storage.TickStore.
type TickStore struct {
	mu    sync.RWMutex
	ticks []*domain.TradeTick
}

// NewTickStore creates an empty in-memory tick store.
func NewTickStore() *TickStore {
	return &TickStore{}
}

// InsertBulk adds a batch of ticks.
func (s *TickStore) InsertBulk(_ context.Context, ticks []*domain.TradeTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tick := range ticks {
		tickCopy := *tick
		s.ticks = append(s.ticks, &tickCopy)
	}
	return nil
}

// All returns every stored tick in insertion order.
func (s *TickStore) All() []*domain.TradeTick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.TradeTick, 0, len(s.ticks))
	for _, tick := range s.ticks {
		tickCopy := *tick
		out = append(out, &tickCopy)
	}
	return out
}

// Verify interface compliance at compile time.
var _ storage.TickStore = (*TickStore)(nil)
