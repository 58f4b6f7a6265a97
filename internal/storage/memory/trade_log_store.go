package memory

import (
	"context"
	"sort"
	"sync"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// TradeLogStore is an in-memory implementation of storage.TradeLogStore.
type TradeLogStore struct {
	mu     sync.RWMutex
	trades []*domain.TradeRecord
}

// NewTradeLogStore creates an empty in-memory trade log.
func NewTradeLogStore() *TradeLogStore {
	return &TradeLogStore{}
}

// Append adds one executed trade to the log.
func (s *TradeLogStore) Append(_ context.Context, trade *domain.TradeRecord) error {
	if trade == nil || trade.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tradeCopy := *trade
	s.trades = append(s.trades, &tradeCopy)
	return nil
}

// All returns every recorded trade, ordered by execution time ASC.
func (s *TradeLogStore) All(_ context.Context) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.TradeRecord, 0, len(s.trades))
	for _, tr := range s.trades {
		trCopy := *tr
		out = append(out, &trCopy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})
	return out, nil
}

// Verify interface compliance at compile time.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)
