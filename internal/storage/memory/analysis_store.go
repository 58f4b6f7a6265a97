package memory

import (
	"context"
	"sync"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// AnalysisStore is an in-memory implementation of storage.AnalysisStore.
type AnalysisStore struct {
	mu   sync.RWMutex
	data map[string]domain.AnalysisRecord
}

// NewAnalysisStore creates an empty in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{data: make(map[string]domain.AnalysisRecord)}
}

// Load returns a copy of the stored mapping.
func (s *AnalysisStore) Load(_ context.Context) (map[string]domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.AnalysisRecord, len(s.data))
	for mint, rec := range s.data {
		out[mint] = rec
	}
	return out, nil
}

// Save replaces the stored mapping with a copy of the input.
func (s *AnalysisStore) Save(_ context.Context, records map[string]domain.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]domain.AnalysisRecord, len(records))
	for mint, rec := range records {
		s.data[mint] = rec
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)
