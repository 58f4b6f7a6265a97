// Package analysis caches legitimacy-check outcomes per token and
// decides when a token is due for re-examination.
package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// Stale reports whether a record requires a fresh check at the given
// time. Absence means "never checked" and is always stale, as is a
// record carrying only retry bookkeeping (zero CheckedAt). Pure
// function of its inputs.
func Stale(rec domain.AnalysisRecord, exists bool, now time.Time, ttl time.Duration) bool {
	if !exists || rec.CheckedAt.IsZero() {
		return true
	}
	return now.Sub(rec.CheckedAt) > ttl
}

// Cache holds the per-token analysis records and persists them through
// a storage.AnalysisStore snapshot.
type Cache struct {
	mu      sync.RWMutex
	records map[string]domain.AnalysisRecord
	store   storage.AnalysisStore
	logger  zerolog.Logger
}

// NewCache creates a cache backed by the given store.
func NewCache(store storage.AnalysisStore, logger zerolog.Logger) *Cache {
	return &Cache{
		records: make(map[string]domain.AnalysisRecord),
		store:   store,
		logger:  logger.With().Str("component", "analysis").Logger(),
	}
}

// Restore loads the persisted snapshot. A missing or corrupt snapshot
// starts the cache empty with a warning; restore never fails startup.
func (c *Cache) Restore(ctx context.Context) {
	records, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptSnapshot) {
			c.logger.Warn().Err(err).Msg("analysis snapshot corrupt, starting with empty cache")
		} else {
			c.logger.Warn().Err(err).Msg("analysis snapshot unavailable, starting with empty cache")
		}
		return
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()
	c.logger.Info().Int("records", len(records)).Msg("analysis cache restored")
}

// Persist writes the full mapping to the store.
func (c *Cache) Persist(ctx context.Context) error {
	c.mu.RLock()
	snapshot := make(map[string]domain.AnalysisRecord, len(c.records))
	for mint, rec := range c.records {
		snapshot[mint] = rec
	}
	c.mu.RUnlock()

	return c.store.Save(ctx, snapshot)
}

// IsStale reports whether the token needs a fresh legitimacy check.
func (c *Cache) IsStale(mint string, now time.Time, ttl time.Duration) bool {
	c.mu.RLock()
	rec, ok := c.records[mint]
	c.mu.RUnlock()
	return Stale(rec, ok, now, ttl)
}

// Eligible reports whether a check attempt may run now. A pending
// TooNew cool-down (future NextRetryAt) blocks re-attempts.
func (c *Cache) Eligible(mint string, now time.Time) bool {
	c.mu.RLock()
	rec, ok := c.records[mint]
	c.mu.RUnlock()

	if !ok || rec.NextRetryAt.IsZero() {
		return true
	}
	return !now.Before(rec.NextRetryAt)
}

// Get returns the record for a mint.
func (c *Cache) Get(mint string) (domain.AnalysisRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[mint]
	return rec, ok
}

// Record stores the outcome of a completed check, overwriting any prior
// record and clearing retry bookkeeping.
func (c *Cache) Record(mint string, isSafe bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[mint] = domain.AnalysisRecord{CheckedAt: now, IsSafe: isSafe}
}

// MarkTooNew bumps the attempt counter and schedules the next retry
// after the cool-down. Returns the attempt count so far.
func (c *Cache) MarkTooNew(mint string, now time.Time, coolDown time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.records[mint]
	rec.Attempts++
	rec.NextRetryAt = now.Add(coolDown)
	c.records[mint] = rec
	return rec.Attempts
}

// Forget drops records for evicted tokens.
func (c *Cache) Forget(mints []string) {
	if len(mints) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, mint := range mints {
		delete(c.records, mint)
	}
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
