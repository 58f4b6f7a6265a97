package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage/memory"
)

func newTestCache() *Cache {
	return NewCache(memory.NewAnalysisStore(), zerolog.Nop())
}

func TestStale_NoRecord(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.True(t, Stale(domain.AnalysisRecord{}, false, now, 300*time.Second))
}

func TestStale_TTLGrid(t *testing.T) {
	base := time.Unix(1700000000, 0)

	cases := []struct {
		name    string
		elapsed time.Duration
		ttl     time.Duration
		want    bool
	}{
		{"fresh", 100 * time.Second, 300 * time.Second, false},
		{"exactly at ttl", 300 * time.Second, 300 * time.Second, false},
		{"just past ttl", 301 * time.Second, 300 * time.Second, true},
		{"far past ttl", 400 * time.Second, 300 * time.Second, true},
		{"zero ttl", time.Second, 0, true},
		{"zero elapsed", 0, 300 * time.Second, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := domain.AnalysisRecord{CheckedAt: base, IsSafe: true}
			got := Stale(rec, true, base.Add(tc.elapsed), tc.ttl)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCache_RecordThenStaleCycle(t *testing.T) {
	c := newTestCache()
	now := time.Unix(1700000000, 0)
	ttl := 300 * time.Second

	// Never checked: stale.
	assert.True(t, c.IsStale("A1", now, ttl))

	c.Record("A1", true, now)
	assert.False(t, c.IsStale("A1", now.Add(100*time.Second), ttl))
	assert.True(t, c.IsStale("A1", now.Add(400*time.Second), ttl))
}

func TestCache_RecordOverwritesRetryBookkeeping(t *testing.T) {
	c := newTestCache()
	now := time.Unix(1700000000, 0)

	c.MarkTooNew("A1", now, time.Hour)
	c.MarkTooNew("A1", now, time.Hour)
	rec, ok := c.Get("A1")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Attempts)

	c.Record("A1", false, now)
	rec, _ = c.Get("A1")
	assert.Zero(t, rec.Attempts)
	assert.True(t, rec.NextRetryAt.IsZero())
	assert.False(t, rec.IsSafe)
}

func TestCache_TooNewRecordStaysStaleButIneligible(t *testing.T) {
	c := newTestCache()
	now := time.Unix(1700000000, 0)
	ttl := 300 * time.Second

	c.MarkTooNew("A1", now, 2*time.Hour)

	// Still due for a check, but the cool-down blocks it until
	// NextRetryAt passes.
	assert.True(t, c.IsStale("A1", now.Add(time.Minute), ttl))
	assert.False(t, c.Eligible("A1", now.Add(time.Hour)))
	assert.True(t, c.Eligible("A1", now.Add(2*time.Hour)))
}

func TestCache_EligibleWithoutRecord(t *testing.T) {
	c := newTestCache()
	assert.True(t, c.Eligible("unseen", time.Now()))
}

func TestCache_PersistRestore(t *testing.T) {
	store := memory.NewAnalysisStore()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	c1 := NewCache(store, zerolog.Nop())
	c1.Record("A1", true, now)
	c1.MarkTooNew("B2", now, time.Hour)
	require.NoError(t, c1.Persist(ctx))

	c2 := NewCache(store, zerolog.Nop())
	c2.Restore(ctx)
	require.Equal(t, 2, c2.Len())

	rec, ok := c2.Get("A1")
	require.True(t, ok)
	assert.True(t, rec.IsSafe)

	rec, ok = c2.Get("B2")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Attempts)
}

func TestCache_RestoreSurvivesFailingStore(t *testing.T) {
	c := NewCache(failingStore{}, zerolog.Nop())
	c.Restore(context.Background()) // must not panic or fail startup
	assert.Zero(t, c.Len())
}

func TestCache_Forget(t *testing.T) {
	c := newTestCache()
	now := time.Unix(1700000000, 0)
	c.Record("A1", true, now)
	c.Record("B2", false, now)

	c.Forget([]string{"A1"})
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("A1")
	assert.False(t, ok)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (map[string]domain.AnalysisRecord, error) {
	return nil, assert.AnError
}

func (failingStore) Save(context.Context, map[string]domain.AnalysisRecord) error {
	return assert.AnError
}
