package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// AnalysisStore implements storage.AnalysisStore using PostgreSQL.
// Save replaces the whole table inside one transaction, keeping the
// wholesale-snapshot contract of the interface.
type AnalysisStore struct {
	pool *Pool
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(pool *Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)

// Load reads the full mapping.
func (s *AnalysisStore) Load(ctx context.Context) (map[string]domain.AnalysisRecord, error) {
	query := `
		SELECT mint, checked_at, is_safe, attempts, next_retry_at
		FROM analysis_records
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load analysis records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]domain.AnalysisRecord)
	for rows.Next() {
		var (
			mint        string
			rec         domain.AnalysisRecord
			nextRetryAt *time.Time
		)
		if err := rows.Scan(&mint, &rec.CheckedAt, &rec.IsSafe, &rec.Attempts, &nextRetryAt); err != nil {
			return nil, fmt.Errorf("scan analysis record: %w", err)
		}
		if nextRetryAt != nil {
			rec.NextRetryAt = *nextRetryAt
		}
		records[mint] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis records: %w", err)
	}
	return records, nil
}

// Save replaces the stored mapping atomically.
func (s *AnalysisStore) Save(ctx context.Context, records map[string]domain.AnalysisRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analysis_records`); err != nil {
		return fmt.Errorf("clear analysis records: %w", err)
	}

	insert := `
		INSERT INTO analysis_records (mint, checked_at, is_safe, attempts, next_retry_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for mint, rec := range records {
		var nextRetryAt *time.Time
		if !rec.NextRetryAt.IsZero() {
			t := rec.NextRetryAt
			nextRetryAt = &t
		}
		if _, err := tx.Exec(ctx, insert, mint, rec.CheckedAt, rec.IsSafe, rec.Attempts, nextRetryAt); err != nil {
			return fmt.Errorf("insert analysis record %s: %w", mint, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
