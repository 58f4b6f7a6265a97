package storage

import (
	"context"

	"solana-paper-trader/internal/domain"
)

// AnalysisStore persists the analysis cache as a wholesale snapshot:
// the whole mapping is written after each decision pass and read back
// once at startup.
type AnalysisStore interface {
	// Load reads the full mapping. A missing snapshot returns an empty
	// map, not an error; a corrupt one returns an error the caller may
	// downgrade to a warning.
	Load(ctx context.Context) (map[string]domain.AnalysisRecord, error)

	// Save replaces the stored mapping atomically.
	Save(ctx context.Context, records map[string]domain.AnalysisRecord) error
}

// TradeLogStore records executed paper trades.
type TradeLogStore interface {
	// Append adds one executed trade to the log.
	Append(ctx context.Context, trade *domain.TradeRecord) error

	// All returns every recorded trade, ordered by execution time ASC.
	All(ctx context.Context) ([]*domain.TradeRecord, error)
}

// TickStore sinks observed trade ticks for offline analysis.
type TickStore interface {
	// InsertBulk adds a batch of ticks. Best-effort from the engine's
	// point of view: a failed batch is logged and dropped.
	InsertBulk(ctx context.Context, ticks []*domain.TradeTick) error
}
