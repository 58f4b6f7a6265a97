package clickhouse

import (
	"context"
	"fmt"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// TickStore implements storage.TickStore using ClickHouse.
type TickStore struct {
	conn *Conn
}

// NewTickStore creates a new TickStore.
func NewTickStore(conn *Conn) *TickStore {
	return &TickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// EnsureSchema creates the trade_ticks table when absent.
func (s *TickStore) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS trade_ticks (
			mint           String,
			symbol         String,
			side           String,
			price          Float64,
			sol_amount     Float64,
			market_cap_sol Float64,
			timestamp_ms   UInt64
		)
		ENGINE = MergeTree()
		ORDER BY (mint, timestamp_ms)
	`
	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure trade_ticks schema: %w", err)
	}
	return nil
}

// InsertBulk adds a batch of ticks.
func (s *TickStore) InsertBulk(ctx context.Context, ticks []*domain.TradeTick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_ticks (
			mint, symbol, side, price, sol_amount, market_cap_sol, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tick := range ticks {
		err = batch.Append(
			tick.Mint, tick.Symbol, string(tick.Side),
			tick.Price, tick.SolAmount, tick.MarketCapSol,
			uint64(tick.Timestamp.UnixMilli()),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
