package postgres

import (
	"context"
	"fmt"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// TradeLogStore implements storage.TradeLogStore using PostgreSQL.
type TradeLogStore struct {
	pool *Pool
}

// NewTradeLogStore creates a new TradeLogStore.
func NewTradeLogStore(pool *Pool) *TradeLogStore {
	return &TradeLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)

// Append adds one executed trade to the log.
func (s *TradeLogStore) Append(ctx context.Context, trade *domain.TradeRecord) error {
	if trade == nil || trade.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_log (mint, symbol, action, quantity, price, cost, strategy_id, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		trade.Mint,
		trade.Symbol,
		trade.Action.String(),
		trade.Quantity,
		trade.Price,
		trade.Cost,
		trade.StrategyID,
		trade.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// All returns every recorded trade, ordered by execution time ASC.
func (s *TradeLogStore) All(ctx context.Context) ([]*domain.TradeRecord, error) {
	query := `
		SELECT mint, symbol, action, quantity, price, cost, strategy_id, executed_at
		FROM trade_log
		ORDER BY executed_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load trade log: %w", err)
	}
	defer rows.Close()

	var trades []*domain.TradeRecord
	for rows.Next() {
		var (
			tr     domain.TradeRecord
			action string
		)
		if err := rows.Scan(&tr.Mint, &tr.Symbol, &action, &tr.Quantity, &tr.Price, &tr.Cost, &tr.StrategyID, &tr.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		tr.Action = parseAction(action)
		trades = append(trades, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade log: %w", err)
	}
	return trades, nil
}

func parseAction(s string) domain.Action {
	switch s {
	case "BUY":
		return domain.ActionBuy
	case "SELL":
		return domain.ActionSell
	default:
		return domain.ActionHold
	}
}
