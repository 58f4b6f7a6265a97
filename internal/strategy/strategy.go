package strategy

import (
	"solana-paper-trader/internal/domain"
)

// Strategy scores a token's market state and produces a trade decision.
// Implementations read TokenState only; they never touch the ledger or
// the dispatcher, so any implementation is swappable without engine
// changes.
type Strategy interface {
	// Score rates the token in [0, 1].
	Score(state domain.TokenState) float64

	// Decide emits Buy, Sell, or Hold for the token's current state.
	Decide(state domain.TokenState) domain.Decision

	// ID returns the strategy identifier (includes parameters).
	ID() string
}

// PriceObserver is implemented by strategies that need a per-token
// price history. The engine feeds every observed trade price to the
// active strategy when it implements this interface.
type PriceObserver interface {
	ObservePrice(mint string, point domain.PricePoint)
}
