package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"solana-paper-trader/internal/domain"
)

// MarketCapStrategy is the default single-factor momentum rule: buy a
// fixed SOL amount of any token whose reported market cap meets the
// configured minimum. It never sells; positions ride until an external
// policy (or the operator) closes them.
type MarketCapStrategy struct {
	MinMarketCapSol float64         // buy threshold, inclusive
	PositionSol     decimal.Decimal // SOL spent per buy
}

// NewMarketCapStrategy creates the threshold strategy.
func NewMarketCapStrategy(minMarketCapSol float64, positionSol decimal.Decimal) *MarketCapStrategy {
	return &MarketCapStrategy{
		MinMarketCapSol: minMarketCapSol,
		PositionSol:     positionSol,
	}
}

// ID returns the strategy identifier including parameters.
func (s *MarketCapStrategy) ID() string {
	return fmt.Sprintf("MARKET_CAP_%.0f", s.MinMarketCapSol)
}

// Score is market cap relative to the threshold, clipped to [0, 1].
// A token with no positive market-cap reading scores 0.
func (s *MarketCapStrategy) Score(state domain.TokenState) float64 {
	if state.MarketCapSol <= 0 || s.MinMarketCapSol <= 0 {
		return 0
	}
	score := state.MarketCapSol / s.MinMarketCapSol
	if score > 1 {
		return 1
	}
	return score
}

// Decide buys when the market cap meets or exceeds the threshold. The
// buy quantity is the configured SOL spend at the last seen price; a
// token without a price yet cannot be sized and is held.
func (s *MarketCapStrategy) Decide(state domain.TokenState) domain.Decision {
	if state.MarketCapSol < s.MinMarketCapSol {
		return domain.Hold()
	}
	if state.LastPrice <= 0 {
		return domain.Hold()
	}

	price := decimal.NewFromFloat(state.LastPrice)
	qty := s.PositionSol.Div(price)
	if qty.Sign() <= 0 {
		return domain.Hold()
	}
	return domain.Buy(qty)
}

// Ensure MarketCapStrategy implements Strategy.
var _ Strategy = (*MarketCapStrategy)(nil)
