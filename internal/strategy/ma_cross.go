package strategy

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"solana-paper-trader/internal/domain"
)

// MACrossStrategy is the documented alternative to MarketCapStrategy:
// a short/long moving-average crossover over observed trade prices.
// It emits nothing for a token until at least long-window samples have
// been observed, so fresh listings are ignored for a while by design.
// Its windows are independent of the market-cap threshold; the two
// strategies are never combined.
type MACrossStrategy struct {
	ShortWindow int
	LongWindow  int // also the minimum sample count
	PositionSol decimal.Decimal

	mu      sync.RWMutex
	history map[string][]float64 // mint -> ring of recent prices, newest last
}

// NewMACrossStrategy creates the crossover strategy. Windows default to
// 5/20 when non-positive.
func NewMACrossStrategy(shortWindow, longWindow int, positionSol decimal.Decimal) *MACrossStrategy {
	if shortWindow <= 0 {
		shortWindow = 5
	}
	if longWindow <= shortWindow {
		longWindow = 20
	}
	return &MACrossStrategy{
		ShortWindow: shortWindow,
		LongWindow:  longWindow,
		PositionSol: positionSol,
		history:     make(map[string][]float64),
	}
}

// ID returns the strategy identifier including parameters.
func (s *MACrossStrategy) ID() string {
	return fmt.Sprintf("MA_CROSS_%d_%d", s.ShortWindow, s.LongWindow)
}

// ObservePrice appends a trade price to the token's history, keeping
// only the long window.
func (s *MACrossStrategy) ObservePrice(mint string, point domain.PricePoint) {
	if point.Price <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[mint], point.Price)
	if len(h) > s.LongWindow {
		h = h[len(h)-s.LongWindow:]
	}
	s.history[mint] = h
}

// Score is the short-over-long MA excess, clipped to [0, 1]. Tokens
// with too few samples score 0.
func (s *MACrossStrategy) Score(state domain.TokenState) float64 {
	short, long, ok := s.averages(state.Mint)
	if !ok || long <= 0 {
		return 0
	}
	score := (short - long) / long
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Decide buys on a positive crossover (short MA above long MA) and
// sells on a negative one. Tokens with fewer than LongWindow samples
// are held.
func (s *MACrossStrategy) Decide(state domain.TokenState) domain.Decision {
	short, long, ok := s.averages(state.Mint)
	if !ok || state.LastPrice <= 0 {
		return domain.Hold()
	}

	price := decimal.NewFromFloat(state.LastPrice)
	qty := s.PositionSol.Div(price)
	if qty.Sign() <= 0 {
		return domain.Hold()
	}

	switch {
	case short > long:
		return domain.Buy(qty)
	case short < long:
		return domain.Sell(qty)
	default:
		return domain.Hold()
	}
}

// averages computes the short and long moving averages; ok is false
// until the long window is full.
func (s *MACrossStrategy) averages(mint string) (short, long float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.history[mint]
	if len(h) < s.LongWindow {
		return 0, 0, false
	}

	long = mean(h)
	short = mean(h[len(h)-s.ShortWindow:])
	return short, long, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Ensure MACrossStrategy implements both interfaces.
var (
	_ Strategy      = (*MACrossStrategy)(nil)
	_ PriceObserver = (*MACrossStrategy)(nil)
)
