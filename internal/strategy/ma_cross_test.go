package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-paper-trader/internal/domain"
)

func feedPrices(s *MACrossStrategy, mint string, prices []float64) {
	at := time.Unix(1700000000, 0)
	for i, p := range prices {
		s.ObservePrice(mint, domain.PricePoint{Price: p, At: at.Add(time.Duration(i) * time.Second)})
	}
}

func TestMACross_HoldUntilEnoughSamples(t *testing.T) {
	s := NewMACrossStrategy(5, 20, decimal.RequireFromString("0.1"))

	prices := make([]float64, 19)
	for i := range prices {
		prices[i] = 1.0
	}
	feedPrices(s, "A1", prices)

	d := s.Decide(domain.TokenState{Mint: "A1", LastPrice: 1.0})
	assert.Equal(t, domain.ActionHold, d.Action, "19 samples is below the minimum")
	assert.Equal(t, 0.0, s.Score(domain.TokenState{Mint: "A1"}))
}

func TestMACross_BuyOnUptrend(t *testing.T) {
	s := NewMACrossStrategy(5, 20, decimal.RequireFromString("0.1"))

	// Flat then rising: short MA ends above long MA.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 1.0 + float64(i)*0.05
	}
	feedPrices(s, "A1", prices)

	d := s.Decide(domain.TokenState{Mint: "A1", LastPrice: prices[len(prices)-1]})
	require.Equal(t, domain.ActionBuy, d.Action)
	assert.True(t, d.Quantity.Sign() > 0)
	assert.Greater(t, s.Score(domain.TokenState{Mint: "A1"}), 0.0)
}

func TestMACross_SellOnDowntrend(t *testing.T) {
	s := NewMACrossStrategy(5, 20, decimal.RequireFromString("0.1"))

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 2.0 - float64(i)*0.05
	}
	feedPrices(s, "A1", prices)

	d := s.Decide(domain.TokenState{Mint: "A1", LastPrice: prices[len(prices)-1]})
	assert.Equal(t, domain.ActionSell, d.Action)
}

func TestMACross_HistoryBoundedToLongWindow(t *testing.T) {
	s := NewMACrossStrategy(5, 20, decimal.RequireFromString("0.1"))

	// 100 old high prices followed by 20 low ones: only the last 20
	// may influence the averages.
	var prices []float64
	for i := 0; i < 100; i++ {
		prices = append(prices, 100.0)
	}
	for i := 0; i < 20; i++ {
		prices = append(prices, 1.0)
	}
	feedPrices(s, "A1", prices)

	short, long, ok := s.averages("A1")
	require.True(t, ok)
	assert.Equal(t, 1.0, short)
	assert.Equal(t, 1.0, long)
}

func TestMACross_IgnoresNonPositivePrices(t *testing.T) {
	s := NewMACrossStrategy(5, 20, decimal.RequireFromString("0.1"))

	feedPrices(s, "A1", []float64{1, 0, -1, 2})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.history["A1"], 2)
}
