// Package market maintains the rolling per-token market view fed by
// the event stream.
package market

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-paper-trader/internal/domain"
)

// Store is an in-memory map of mint address to TokenState. Updates to
// the same token are linearized by the store mutex; last event by
// arrival order wins and carries its own timestamp downstream.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]*domain.TokenState
	logger zerolog.Logger
}

// NewStore creates an empty market state store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		tokens: make(map[string]*domain.TokenState),
		logger: logger.With().Str("component", "market").Logger(),
	}
}

// UpsertFromEvent applies one feed event to the store. NewToken and
// TokenTrade events create-or-update the referenced token's state;
// AccountTrade and Liquidity events only bump auxiliary counters.
// Events without a mint are logged and dropped.
func (s *Store) UpsertFromEvent(ev domain.Event) {
	if ev.Mint() == "" {
		s.logger.Warn().Str("kind", string(ev.Kind())).Msg("event without mint dropped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case domain.NewTokenEvent:
		st := s.ensure(e.TokenMint, e.Timestamp)
		st.Symbol = e.Symbol
		st.Name = e.Name
		st.MarketCapSol = e.MarketCapSol
		st.CumulativeVolume += e.InitialBuySol
		s.advance(st, e.Timestamp)

	case domain.TokenTradeEvent:
		st := s.ensure(e.TokenMint, e.Timestamp)
		if st.Symbol == "" {
			st.Symbol = e.Symbol
		}
		if e.Price > 0 {
			st.LastPrice = e.Price
		}
		if e.MarketCapSol > 0 {
			st.MarketCapSol = e.MarketCapSol
		}
		st.CumulativeVolume += e.SolAmount
		st.TradeCount++
		s.advance(st, e.Timestamp)

	case domain.AccountTradeEvent:
		st := s.ensure(e.TokenMint, e.Timestamp)
		st.AccountTrades++
		s.advance(st, e.Timestamp)

	case domain.LiquidityEvent:
		st := s.ensure(e.TokenMint, e.Timestamp)
		st.LiquidityAdds++
		st.LiquiditySol += e.SolAmount
		if e.Pool != "" {
			st.RaydiumPool = e.Pool
		}
		s.advance(st, e.Timestamp)
	}
}

// ensure returns the state for a mint, creating it on first sight.
// Caller must hold the write lock.
func (s *Store) ensure(mint string, at time.Time) *domain.TokenState {
	st, ok := s.tokens[mint]
	if !ok {
		st = &domain.TokenState{Mint: mint, FirstSeenAt: at}
		s.tokens[mint] = st
	}
	return st
}

// advance moves LastEventAt forward. The timestamp only ever advances,
// so arrival jitter cannot rewind downstream staleness decisions.
func (s *Store) advance(st *domain.TokenState, at time.Time) {
	if at.After(st.LastEventAt) {
		st.LastEventAt = at
	}
}

// Get returns a copy of the state for a mint, false when unseen.
func (s *Store) Get(mint string) (domain.TokenState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.tokens[mint]
	if !ok {
		return domain.TokenState{}, false
	}
	return *st, true
}

// All returns a point-in-time copy of every token state. Iterating the
// result is never invalidated by concurrent writers.
func (s *Store) All() []domain.TokenState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TokenState, 0, len(s.tokens))
	for _, st := range s.tokens {
		out = append(out, *st)
	}
	return out
}

// Len returns the number of tracked tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Prices returns the last known price per mint for portfolio valuation.
func (s *Store) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.tokens))
	for mint, st := range s.tokens {
		if st.LastPrice > 0 {
			out[mint] = st.LastPrice
		}
	}
	return out
}

// Evict drops tokens whose last event is older than the cutoff and
// returns the evicted mints. Bounded retention for a feed that never
// deletes tokens on its own.
func (s *Store) Evict(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for mint, st := range s.tokens {
		if st.LastEventAt.Before(cutoff) {
			delete(s.tokens, mint)
			evicted = append(evicted, mint)
		}
	}
	return evicted
}
