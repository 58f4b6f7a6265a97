package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-paper-trader/internal/analysis"
	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/ledger"
	"solana-paper-trader/internal/market"
	"solana-paper-trader/internal/storage/memory"
	"solana-paper-trader/internal/strategy"
	"solana-paper-trader/internal/vetting"
)

const (
	mintA = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	mintB = "So11111111111111111111111111111111111111112"
)

type stubChecker struct {
	mu      sync.Mutex
	calls   int
	results map[string]vetting.Result
	def     vetting.Result
}

func (s *stubChecker) Check(_ context.Context, mint string) vetting.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if r, ok := s.results[mint]; ok {
		return r
	}
	return s.def
}

func (s *stubChecker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type harness struct {
	engine   *Engine
	checker  *stubChecker
	ledger   *ledger.Ledger
	tradeLog *memory.TradeLogStore
	ticks    *memory.TickStore
	cache    *analysis.Cache
	market   *market.Store
	clock    time.Time
}

func newHarness(t *testing.T, cfg Config, def vetting.Result) *harness {
	t.Helper()
	logger := zerolog.Nop()

	h := &harness{
		checker:  &stubChecker{def: def, results: map[string]vetting.Result{}},
		ledger:   ledger.New(decimal.RequireFromString("1.0")),
		tradeLog: memory.NewTradeLogStore(),
		ticks:    memory.NewTickStore(),
		cache:    analysis.NewCache(memory.NewAnalysisStore(), logger),
		market:   market.NewStore(logger),
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	strat := strategy.NewMarketCapStrategy(30, decimal.RequireFromString("0.1"))
	h.engine = New(cfg, Deps{
		Events:   nil,
		Market:   h.market,
		Cache:    h.cache,
		Checker:  h.checker,
		Strategy: strat,
		Ledger:   h.ledger,
		TradeLog: h.tradeLog,
		Ticks:    h.ticks,
	}, logger)
	h.engine.now = func() time.Time { return h.clock }
	return h
}

func defaultConfig() Config {
	return Config{
		CacheTTL:         5 * time.Minute,
		MaxCheckAttempts: 3,
		RetryCoolDown:    time.Hour,
		DecisionInterval: 30 * time.Second,
	}
}

// seedToken pushes a creation and one trade through the ingestion path
// so the token qualifies for the market-cap strategy.
func (h *harness) seedToken(mint string, capSol, price float64) {
	h.engine.handleEvent(domain.NewTokenEvent{
		TokenMint:    mint,
		Symbol:       "TST",
		MarketCapSol: capSol,
		Timestamp:    h.clock,
	})
	h.engine.handleEvent(domain.TokenTradeEvent{
		TokenMint:    mint,
		Symbol:       "TST",
		Side:         domain.SideBuy,
		Price:        price,
		SolAmount:    0.5,
		MarketCapSol: capSol,
		Timestamp:    h.clock,
	})
}

func TestPassConfirmedTokenExecutesBuy(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())

	// 0.1 SOL position at 0.05 SOL/token buys 2 tokens.
	assert.True(t, h.ledger.Position(mintA).Equal(decimal.RequireFromString("2")))
	assert.True(t, h.ledger.Balance().Equal(decimal.RequireFromString("0.9")))

	trades, err := h.tradeLog.All(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, mintA, trades[0].Mint)
	assert.Equal(t, domain.ActionBuy, trades[0].Action)
	assert.True(t, trades[0].Cost.Equal(decimal.RequireFromString("0.1")))

	rec, ok := h.cache.Get(mintA)
	require.True(t, ok)
	assert.True(t, rec.IsSafe)
}

func TestPassRejectedTokenNeverTrades(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{
		Status: vetting.StatusRejected,
		Reason: vetting.ReasonNoRoute,
	})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())

	assert.True(t, h.ledger.Balance().Equal(decimal.RequireFromString("1.0")))
	trades, err := h.tradeLog.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trades)

	rec, ok := h.cache.Get(mintA)
	require.True(t, ok)
	assert.False(t, rec.IsSafe)
}

func TestPassBelowThresholdHolds(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 10, 0.05)

	h.engine.runPass(context.Background())

	assert.True(t, h.ledger.Balance().Equal(decimal.RequireFromString("1.0")))
	trades, err := h.tradeLog.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestTooNewCoolDownDefersRecheck(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusTooNew})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())
	require.Equal(t, 1, h.checker.callCount())

	// Within the cool-down the mint is stale but not eligible.
	h.clock = h.clock.Add(10 * time.Minute)
	h.engine.runPass(context.Background())
	assert.Equal(t, 1, h.checker.callCount())

	// Past the cool-down it is rechecked.
	h.clock = h.clock.Add(time.Hour)
	h.engine.runPass(context.Background())
	assert.Equal(t, 2, h.checker.callCount())
}

func TestTooNewExhaustsAttemptsAndRejects(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxCheckAttempts = 2
	h := newHarness(t, cfg, vetting.Result{Status: vetting.StatusTooNew})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())
	h.clock = h.clock.Add(2 * time.Hour)
	h.engine.runPass(context.Background())
	require.Equal(t, 2, h.checker.callCount())

	rec, ok := h.cache.Get(mintA)
	require.True(t, ok)
	assert.False(t, rec.IsSafe)

	// The rejection is a fresh record, so no further checks.
	h.clock = h.clock.Add(time.Minute)
	h.engine.runPass(context.Background())
	assert.Equal(t, 2, h.checker.callCount())
}

func TestFreshConfirmationSkipsRecheck(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())
	h.clock = h.clock.Add(time.Minute)
	h.engine.runPass(context.Background())
	assert.Equal(t, 1, h.checker.callCount())

	// Past the TTL the token is vetted again.
	h.clock = h.clock.Add(10 * time.Minute)
	h.engine.runPass(context.Background())
	assert.Equal(t, 2, h.checker.callCount())
}

func TestSinglePositionPerMint(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 50, 0.05)

	h.engine.runPass(context.Background())
	h.clock = h.clock.Add(time.Minute)
	h.engine.runPass(context.Background())

	trades, err := h.tradeLog.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 1)
	assert.True(t, h.ledger.Balance().Equal(decimal.RequireFromString("0.9")))
}

func TestInsufficientFundsLeavesLedgerUntouched(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 50, 0.05)
	h.seedToken(mintB, 50, 0.05)

	// Drain the balance below one position size.
	require.NoError(t, h.ledger.ApplyBuy("sink", decimal.RequireFromString("1"), decimal.RequireFromString("0.95")))

	h.engine.runPass(context.Background())

	assert.True(t, h.ledger.Balance().Equal(decimal.RequireFromString("0.05")))
	trades, err := h.tradeLog.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRetentionSweepEvictsAndForgets(t *testing.T) {
	cfg := defaultConfig()
	cfg.RetentionWindow = time.Hour
	h := newHarness(t, cfg, vetting.Result{Status: vetting.StatusConfirmed})
	h.seedToken(mintA, 10, 0.05)

	h.engine.runPass(context.Background())
	require.Equal(t, 1, h.market.Len())
	require.Equal(t, 1, h.cache.Len())

	h.clock = h.clock.Add(2 * time.Hour)
	h.engine.runPass(context.Background())

	assert.Equal(t, 0, h.market.Len())
	assert.Equal(t, 0, h.cache.Len())
}

func TestTradeTicksFlushedOnPass(t *testing.T) {
	h := newHarness(t, defaultConfig(), vetting.Result{Status: vetting.StatusRejected})
	h.seedToken(mintA, 50, 0.05)

	require.Empty(t, h.ticks.All())
	h.engine.runPass(context.Background())

	ticks := h.ticks.All()
	require.Len(t, ticks, 1)
	assert.Equal(t, mintA, ticks[0].Mint)
	assert.Equal(t, 0.05, ticks[0].Price)
	assert.Equal(t, domain.SideBuy, ticks[0].Side)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	events := make(chan domain.Event)
	logger := zerolog.Nop()
	cache := analysis.NewCache(memory.NewAnalysisStore(), logger)
	eng := New(defaultConfig(), Deps{
		Events:   events,
		Market:   market.NewStore(logger),
		Cache:    cache,
		Checker:  &stubChecker{},
		Strategy: strategy.NewMarketCapStrategy(30, decimal.RequireFromString("0.1")),
		Ledger:   ledger.New(decimal.RequireFromString("1.0")),
		TradeLog: memory.NewTradeLogStore(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	events <- domain.NewTokenEvent{TokenMint: mintA, Timestamp: time.Now()}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancel")
	}
}
