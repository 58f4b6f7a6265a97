// Package engine wires the feed, market state, vetting cache, strategy
// and ledger into the two control loops of the trader: an ingestion
// loop that folds events into market state, and a periodic decision
// loop that vets tokens and executes paper trades.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-paper-trader/internal/analysis"
	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/ledger"
	"solana-paper-trader/internal/market"
	"solana-paper-trader/internal/observability"
	"solana-paper-trader/internal/storage"
	"solana-paper-trader/internal/strategy"
	"solana-paper-trader/internal/vetting"
)

// tickBatchSize is the number of buffered ticks that triggers a bulk
// insert into the tick sink between decision passes.
const tickBatchSize = 64

// TokenChecker vets a single mint. Satisfied by *vetting.Checker.
type TokenChecker interface {
	Check(ctx context.Context, mint string) vetting.Result
}

// Config holds the engine's timing and retry parameters.
type Config struct {
	CacheTTL         time.Duration
	MaxCheckAttempts int
	RetryCoolDown    time.Duration
	DecisionInterval time.Duration
	RetentionWindow  time.Duration // zero disables eviction
}

// Deps are the engine's collaborators. Ticks and Metrics are optional.
type Deps struct {
	Events   <-chan domain.Event
	Market   *market.Store
	Cache    *analysis.Cache
	Checker  TokenChecker
	Strategy strategy.Strategy
	Ledger   *ledger.Ledger
	TradeLog storage.TradeLogStore
	Ticks    storage.TickStore
	Metrics  *observability.Metrics
}

// Engine runs the ingestion and decision loops.
type Engine struct {
	cfg    Config
	deps   Deps
	logger zerolog.Logger

	observer strategy.PriceObserver // nil when the strategy ignores prices

	mu      sync.Mutex
	pending []*domain.TradeTick

	now func() time.Time
}

// New creates an engine. It does not start any goroutines.
func New(cfg Config, deps Deps, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With().Str("component", "engine").Logger(),
		now:    time.Now,
	}
	if obs, ok := deps.Strategy.(strategy.PriceObserver); ok {
		e.observer = obs
	}
	return e
}

// Run blocks until ctx is cancelled or the event channel closes, then
// persists the analysis cache and flushes buffered ticks.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info().
		Str("strategy", e.deps.Strategy.ID()).
		Dur("decision_interval", e.cfg.DecisionInterval).
		Msg("engine starting")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.ingestLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		e.decisionLoop(ctx)
	}()
	wg.Wait()

	// Final persistence is deliberately detached from the cancelled ctx.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.flushTicks(shutdownCtx)
	if err := e.deps.Cache.Persist(shutdownCtx); err != nil {
		e.logger.Error().Err(err).Msg("final cache persist failed")
	}
	e.logger.Info().Msg("engine stopped")
	return nil
}

func (e *Engine) ingestLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.deps.Events:
			if !ok {
				e.logger.Warn().Msg("event channel closed")
				return
			}
			e.handleEvent(ev)
		}
	}
}

func (e *Engine) handleEvent(ev domain.Event) {
	e.deps.Market.UpsertFromEvent(ev)
	if e.deps.Metrics != nil {
		e.deps.Metrics.EventsProcessed.WithLabelValues(string(ev.Kind())).Inc()
	}

	trade, ok := ev.(domain.TokenTradeEvent)
	if !ok {
		return
	}
	if e.observer != nil && trade.Price > 0 {
		e.observer.ObservePrice(trade.TokenMint, domain.PricePoint{
			Price: trade.Price,
			At:    trade.Timestamp,
		})
	}
	if e.deps.Ticks != nil {
		e.bufferTick(&domain.TradeTick{
			Mint:         trade.TokenMint,
			Symbol:       trade.Symbol,
			Side:         trade.Side,
			Price:        trade.Price,
			SolAmount:    trade.SolAmount,
			MarketCapSol: trade.MarketCapSol,
			Timestamp:    trade.Timestamp,
		})
	}
}

func (e *Engine) bufferTick(tick *domain.TradeTick) {
	e.mu.Lock()
	e.pending = append(e.pending, tick)
	full := len(e.pending) >= tickBatchSize
	e.mu.Unlock()
	if full {
		// Best effort, off the decision schedule.
		e.flushTicks(context.Background())
	}
}

// flushTicks drains the buffer into the tick sink. Failed batches are
// logged and dropped.
func (e *Engine) flushTicks(ctx context.Context) {
	if e.deps.Ticks == nil {
		return
	}
	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()
	if len(batch) == 0 {
		return
	}
	if err := e.deps.Ticks.InsertBulk(ctx, batch); err != nil {
		e.logger.Warn().Err(err).Int("ticks", len(batch)).Msg("tick batch dropped")
	}
}

func (e *Engine) decisionLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.DecisionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runPass(ctx)
		}
	}
}

// runPass is one decision cycle: vet stale tokens, evaluate the
// strategy on confirmed ones, sweep expired tokens, persist the cache.
func (e *Engine) runPass(ctx context.Context) {
	now := e.now()
	tokens := e.deps.Market.All()

	for i := range tokens {
		if ctx.Err() != nil {
			return
		}
		e.vetToken(ctx, tokens[i].Mint, now)
		if rec, ok := e.deps.Cache.Get(tokens[i].Mint); ok && rec.IsSafe {
			e.evaluate(ctx, tokens[i], now)
		}
	}

	if e.cfg.RetentionWindow > 0 {
		evicted := e.deps.Market.Evict(now.Add(-e.cfg.RetentionWindow))
		if len(evicted) > 0 {
			e.deps.Cache.Forget(evicted)
			if e.deps.Metrics != nil {
				e.deps.Metrics.TokensEvicted.Add(float64(len(evicted)))
			}
			e.logger.Debug().Int("tokens", len(evicted)).Msg("retention sweep")
		}
	}

	e.flushTicks(ctx)
	if err := e.deps.Cache.Persist(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("cache persist failed")
	}
	e.reportStats(now)
}

// vetToken runs at most one legitimacy check for the mint. Cool-downs
// are enforced through the cache; the pass never sleeps on a mint.
func (e *Engine) vetToken(ctx context.Context, mint string, now time.Time) {
	if !e.deps.Cache.IsStale(mint, now, e.cfg.CacheTTL) {
		return
	}
	if !e.deps.Cache.Eligible(mint, now) {
		return
	}

	res := e.deps.Checker.Check(ctx, mint)
	if e.deps.Metrics != nil {
		e.deps.Metrics.ChecksPerformed.WithLabelValues(res.Status.String()).Inc()
	}

	switch res.Status {
	case vetting.StatusConfirmed:
		e.deps.Cache.Record(mint, true, now)
	case vetting.StatusRejected:
		e.deps.Cache.Record(mint, false, now)
		e.logger.Debug().Str("mint", mint).Str("reason", res.Reason).Msg("token rejected")
	case vetting.StatusTooNew:
		attempts := e.deps.Cache.MarkTooNew(mint, now, e.cfg.RetryCoolDown)
		if attempts >= e.cfg.MaxCheckAttempts {
			e.deps.Cache.Record(mint, false, now)
			e.logger.Info().
				Str("mint", mint).
				Int("attempts", attempts).
				Str("reason", vetting.ReasonMaxRetries).
				Msg("token rejected")
		} else {
			e.logger.Debug().
				Str("mint", mint).
				Int("attempts", attempts).
				Time("next_retry", now.Add(e.cfg.RetryCoolDown)).
				Msg("token too new, retry scheduled")
		}
	}
}

// evaluate asks the strategy for a decision and applies it to the
// ledger. Ledger rejections leave all state untouched.
func (e *Engine) evaluate(ctx context.Context, tok domain.TokenState, now time.Time) {
	dec := e.deps.Strategy.Decide(tok)
	if dec.Action == domain.ActionHold {
		return
	}

	if dec.Action == domain.ActionBuy && e.deps.Ledger.Position(tok.Mint).Sign() > 0 {
		// One open position per mint.
		return
	}
	if tok.LastPrice <= 0 {
		e.logger.Warn().Str("mint", tok.Mint).Msg("decision without price, skipped")
		return
	}
	price := decimal.NewFromFloat(tok.LastPrice)

	var err error
	var realized decimal.Decimal
	switch dec.Action {
	case domain.ActionBuy:
		err = e.deps.Ledger.ApplyBuy(tok.Mint, dec.Quantity, price)
	case domain.ActionSell:
		entry := e.deps.Ledger.CostBasis(tok.Mint)
		if err = e.deps.Ledger.ApplySell(tok.Mint, dec.Quantity, price); err == nil {
			realized = price.Sub(entry).Mul(dec.Quantity)
		}
	}
	if err != nil {
		if e.deps.Metrics != nil {
			e.deps.Metrics.TradesRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		e.logger.Warn().
			Err(err).
			Str("mint", tok.Mint).
			Str("action", dec.Action.String()).
			Msg("trade rejected")
		return
	}

	record := &domain.TradeRecord{
		Mint:       tok.Mint,
		Symbol:     tok.Symbol,
		Action:     dec.Action,
		Quantity:   dec.Quantity,
		Price:      price,
		Cost:       dec.Quantity.Mul(price),
		StrategyID: e.deps.Strategy.ID(),
		ExecutedAt: now,
	}
	if e.deps.Metrics != nil {
		e.deps.Metrics.TradesExecuted.WithLabelValues(dec.Action.String()).Inc()
	}
	entry := e.logger.Info().
		Str("mint", tok.Mint).
		Str("symbol", tok.Symbol).
		Str("action", dec.Action.String()).
		Str("quantity", dec.Quantity.String()).
		Str("price", price.String()).
		Str("balance", e.deps.Ledger.Balance().String())
	if dec.Action == domain.ActionSell {
		entry = entry.Str("realized_pnl", realized.String())
	}
	entry.Msg("trade executed")

	if err := e.deps.TradeLog.Append(ctx, record); err != nil {
		e.logger.Warn().Err(err).Str("mint", tok.Mint).Msg("trade log append failed")
	}
}

func (e *Engine) reportStats(now time.Time) {
	prices := make(map[string]decimal.Decimal)
	for mint, p := range e.deps.Market.Prices() {
		prices[mint] = decimal.NewFromFloat(p)
	}
	snap := e.deps.Ledger.Snapshot(prices)

	if e.deps.Metrics != nil {
		e.deps.Metrics.DecisionPasses.Inc()
		bal, _ := snap.Balance.Float64()
		held, _ := snap.HoldingsValue.Float64()
		e.deps.Metrics.LedgerBalanceSol.Set(bal)
		e.deps.Metrics.HoldingsValueSol.Set(held)
		e.deps.Metrics.TrackedTokens.Set(float64(e.deps.Market.Len()))
	}

	e.logger.Info().
		Int("tracked_tokens", e.deps.Market.Len()).
		Int("cached_checks", e.deps.Cache.Len()).
		Int("open_positions", len(snap.Positions)).
		Str("balance_sol", snap.Balance.String()).
		Str("holdings_sol", snap.HoldingsValue.String()).
		Str("equity_sol", snap.Balance.Add(snap.HoldingsValue).String()).
		Time("as_of", now).
		Msg("pass complete")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ledger.ErrInsufficientPosition):
		return "insufficient_position"
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "other"
	}
}
