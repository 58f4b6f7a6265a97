package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"solana-paper-trader/internal/analysis"
	"solana-paper-trader/internal/config"
	"solana-paper-trader/internal/engine"
	"solana-paper-trader/internal/feed"
	"solana-paper-trader/internal/ledger"
	"solana-paper-trader/internal/market"
	"solana-paper-trader/internal/observability"
	"solana-paper-trader/internal/storage"
	"solana-paper-trader/internal/storage/clickhouse"
	"solana-paper-trader/internal/storage/file"
	"solana-paper-trader/internal/storage/memory"
	pgstore "solana-paper-trader/internal/storage/postgres"
	"solana-paper-trader/internal/strategy"
	"solana-paper-trader/internal/vetting"
)

func main() {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Debug)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()

		select {
		case sig := <-sigCh:
			logger.Error().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error().Msg("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, cfg, logger)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("trader exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("trader stopped")
}

func setupLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	metrics := observability.NewMetrics("paper_trader", nil)

	// Persistence: Postgres when a DSN is given, local file otherwise.
	var (
		analysisStore storage.AnalysisStore
		tradeLog      storage.TradeLogStore
	)
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		analysisStore = pgstore.NewAnalysisStore(pool)
		tradeLog = pgstore.NewTradeLogStore(pool)
		logger.Info().Msg("using postgres persistence")
	} else {
		analysisStore = file.NewAnalysisStore(cfg.CacheFile)
		tradeLog = memory.NewTradeLogStore()
		logger.Info().Str("cache_file", cfg.CacheFile).Msg("using file persistence")
	}

	var tickStore storage.TickStore
	if cfg.ClickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
		defer conn.Close()
		ticks := clickhouse.NewTickStore(conn)
		if err := ticks.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}
		tickStore = ticks
		logger.Info().Msg("tick sink enabled")
	}

	cache := analysis.NewCache(analysisStore, logger)
	cache.Restore(ctx)

	strat, err := strategy.FromName(cfg.Strategy, strategy.Params{
		MinMarketCapSol: cfg.MinMarketCapSol,
		ShortWindow:     cfg.ShortWindow,
		LongWindow:      cfg.LongWindow,
		PositionSol:     cfg.PositionSizeSol,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	checker := vetting.NewChecker(vetting.Config{
		Endpoint:    cfg.QuoteEndpoint,
		Wallet:      cfg.WalletAddress,
		InputSol:    cfg.QuoteInputSol,
		SlippageBps: cfg.SlippageBps,
		Timeout:     10 * time.Second,
	}, nil, logger)

	feedCfg := feed.DefaultClientConfig()
	feedCfg.OnFrameDropped = metrics.FramesDropped.Inc
	feedCfg.OnReconnect = metrics.FeedReconnects.Inc
	client, err := feed.NewClient(ctx, feedURL(cfg.FeedEndpoint, cfg.APIKey), &feedCfg, logger)
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	defer client.Close()

	eng := engine.New(engine.Config{
		CacheTTL:         cfg.CacheTTL,
		MaxCheckAttempts: cfg.MaxCheckAttempts,
		RetryCoolDown:    cfg.RetryCoolDown,
		DecisionInterval: cfg.DecisionInterval,
		RetentionWindow:  cfg.RetentionWindow,
	}, engine.Deps{
		Events:   client.Events(),
		Market:   market.NewStore(logger),
		Cache:    cache,
		Checker:  checker,
		Strategy: strat,
		Ledger:   ledger.New(cfg.StartingBalanceSol),
		TradeLog: tradeLog,
		Ticks:    tickStore,
		Metrics:  metrics,
	}, logger)

	return eng.Run(ctx)
}

// feedURL appends the stream API key as a query parameter.
func feedURL(endpoint, apiKey string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("api-key", apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}
