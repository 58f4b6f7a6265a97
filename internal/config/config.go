// Package config loads process configuration from environment
// variables. Only configuration errors are fatal to the process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"solana-paper-trader/internal/solana"
)

// Config holds all configuration for the trader.
type Config struct {
	// Credentials
	APIKey        string // stream API key
	WalletAddress string // operator wallet, used for quote lookups

	// Endpoints
	FeedEndpoint  string
	QuoteEndpoint string

	// Trading
	StartingBalanceSol decimal.Decimal
	PositionSizeSol    decimal.Decimal
	MinMarketCapSol    float64
	Strategy           string // "marketcap" | "ma-cross"
	ShortWindow        int
	LongWindow         int

	// Vetting
	CacheTTL         time.Duration
	MaxCheckAttempts int
	RetryCoolDown    time.Duration
	QuoteInputSol    float64
	SlippageBps      int

	// Decision loop
	DecisionInterval time.Duration
	RetentionWindow  time.Duration

	// Persistence
	CacheFile     string
	PostgresDSN   string // empty disables the Postgres stores
	ClickhouseDSN string // empty disables the tick sink

	// Observability
	MetricsAddr string
	Debug       bool
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:        os.Getenv("TRADER_API_KEY"),
		WalletAddress: os.Getenv("WALLET_ADDRESS"),

		FeedEndpoint:  getEnv("FEED_WS_URL", "wss://pumpportal.fun/api/data"),
		QuoteEndpoint: getEnv("QUOTE_API_URL", "https://quote-api.jup.ag/v6/quote"),

		StartingBalanceSol: getEnvDecimal("STARTING_BALANCE_SOL", "1.0"),
		PositionSizeSol:    getEnvDecimal("POSITION_SIZE_SOL", "0.1"),
		MinMarketCapSol:    getEnvFloat("MIN_MARKET_CAP_SOL", 30),
		Strategy:           getEnv("STRATEGY", "marketcap"),
		ShortWindow:        getEnvInt("MA_SHORT_WINDOW", 5),
		LongWindow:         getEnvInt("MA_LONG_WINDOW", 20),

		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		MaxCheckAttempts: getEnvInt("MAX_CHECK_ATTEMPTS", 3),
		RetryCoolDown:    getEnvDuration("RETRY_COOL_DOWN", 2*time.Hour),
		QuoteInputSol:    getEnvFloat("QUOTE_INPUT_SOL", 0.1),
		SlippageBps:      getEnvInt("SLIPPAGE_BPS", 50),

		DecisionInterval: getEnvDuration("DECISION_INTERVAL", 30*time.Second),
		RetentionWindow:  getEnvDuration("RETENTION_WINDOW", 24*time.Hour),

		CacheFile:     getEnv("CACHE_FILE", "analysis_cache.json"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		Debug:       getEnvBool("DEBUG", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces the startup invariants. The engine must refuse to
// start on missing credentials or nonsensical trading parameters.
func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TRADER_API_KEY not set")
	}
	if c.WalletAddress == "" {
		return fmt.Errorf("WALLET_ADDRESS not set")
	}
	if err := solana.ValidateWallet(c.WalletAddress); err != nil {
		return fmt.Errorf("WALLET_ADDRESS invalid: %w", err)
	}
	if c.StartingBalanceSol.Sign() <= 0 {
		return fmt.Errorf("STARTING_BALANCE_SOL must be positive")
	}
	if c.PositionSizeSol.Sign() <= 0 {
		return fmt.Errorf("POSITION_SIZE_SOL must be positive")
	}
	if c.PositionSizeSol.GreaterThan(c.StartingBalanceSol) {
		return fmt.Errorf("POSITION_SIZE_SOL exceeds starting balance")
	}
	if c.MaxCheckAttempts <= 0 {
		return fmt.Errorf("MAX_CHECK_ATTEMPTS must be positive")
	}
	if c.DecisionInterval <= 0 {
		return fmt.Errorf("DECISION_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.RequireFromString(fallback)
	}
	return d
}
