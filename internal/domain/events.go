package domain

import "time"

// EventKind identifies the concrete type of a feed event.
type EventKind string

// Event kinds delivered by the token stream.
const (
	KindNewToken     EventKind = "NEW_TOKEN"
	KindTokenTrade   EventKind = "TOKEN_TRADE"
	KindAccountTrade EventKind = "ACCOUNT_TRADE"
	KindLiquidity    EventKind = "LIQUIDITY"
)

// Event is the closed union of feed event types. Consumers dispatch with
// a type switch over the four concrete kinds; the feed decoder is the
// only producer, so an unknown wire type never becomes an Event.
type Event interface {
	// Kind returns the event kind tag.
	Kind() EventKind

	// Mint returns the token mint address the event refers to.
	// Empty for events that carry no token reference.
	Mint() string

	// Time returns the event timestamp.
	Time() time.Time
}

// TradeSide is the direction of a token trade.
type TradeSide string

// Trade sides as reported by the stream's txType field.
const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// NewTokenEvent signals a freshly created token.
type NewTokenEvent struct {
	TokenMint     string  // mint address
	Symbol        string  // token symbol
	Name          string  // token name
	InitialBuySol float64 // creator's initial buy in SOL
	MarketCapSol  float64 // reported market cap in SOL
	Timestamp     time.Time
}

func (e NewTokenEvent) Kind() EventKind { return KindNewToken }
func (e NewTokenEvent) Mint() string    { return e.TokenMint }
func (e NewTokenEvent) Time() time.Time { return e.Timestamp }

// TokenTradeEvent is a single trade observed on the all-token stream.
type TokenTradeEvent struct {
	TokenMint    string
	Symbol       string
	Side         TradeSide
	Price        float64 // SOL per token, 0 when the stream omits it
	SolAmount    float64 // trade size in SOL
	MarketCapSol float64
	Timestamp    time.Time
}

func (e TokenTradeEvent) Kind() EventKind { return KindTokenTrade }
func (e TokenTradeEvent) Mint() string    { return e.TokenMint }
func (e TokenTradeEvent) Time() time.Time { return e.Timestamp }

// AccountTradeEvent is a trade by a watched account. It updates
// auxiliary counters only and never feeds the strategy.
type AccountTradeEvent struct {
	Account   string // trader public key
	TokenMint string
	SolAmount float64
	Timestamp time.Time
}

func (e AccountTradeEvent) Kind() EventKind { return KindAccountTrade }
func (e AccountTradeEvent) Mint() string    { return e.TokenMint }
func (e AccountTradeEvent) Time() time.Time { return e.Timestamp }

// LiquidityEvent signals liquidity migrated to a Raydium pool.
type LiquidityEvent struct {
	TokenMint string
	Pool      string // pool address, may be empty
	SolAmount float64
	Timestamp time.Time
}

func (e LiquidityEvent) Kind() EventKind { return KindLiquidity }
func (e LiquidityEvent) Mint() string    { return e.TokenMint }
func (e LiquidityEvent) Time() time.Time { return e.Timestamp }
