package domain

import "time"

// TokenState is the rolling market view for a single token.
// One record per mint address, created on the first NewToken or
// TokenTrade event and updated on every subsequent relevant event.
type TokenState struct {
	Mint             string  // unique key
	Symbol           string  // token symbol
	Name             string  // token name, empty when only trades were seen
	LastPrice        float64 // SOL per token from the latest trade
	CumulativeVolume float64 // total observed trade volume in SOL; non-decreasing
	MarketCapSol     float64 // latest reported market cap in SOL
	LastEventAt      time.Time

	// Auxiliary counters. Updated by AccountTrade/Liquidity events,
	// never read by strategies.
	AccountTrades int
	LiquidityAdds int
	LiquiditySol  float64
	RaydiumPool   string
	FirstSeenAt   time.Time
	TradeCount    int
}

// PricePoint is one price observation kept for sample-hungry strategies.
type PricePoint struct {
	Price float64
	At    time.Time
}
