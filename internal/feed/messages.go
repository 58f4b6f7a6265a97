package feed

import "encoding/json"

// Wire event type names used by the stream.
const (
	typeNewToken     = "newToken"
	typeTokenTrade   = "tokenTrade"
	typeAccountTrade = "accountTrade"
	typeLiquidity    = "raydiumLiquidity"
)

// subscribeRequest is one subscription command sent after connect.
type subscribeRequest struct {
	Method string   `json:"method"`
	Keys   []string `json:"keys,omitempty"`
}

// Subscription methods. The engine subscribes to all three streams on
// every (re)connect.
const (
	methodSubscribeNewToken   = "subscribeNewToken"
	methodSubscribeTokenTrade = "subscribeTokenTrade"
	methodSubscribeLiquidity  = "subscribeRaydiumLiquidity"
)

// rawFrame is the superset of fields an inbound frame may carry: a
// generic info/error envelope, a subscription ack, or an event
// envelope selected by Type.
type rawFrame struct {
	// Envelope discriminators
	Type    string           `json:"type"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors"`
	Result  *json.RawMessage `json:"result"`

	// Event fields
	Mint            string  `json:"mint"`
	Address         string  `json:"address"`
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	TraderPublicKey string  `json:"traderPublicKey"`
	TxType          string  `json:"txType"`
	Price           float64 `json:"price"`
	SolAmount       float64 `json:"solAmount"`
	InitialBuy      float64 `json:"initialBuy"`
	MarketCapSol    float64 `json:"marketCapSol"`
	Volume          float64 `json:"volume"`
	Pool            string  `json:"pool"`
	TimestampMs     int64   `json:"timestamp"`
}
