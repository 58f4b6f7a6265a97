package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the kind of trade decision a strategy emits.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Decision is a strategy's verdict for one token. Quantity is zero for
// Hold.
type Decision struct {
	Action   Action
	Quantity decimal.Decimal
}

// Hold is the no-op decision.
func Hold() Decision { return Decision{Action: ActionHold} }

// Buy builds a buy decision for the given quantity.
func Buy(qty decimal.Decimal) Decision {
	return Decision{Action: ActionBuy, Quantity: qty}
}

// Sell builds a sell decision for the given quantity.
func Sell(qty decimal.Decimal) Decision {
	return Decision{Action: ActionSell, Quantity: qty}
}

// TradeRecord is one executed paper trade.
type TradeRecord struct {
	Mint       string
	Symbol     string
	Action     Action
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Cost       decimal.Decimal // quantity * price
	StrategyID string
	ExecutedAt time.Time
}

// TradeTick is one trade observation written to the tick sink for
// offline analysis.
type TradeTick struct {
	Mint         string
	Symbol       string
	Side         TradeSide
	Price        float64
	SolAmount    float64
	MarketCapSol float64
	Timestamp    time.Time
}
