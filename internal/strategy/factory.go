package strategy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Strategy names accepted by FromName.
const (
	NameMarketCap = "marketcap"
	NameMACross   = "ma-cross"
)

// ErrUnknownStrategy is returned for an unrecognized strategy name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Params carries the configurable strategy knobs.
type Params struct {
	MinMarketCapSol float64
	ShortWindow     int
	LongWindow      int
	PositionSol     decimal.Decimal
}

// FromName creates the named strategy.
func FromName(name string, p Params) (Strategy, error) {
	switch name {
	case NameMarketCap:
		return NewMarketCapStrategy(p.MinMarketCapSol, p.PositionSol), nil
	case NameMACross:
		return NewMACrossStrategy(p.ShortWindow, p.LongWindow, p.PositionSol), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
