package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/solana"
)

// Parse errors. All of them mean "drop this frame", never "drop the
// connection".
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown event type")
	ErrInvalidMint    = errors.New("invalid mint address")
)

// ParseFrame decodes one inbound frame. It returns (event, true, nil)
// for an event frame, (nil, false, nil) for a handled non-event frame
// (info/error envelope or subscription ack), and an error for frames
// that must be dropped.
func ParseFrame(data []byte, now time.Time) (domain.Event, bool, error) {
	var f rawFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	// Non-event envelopes: subscription acks and server notices.
	if f.Type == "" {
		if f.Result != nil || f.Message != "" || len(f.Errors) > 0 {
			return nil, false, nil
		}
		return nil, false, ErrMalformedFrame
	}

	mint := f.Mint
	if mint == "" {
		mint = f.Address
	}
	if !solana.ValidMint(mint) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidMint, mint)
	}

	ts := now
	if f.TimestampMs > 0 {
		ts = time.UnixMilli(f.TimestampMs)
	}

	switch f.Type {
	case typeNewToken:
		return domain.NewTokenEvent{
			TokenMint:     mint,
			Symbol:        f.Symbol,
			Name:          f.Name,
			InitialBuySol: pickVolume(f.InitialBuy, f.SolAmount),
			MarketCapSol:  f.MarketCapSol,
			Timestamp:     ts,
		}, true, nil

	case typeTokenTrade:
		return domain.TokenTradeEvent{
			TokenMint:    mint,
			Symbol:       f.Symbol,
			Side:         tradeSide(f.TxType),
			Price:        f.Price,
			SolAmount:    pickVolume(f.SolAmount, f.Volume),
			MarketCapSol: f.MarketCapSol,
			Timestamp:    ts,
		}, true, nil

	case typeAccountTrade:
		return domain.AccountTradeEvent{
			Account:   f.TraderPublicKey,
			TokenMint: mint,
			SolAmount: pickVolume(f.SolAmount, f.Volume),
			Timestamp: ts,
		}, true, nil

	case typeLiquidity:
		return domain.LiquidityEvent{
			TokenMint: mint,
			Pool:      f.Pool,
			SolAmount: f.SolAmount,
			Timestamp: ts,
		}, true, nil

	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

// pickVolume prefers the first positive value.
func pickVolume(primary, fallback float64) float64 {
	if primary > 0 {
		return primary
	}
	return fallback
}

func tradeSide(txType string) domain.TradeSide {
	if txType == "sell" {
		return domain.SideSell
	}
	return domain.SideBuy
}
