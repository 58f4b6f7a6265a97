// Package ledger implements the virtual portfolio: a SOL balance plus
// per-token positions, mutated only through atomic buy/sell operations.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger holds the paper-trading balance and positions. All mutating
// operations are serialized; readers observe either the state before or
// after a buy/sell, never a partial application.
type Ledger struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	positions map[string]decimal.Decimal // mint -> quantity, entries always > 0
	costBasis map[string]decimal.Decimal // mint -> last purchase price
}

// Snapshot is a consistent point-in-time read of the ledger.
type Snapshot struct {
	Balance       decimal.Decimal
	Positions     map[string]decimal.Decimal
	CostBasis     map[string]decimal.Decimal
	HoldingsValue decimal.Decimal // sum of quantity * current known price
}

// New creates a ledger with the given starting balance.
func New(startingBalance decimal.Decimal) *Ledger {
	return &Ledger{
		balance:   startingBalance,
		positions: make(map[string]decimal.Decimal),
		costBasis: make(map[string]decimal.Decimal),
	}
}

// ApplyBuy debits quantity*price from the balance and credits the
// position. Returns ErrInsufficientFunds without mutation when the
// balance cannot cover the cost.
func (l *Ledger) ApplyBuy(mint string, quantity, price decimal.Decimal) error {
	if quantity.Sign() <= 0 || price.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := quantity.Mul(price)
	if l.balance.LessThan(cost) {
		return ErrInsufficientFunds
	}

	l.balance = l.balance.Sub(cost)
	l.positions[mint] = l.positions[mint].Add(quantity)
	l.costBasis[mint] = price
	return nil
}

// ApplySell credits quantity*price to the balance and debits the
// position. A missing position counts as zero. Returns
// ErrInsufficientPosition without mutation when the held quantity is
// smaller than the requested one. A position sold down to zero is
// removed together with its cost basis.
func (l *Ledger) ApplySell(mint string, quantity, price decimal.Decimal) error {
	if quantity.Sign() <= 0 || price.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.positions[mint]
	if held.LessThan(quantity) {
		return ErrInsufficientPosition
	}

	l.balance = l.balance.Add(quantity.Mul(price))

	remaining := held.Sub(quantity)
	if remaining.Sign() <= 0 {
		delete(l.positions, mint)
		delete(l.costBasis, mint)
	} else {
		l.positions[mint] = remaining
	}
	return nil
}

// CostBasis returns the entry price for a mint, zero when absent.
func (l *Ledger) CostBasis(mint string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.costBasis[mint]
}

// Position returns the held quantity for a mint, zero when absent.
func (l *Ledger) Position(mint string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions[mint]
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Snapshot returns a consistent copy of balance and positions. Holdings
// are valued with the supplied last-known prices; tokens without a
// price entry contribute nothing.
func (l *Ledger) Snapshot(prices map[string]decimal.Decimal) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Balance:       l.balance,
		Positions:     make(map[string]decimal.Decimal, len(l.positions)),
		CostBasis:     make(map[string]decimal.Decimal, len(l.costBasis)),
		HoldingsValue: decimal.Zero,
	}
	for mint, qty := range l.positions {
		snap.Positions[mint] = qty
		if price, ok := prices[mint]; ok {
			snap.HoldingsValue = snap.HoldingsValue.Add(qty.Mul(price))
		}
	}
	for mint, price := range l.costBasis {
		snap.CostBasis[mint] = price
	}
	return snap
}
