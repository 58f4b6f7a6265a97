package ledger

import "errors"

// Ledger violations. Rejected operations leave the ledger untouched.
var (
	// ErrInsufficientFunds is returned when a buy costs more than the
	// current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientPosition is returned when a sell exceeds the held
	// quantity for the token.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrInvalidAmount is returned for non-positive quantity or price.
	ErrInvalidAmount = errors.New("invalid amount")
)
