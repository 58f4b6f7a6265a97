// Package solana holds small helpers for Solana address handling.
package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// WSOLMint is the wrapped-SOL mint, used as the reference output asset
// for quote lookups.
const WSOLMint = "So11111111111111111111111111111111111111112"

// ValidMint reports whether s is a plausible mint address: base58 text
// decoding to exactly 32 bytes.
func ValidMint(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// ValidateWallet checks that s is a usable wallet address: 32 base58
// bytes that decode to a point on the ed25519 curve. Program-derived
// addresses are off-curve and rejected.
func ValidateWallet(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode wallet address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("wallet address is %d bytes, want 32", len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("wallet address not on ed25519 curve: %w", err)
	}
	return nil
}
