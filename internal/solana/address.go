package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that addr is a base58-encoded 32-byte value.
func ValidateAddress(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address must decode to 32 bytes, got %d", len(decoded))
	}
	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
