// Package stub provides a canned decoder for tests.
package stub

import (
	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/solana"
)

// Decoder implements decode.Decoder by serving pre-registered trades keyed
// by signature. Signatures without an entry decode to nothing, mirroring
// the omit-on-malformed contract.
type Decoder struct {
	Trades map[string][]*domain.NormalizedTrade

	// Calls counts Decode invocations.
	Calls int
}

// NewDecoder creates an empty stub decoder.
func NewDecoder() *Decoder {
	return &Decoder{Trades: make(map[string][]*domain.NormalizedTrade)}
}

// Add registers trades for a signature.
func (d *Decoder) Add(signature string, trades ...*domain.NormalizedTrade) {
	d.Trades[signature] = append(d.Trades[signature], trades...)
}

// Decode returns the registered trades for each detail's signature.
func (d *Decoder) Decode(details []*solana.TransactionDetail) []*domain.NormalizedTrade {
	d.Calls++
	var out []*domain.NormalizedTrade
	for _, detail := range details {
		if detail == nil {
			continue
		}
		out = append(out, d.Trades[detail.Signature]...)
	}
	return out
}
