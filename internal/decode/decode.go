// Package decode turns raw transaction records into normalized trades.
// One decoder serves one venue; the registry routes classified
// transactions to the right decoder.
package decode

import (
	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/solana"
)

// Decoder converts raw transactions of a single venue into normalized
// trades. A record that cannot be decoded is omitted, never fatal: Decode
// returns only what it understood.
type Decoder interface {
	Decode(details []*solana.TransactionDetail) []*domain.NormalizedTrade
}

// Registry maps venues to their decoders.
type Registry struct {
	decoders map[domain.Venue]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[domain.Venue]Decoder)}
}

// Register installs the decoder for a venue, replacing any previous one.
func (r *Registry) Register(venue domain.Venue, d Decoder) {
	r.decoders[venue] = d
}

// Decoder returns the decoder registered for the venue, or nil.
func (r *Registry) Decoder(venue domain.Venue) Decoder {
	return r.decoders[venue]
}

// Decode routes the details to the venue's decoder. Venues without a
// registered decoder yield no trades.
func (r *Registry) Decode(venue domain.Venue, details []*solana.TransactionDetail) []*domain.NormalizedTrade {
	d := r.decoders[venue]
	if d == nil {
		return nil
	}
	return d.Decode(details)
}
