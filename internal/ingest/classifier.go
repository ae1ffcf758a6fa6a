// Package ingest retrieves and classifies the tracked asset's history:
// signature pagination, batched detail resolution, and venue classification.
package ingest

import (
	"strings"

	"solana-whale-scan/internal/domain"
)

// Venue program IDs looked for in transaction log output.
const (
	// JupiterV6 is the Jupiter aggregator v6 program ID.
	JupiterV6 = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// PumpFun is the pump.fun program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

// venueMarkers pairs each venue with its log marker in priority order.
// The first marker found wins, so a Jupiter route through Raydium
// classifies as Jupiter.
var venueMarkers = []struct {
	venue  domain.Venue
	marker string
}{
	{domain.VenueJupiter, JupiterV6},
	{domain.VenueRaydium, RaydiumAMMV4},
	{domain.VenuePumpFun, PumpFun},
}

// Classify assigns a venue based on substring presence of known program IDs
// in the log output. Detection is intentionally coarse; semantic decoding is
// the per-venue decoder's job.
func Classify(logMessages []string) domain.Venue {
	for _, vm := range venueMarkers {
		for _, msg := range logMessages {
			if strings.Contains(msg, vm.marker) {
				return vm.venue
			}
		}
	}
	return domain.VenueUnknown
}
