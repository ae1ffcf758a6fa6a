package decode

import (
	"encoding/json"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/solana"
)

// BalanceDeltaDecoder derives trades from pre/post token balance deltas of
// the tracked mint. It is venue-agnostic: whatever instruction path the
// venue took, the owner whose balance of the mint grew bought, and the
// owner whose balance shrank sold. It serves as the decoder for every
// classified venue.
type BalanceDeltaDecoder struct {
	mint    string
	venue   domain.Venue
	ownerOK func(string) bool
}

// BalanceDeltaOption configures a BalanceDeltaDecoder.
type BalanceDeltaOption func(*BalanceDeltaDecoder)

// WithOwnerFilter restricts decoded trades to owners the predicate accepts.
// A swap changes the pool authority's balance alongside the wallet's;
// wiring solana.IsOnCurve here drops the program-derived side so only
// wallet owners reach aggregation.
func WithOwnerFilter(ok func(string) bool) BalanceDeltaOption {
	return func(d *BalanceDeltaDecoder) { d.ownerOK = ok }
}

// NewBalanceDeltaDecoder creates a decoder for the tracked mint, tagging
// produced trades with the given venue.
func NewBalanceDeltaDecoder(mint string, venue domain.Venue, opts ...BalanceDeltaOption) *BalanceDeltaDecoder {
	d := &BalanceDeltaDecoder{mint: mint, venue: venue}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type rawTokenBalance struct {
	Mint          string `json:"mint"`
	Owner         string `json:"owner"`
	UITokenAmount struct {
		UIAmount *float64 `json:"uiAmount"`
	} `json:"uiTokenAmount"`
}

type rawBalanceMeta struct {
	Meta struct {
		PreTokenBalances  []rawTokenBalance `json:"preTokenBalances"`
		PostTokenBalances []rawTokenBalance `json:"postTokenBalances"`
	} `json:"meta"`
}

// Decode produces one trade per owner whose tracked-mint balance changed.
// Records without usable balance metadata are skipped.
func (d *BalanceDeltaDecoder) Decode(details []*solana.TransactionDetail) []*domain.NormalizedTrade {
	var trades []*domain.NormalizedTrade
	for _, detail := range details {
		if detail == nil || len(detail.Raw) == 0 {
			continue
		}
		var raw rawBalanceMeta
		if err := json.Unmarshal(detail.Raw, &raw); err != nil {
			continue
		}
		for owner, delta := range d.ownerDeltas(raw) {
			if delta == 0 {
				continue
			}
			if d.ownerOK != nil && !d.ownerOK(owner) {
				continue
			}
			trade := &domain.NormalizedTrade{
				Owner:     owner,
				Venue:     d.venue,
				Signature: detail.Signature,
			}
			if detail.BlockTime != nil {
				trade.BlockTime = *detail.BlockTime
			}
			if delta > 0 {
				trade.Action = domain.ActionBuy
				trade.OutputAmount = delta
			} else {
				trade.Action = domain.ActionSell
				trade.InputAmount = -delta
			}
			trades = append(trades, trade)
		}
	}
	return trades
}

// ownerDeltas sums the tracked-mint balance change per owner across the
// transaction's token accounts.
func (d *BalanceDeltaDecoder) ownerDeltas(raw rawBalanceMeta) map[string]float64 {
	deltas := make(map[string]float64)
	for _, tb := range raw.Meta.PreTokenBalances {
		if tb.Mint != d.mint || tb.Owner == "" || tb.UITokenAmount.UIAmount == nil {
			continue
		}
		deltas[tb.Owner] -= *tb.UITokenAmount.UIAmount
	}
	for _, tb := range raw.Meta.PostTokenBalances {
		if tb.Mint != d.mint || tb.Owner == "" || tb.UITokenAmount.UIAmount == nil {
			continue
		}
		deltas[tb.Owner] += *tb.UITokenAmount.UIAmount
	}
	return deltas
}
