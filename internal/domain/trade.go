package domain

// TradeAction is the direction of a normalized trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// NormalizedTrade is the sole output contract of venue decoders.
// InputAmount is what the owner spent, OutputAmount what they received,
// both in human-readable token units.
type NormalizedTrade struct {
	Owner        string      `json:"owner"`
	Action       TradeAction `json:"action"`
	InputAmount  float64     `json:"inputAmount"`
	OutputAmount float64     `json:"outputAmount"`

	// Provenance, carried for the archive and dump artifacts.
	Venue     Venue  `json:"venue,omitempty"`
	Signature string `json:"signature,omitempty"`
	BlockTime int64  `json:"blockTime,omitempty"`
}

// OwnerStats holds cumulative per-owner trade statistics. The fold is pure
// addition per owner, so trades may be applied in any order.
type OwnerStats struct {
	Owner           string  `json:"owner"`
	TotalBuys       int     `json:"totalBuys"`
	TotalSells      int     `json:"totalSells"`
	TotalBuyAmount  float64 `json:"totalBuyAmount"`
	TotalSellAmount float64 `json:"totalSellAmount"`
	NetTokenAmount  float64 `json:"netTokenAmount"`
}

// Apply folds one trade into the stats. BUY adds the received amount,
// SELL subtracts the spent amount.
func (s *OwnerStats) Apply(t *NormalizedTrade) {
	switch t.Action {
	case ActionBuy:
		s.TotalBuys++
		s.TotalBuyAmount += t.OutputAmount
		s.NetTokenAmount += t.OutputAmount
	case ActionSell:
		s.TotalSells++
		s.TotalSellAmount += t.InputAmount
		s.NetTokenAmount -= t.InputAmount
	}
}
