package domain

// TokenHolding is one owner's balance of one mint, enriched with a market
// price once the backfill pass has run. Price and TotalPrice stay nil until
// a quote is available; TotalPrice = Amount * Price whenever both are known.
type TokenHolding struct {
	Mint       string   `json:"mint"`
	Owner      string   `json:"owner"`
	Amount     float64  `json:"amount"`
	Price      *float64 `json:"price"`
	TotalPrice *float64 `json:"TotalPrice"`
}

// RecomputeTotal refreshes TotalPrice from the current Amount/Price pair.
// A holding without a price keeps its previous TotalPrice.
func (h *TokenHolding) RecomputeTotal() {
	if h.Price == nil {
		return
	}
	total := h.Amount * *h.Price
	h.TotalPrice = &total
}

// OwnerPortfolio is the persisted per-owner ledger entry. Summary fields
// come first so the JSON artifact leads with them on every write.
//
// CurrentAmount accumulates additively across runs: re-running enrichment
// adds the newly observed mandatory-mint total instead of replacing it.
type OwnerPortfolio struct {
	Owner           string          `json:"owner"`
	CurrentAmount   float64         `json:"CurrentAmount"`
	SOLBalance      float64         `json:"SOLbalance"`
	TotalSOLBalance float64         `json:"TotalSOLBalance"`
	TotalStables    float64         `json:"TotalStables"`
	TotalSPL        float64         `json:"TotalSPL"`
	Accounts        []*TokenHolding `json:"accounts"`

	// Stats carried over from aggregation for inspection.
	Stats *OwnerStats `json:"stats,omitempty"`
}

// RecomputeBalances refreshes the derived summary fields from Accounts:
// TotalSOLBalance as native balance plus any wrapped-SOL holding, and
// TotalStables as the sum of stablecoin holdings.
func (p *OwnerPortfolio) RecomputeBalances() {
	wrapped := 0.0
	stables := 0.0
	for _, h := range p.Accounts {
		if h.Mint == WSOLMint {
			wrapped += h.Amount
		}
		if StablecoinMints[h.Mint] {
			stables += h.Amount
		}
	}
	p.TotalSOLBalance = p.SOLBalance + wrapped
	p.TotalStables = stables
}

// RecomputeTotalSPL refreshes TotalSPL as the sum of priced holdings
// excluding the mandatory mints.
func (p *OwnerPortfolio) RecomputeTotalSPL(mandatory map[string]bool) {
	total := 0.0
	for _, h := range p.Accounts {
		if h.TotalPrice == nil || mandatory[h.Mint] {
			continue
		}
		total += *h.TotalPrice
	}
	p.TotalSPL = total
}
