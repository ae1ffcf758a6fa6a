package solana

import "encoding/json"

// SignatureInfo is one item from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Limit  int    // Maximum number of signatures to return
}

// TransactionMeta contains the metadata fields the pipeline consumes.
type TransactionMeta struct {
	Err         interface{} `json:"err"`
	LogMessages []string    `json:"logMessages"`
}

// TransactionDetail is a provider-shaped transaction record. Meta is parsed
// for classification; Raw carries the complete jsonParsed result so venue
// decoders receive the untouched record.
type TransactionDetail struct {
	Slot      int64            `json:"slot"`
	BlockTime *int64           `json:"blockTime"`
	Signature string           `json:"signature,omitempty"`
	Meta      *TransactionMeta `json:"meta"`
	Raw       json.RawMessage  `json:"-"`
}

// LogMessages returns the transaction's program log output, or nil when
// metadata is absent.
func (d *TransactionDetail) LogMessages() []string {
	if d == nil || d.Meta == nil {
		return nil
	}
	return d.Meta.LogMessages
}

// TokenAccount is one jsonParsed token-holding account of an owner.
type TokenAccount struct {
	Pubkey   string
	Mint     string
	Owner    string
	Amount   float64 // raw amount scaled by decimals
	Decimals int
}
