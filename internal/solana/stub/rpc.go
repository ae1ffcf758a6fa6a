package stub

import (
	"context"
	"errors"
	"sync"

	"solana-whale-scan/internal/solana"
)

// ErrUnavailable is returned for entries registered as failing.
var ErrUnavailable = errors.New("unavailable")

// RPCClient implements solana.RPCClient for testing. Signatures are served
// page by page honoring the before cursor; FailSignatures marks signatures
// whose detail fetch always errors.
type RPCClient struct {
	mu sync.Mutex

	Signatures     map[string][]solana.SignatureInfo
	Transactions   map[string]*solana.TransactionDetail
	TokenAccounts  map[string][]solana.TokenAccount
	Balances       map[string]float64
	FailSignatures map[string]bool
	FailOwners     map[string]bool

	// SignatureCalls counts getSignaturesForAddress invocations.
	SignatureCalls int
	// DetailCalls counts getTransaction invocations per signature.
	DetailCalls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Signatures:     make(map[string][]solana.SignatureInfo),
		Transactions:   make(map[string]*solana.TransactionDetail),
		TokenAccounts:  make(map[string][]solana.TokenAccount),
		Balances:       make(map[string]float64),
		FailSignatures: make(map[string]bool),
		FailOwners:     make(map[string]bool),
		DetailCalls:    make(map[string]int),
	}
}

// GetSignaturesForAddress serves signature pages from the stub store,
// honoring the before cursor and limit.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.mu.Lock()
	c.SignatureCalls++
	c.mu.Unlock()

	sigs := c.Signatures[address]

	start := 0
	if opts != nil && opts.Before != "" {
		for i, s := range sigs {
			if s.Signature == opts.Before {
				start = i + 1
				break
			}
		}
	}

	if start >= len(sigs) {
		return nil, nil
	}
	page := sigs[start:]

	if opts != nil && opts.Limit > 0 && opts.Limit < len(page) {
		page = page[:opts.Limit]
	}
	return page, nil
}

// GetTransaction retrieves a transaction detail from the stub store.
// Unknown signatures resolve to nil, failing ones to an error.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.TransactionDetail, error) {
	c.mu.Lock()
	c.DetailCalls[signature]++
	c.mu.Unlock()

	if c.FailSignatures[signature] {
		return nil, ErrUnavailable
	}
	return c.Transactions[signature], nil
}

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner string) ([]solana.TokenAccount, error) {
	if c.FailOwners[owner] {
		return nil, ErrUnavailable
	}
	return c.TokenAccounts[owner], nil
}

// GetBalance retrieves a native balance from the stub store.
func (c *RPCClient) GetBalance(_ context.Context, owner string) (float64, error) {
	if c.FailOwners[owner] {
		return 0, ErrUnavailable
	}
	return c.Balances[owner], nil
}
