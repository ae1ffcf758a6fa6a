package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface the pipeline depends on.
type RPCClient interface {
	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTransaction retrieves a transaction by signature (jsonParsed).
	// Returns nil without error when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error)

	// GetTokenAccountsByOwner retrieves all SPL token accounts of an owner.
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]TokenAccount, error)

	// GetBalance retrieves the owner's native balance in SOL.
	GetBalance(ctx context.Context, owner string) (float64, error)
}
