package solana

import "errors"

// RPC client errors.
var (
	// ErrRateLimited is returned when the node answers HTTP 429. It is the
	// only error class the client retries.
	ErrRateLimited = errors.New("rate limited (429)")

	// ErrRetriesExhausted is returned after the retry ceiling is reached
	// while the node keeps rate limiting.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
