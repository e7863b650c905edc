package token

import "errors"

// Sentinel kinds for token errors.
var (
	ErrNotFound       = errors.New("token not found")
	ErrRetryExhausted = errors.New("token retries exhausted")
)
