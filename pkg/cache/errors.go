package cache

import "errors"

// Sentinel errors shared by all backends. Wrapped causes are joined in,
// so errors.Is works alongside the original driver error.
var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrClosed    = errors.New("cache: closed")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
