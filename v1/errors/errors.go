package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout          = errors.New("timeout")
	ErrConnectionClosed = errors.New("connection closed")

	// ErrInvalidConfig is returned when a cache is constructed with
	// unusable parameters. The more specific errors below wrap it.
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrInvalidCapacity   = fmt.Errorf("%w: capacity must be greater than zero", ErrInvalidConfig)
	ErrInvalidTTL        = fmt.Errorf("%w: ttl must be greater than zero", ErrInvalidConfig)
	ErrInvalidShardCount = fmt.Errorf("%w: shard count must be greater than zero", ErrInvalidConfig)
)
