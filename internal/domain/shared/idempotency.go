package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers caller-supplied keys so a retried request is
// applied at most once
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget releases key so a failed operation can be attempted again
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks reuse. Default: 24 hours
	TTL time.Duration
	// Enabled determines whether keys are checked at all. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
