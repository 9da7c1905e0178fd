package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the shared counter backend for the sliding-window limiter.
// Implementations keep, per key, a set of request timestamps ordered by score
// (score and member are both the timestamp in milliseconds since epoch).
// This allows both distributed (Redis) and in-memory implementations.
type CounterStore interface {
	// RangeByScore returns members with score in [min, max], oldest first.
	RangeByScore(ctx context.Context, key string, min, max int64) ([]string, error)

	// Add inserts a member with the given score.
	Add(ctx context.Context, key string, score int64, member string) error

	// SetExpiry sets or refreshes the TTL on a key so idle keys self-expire.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error

	// Keys returns all keys matching a glob pattern. Used only by cleanup.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// RemoveByScoreRange deletes members with score in [min, max]. Used only by cleanup.
	RemoveByScoreRange(ctx context.Context, key string, min, max int64) error
}
