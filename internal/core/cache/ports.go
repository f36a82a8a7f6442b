package cache

import (
	"context"
	"time"
)

// Cache defines the caching operations interface following hexagonal architecture.
// This is a port that can be implemented by different cache providers.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached value or an error if not found or on failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key sharing the given prefix. Used to
	// invalidate cached paginated lists, where one mutation must flush all
	// pages and filter combinations at once.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// EventBus defines the publish/subscribe operations used by the live
// notification relay. Delivery is at-least-once and unordered; subscribers
// must treat every message as a hint to refetch, never as state.
type EventBus interface {
	// Publish sends a payload to every subscriber of the channel.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe returns a receive channel for messages on the given channel.
	// The returned cancel function stops the subscription and closes the channel.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error, error)
}
