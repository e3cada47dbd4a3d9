package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the requested key does not exist in the cache.
// Use errors.Is() to check for it in calling code.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for the read-through cache used by the
// analytics and external services. Values are opaque byte slices; callers
// are responsible for serialization.
type Cache interface {
	// Get returns the cached value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern (e.g. "analytics:*").
	// Returns the number of keys deleted.
	DeletePattern(ctx context.Context, pattern string) (int64, error)

	// Stats returns cache health and usage statistics.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// Stats describes cache health and usage.
type Stats struct {
	Status           string  `json:"status"`
	UsedMemory       string  `json:"used_memory,omitempty"`
	TotalKeys        int64   `json:"total_keys"`
	ConnectedClients int64   `json:"connected_clients"`
	UptimeSeconds    int64   `json:"uptime_seconds"`
	HitRate          float64 `json:"hit_rate"`
	Message          string  `json:"message,omitempty"`
}

// Noop is a Cache that stores nothing. It is used when no Redis address
// is configured so that callers degrade to computing results directly.
type Noop struct{}

// NewNoop creates a no-op cache
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (n *Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (n *Noop) Delete(ctx context.Context, key string) error {
	return nil
}

func (n *Noop) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return 0, nil
}

func (n *Noop) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{
		Status:  "unavailable",
		Message: "cache not configured",
	}, nil
}

func (n *Noop) Close() error {
	return nil
}
