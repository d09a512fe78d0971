// Package cache provides byte-oriented caching backends for downloaded networks.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON envelope per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for hosts that render many networks
//   - [NullCache]: stores nothing, used by --no-cache and in tests
//
// Keys are produced by a [Keyer] so every component names entries the same way.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
//
// Get reports a miss with (nil, false, nil); expired entries are misses.
// A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
