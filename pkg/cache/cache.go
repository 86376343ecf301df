// Package cache stores pipeline results and geocoder lookups.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the API server and [NullCache] when caching is disabled. Keys are
// built by a [Keyer] so every backend agrees on naming; [ScopedKeyer]
// prefixes them per family.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired entries
	// are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes per kind of entry.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLGeocode  = 30 * 24 * time.Hour
	// TTLGeocodeMiss keeps negative lookups shorter so corrected place
	// names are picked up again.
	TTLGeocodeMiss = 24 * time.Hour
)
