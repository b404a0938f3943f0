// Package cache keeps the last good copy of fetched sources so the tracker
// can start offline.
package cache

import (
	"context"
	"errors"
)

// DefaultName is the cache name used when none is configured.
// Bump the version suffix to invalidate every previously cached source.
const DefaultName = "ad-tracker-v11"

// Common errors
var (
	ErrNotFound = errors.New("cache entry not found")
	ErrKeyEmpty = errors.New("cache key cannot be empty")
)

// Cache defines the storage used for offline copies of sources
type Cache interface {
	// Put stores a response body under key
	Put(ctx context.Context, key string, value []byte) error

	// Match returns the body stored under key, or ErrNotFound
	Match(ctx context.Context, key string) ([]byte, error)

	// Keys returns every stored key
	Keys(ctx context.Context) ([]string, error)

	// Name identifies the cache and its version
	Name() string

	// Close releases the underlying storage
	Close() error
}
