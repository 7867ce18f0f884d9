// Package cache stores search results between builds.
//
// [Cache] is implemented by [Valkey] here and by the sqlite search cache in the repositories package.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-key expiry.
//
// Get returns nil, nil for a missing or expired key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a non-positive expiration keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
	Health(ctx context.Context) error
}

// Backend names accepted by the cache.backend setting.
const (
	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendValkey = "valkey"
)

// CacheError wraps a failed cache operation.
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return "cache " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
