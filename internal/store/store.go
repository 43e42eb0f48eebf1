// Package store provides an ephemeral key-value store abstraction with
// in-memory and Redis backends. It backs transfer proposals, activity
// throttles, and other short-lived coordination state.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found in the store.
var ErrNotFound = errors.New("store: key not found")

// Store is the interface for the ephemeral key-value store.
type Store interface {
	// Set stores a key-value pair, with an optional TTL (0 for no expiry).
	Set(key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key. Returns ErrNotFound if missing or expired.
	Get(key string) ([]byte, error)

	// Delete removes a key.
	Delete(key string) error

	// Exists checks whether a key exists and is not expired.
	Exists(key string) (bool, error)

	// SetNX sets a key only if it does not already exist. Returns true when
	// the value was set.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)

	// HIncrBy atomically increments a hash field and returns the new value.
	HIncrBy(key, field string, incr int64) (int64, error)

	// HGetAll returns all fields of a hash.
	HGetAll(key string) (map[string]string, error)

	// Close releases resources held by the store.
	Close() error
}
