// Package cache stores serialized analysis results keyed by a content hash.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Store is a byte-oriented key/value cache
type Store interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value using the store's configured TTL
	Set(ctx context.Context, key string, value []byte) error

	// Ping checks that the backing service is reachable
	Ping(ctx context.Context) error

	Close() error
}

// Key builds a stable cache key from the given parts
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, ":") + ":" + key
}
