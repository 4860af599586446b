// Package cache memoizes rendered QR output outside the render pipeline.
//
// Keys are hashes of whatever parts the caller passes. Callers pass the
// canonical form of a render request so equivalent requests share an entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores rendered bytes by key.
type Cache interface {
	// Get returns the cached data and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builds a cache key of the form prefix:sha256(json(parts)). Parts that
// cannot be marshalled (NaN floats, channels) yield an error, never a key.
func Key(prefix string, parts ...any) (string, error) {
	data, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("build cache key: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:])), nil
}
