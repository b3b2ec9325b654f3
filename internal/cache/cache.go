// Package cache stores fetched pages so repeated harvest runs do not
// re-hit the upstream services for content they already saw.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the page-cache interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "salonscout:v1:" + hex.EncodeToString(sum[:])
}
