// Package cache provides the layered lookup cache for reference metadata
// and fetched full text. Lookups are expensive (external scholarly APIs,
// PDF downloads) and stable for days, so results live in memory for the
// session and on disk across runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage contract shared by the memory, disk and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a lookup subject (a DOI, a reference
// entry, a PDF URL). The subject is hashed so keys are filesystem-safe.
func Key(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return "papercheck:v1:" + hex.EncodeToString(sum[:])
}
