package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// KeyPrefix namespaces hashed keys so the on-disk layout can be versioned
const KeyPrefix = "moodlebank:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Lister is implemented by caches that can enumerate their keys
type Lister interface {
	Keys() ([]string, error)
}

// Key hashes an arbitrary string into a cache key
func Key(raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return KeyPrefix + hex.EncodeToString(hash[:])
}
