package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// Key namespaces a cache key. Long inputs are hashed so keys stay bounded.
func Key(kind, input string) string {
	if len(input) <= 64 {
		return "paradox:v1:" + kind + ":" + input
	}
	hash := sha256.Sum256([]byte(input))
	return "paradox:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
