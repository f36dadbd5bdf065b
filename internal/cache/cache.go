package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores embedding vectors keyed by (model, text) hashes, so that
// re-embedding identical input is free and re-ingestion stays idempotent
// even across process restarts (disk layer).
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, embedding []float32, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from the embedding model and input text.
// The version prefix invalidates everything if the key scheme changes.
func Key(embeddingModel, text string) string {
	hash := sha256.Sum256([]byte(embeddingModel + "\x00" + text))
	return "veracity:v1:" + hex.EncodeToString(hash[:])
}
