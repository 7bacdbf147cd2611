package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const keyPrefix = "caredesk"

// Store is the cache port shared by every caller that opts in to caching.
// Values are opaque byte slices; TTL expiry is enforced by the backing store.
// There is no dependency tracking: write paths must Delete the exact keys
// they stale.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Key builds a namespaced cache key from parts, e.g.
// Key("patient_summary", id) -> "caredesk:patient_summary:<id>".
// Key construction is owned by callers so invalidation responsibilities
// stay explicit per write path.
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// GetJSON reads key and unmarshals the cached value into dest. Returns false
// on a miss. Structured values round-trip through JSON so a hit yields the
// same structure that was stored.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("unmarshal cached value for %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
