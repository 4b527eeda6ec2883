// Package cache provides the TTL key-value contract the report pipeline
// stores job records and rendered artifacts in.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store with per-key expiry. Get returns
// domain.ErrNotFound for keys that are absent or past their TTL; callers
// must branch on it rather than treat it as a failure.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
