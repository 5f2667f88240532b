package cache

import (
	"context"
	"errors"
	"time"
)

// ErrSnapshotMiss is returned when no snapshot exists for the requested key.
var ErrSnapshotMiss = errors.New("snapshot not found in cache")

// SnapshotStore holds serialized original-transaction snapshots. Original
// transactions are immutable once recorded, so cached copies never go stale;
// the TTL only bounds memory.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
