package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentora/backend/internal/domain/returns"
)

// CachedTransactionLookup decorates a TransactionLookup with a snapshot
// cache. Original transactions are immutable, so a hit can be served without
// touching the database. ReturnedQuantities changes with every persisted
// return and is always delegated.
type CachedTransactionLookup struct {
	inner  returns.TransactionLookup
	store  SnapshotStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTransactionLookup wraps a lookup with snapshot caching
func NewCachedTransactionLookup(inner returns.TransactionLookup, store SnapshotStore, ttl time.Duration, logger *zap.Logger) *CachedTransactionLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTransactionLookup{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func snapshotKey(tenantID, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", tenantID, id)
}

// FindByID serves the original transaction from cache when possible
func (l *CachedTransactionLookup) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.OriginalTransaction, error) {
	key := snapshotKey(tenantID, id)

	raw, err := l.store.Get(ctx, key)
	if err == nil {
		var cached returns.OriginalTransaction
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
		// Corrupt entry, drop it and fall through to the database
		if delErr := l.store.Delete(ctx, key); delErr != nil {
			l.logger.Warn("failed to evict corrupt snapshot", zap.String("key", key), zap.Error(delErr))
		}
	} else if !errors.Is(err, ErrSnapshotMiss) {
		// Cache trouble must never fail the lookup
		l.logger.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
	}

	tx, err := l.inner.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(tx); jsonErr == nil {
		if setErr := l.store.Set(ctx, key, raw, l.ttl); setErr != nil {
			l.logger.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}

	return tx, nil
}

// ReturnedQuantities always hits the database, the sums move with every return
func (l *CachedTransactionLookup) ReturnedQuantities(ctx context.Context, tenantID, transactionID uuid.UUID) (returns.ReturnedQuantities, error) {
	return l.inner.ReturnedQuantities(ctx, tenantID, transactionID)
}

// Ensure CachedTransactionLookup implements TransactionLookup
var _ returns.TransactionLookup = (*CachedTransactionLookup)(nil)
