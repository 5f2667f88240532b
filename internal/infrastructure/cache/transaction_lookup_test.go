package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentora/backend/internal/domain/returns"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.OriginalTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.OriginalTransaction), args.Error(1)
}

func (m *mockLookup) ReturnedQuantities(ctx context.Context, tenantID, transactionID uuid.UUID) (returns.ReturnedQuantities, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(returns.ReturnedQuantities), args.Error(1)
}

func sampleOriginal(tenantID uuid.UUID) *returns.OriginalTransaction {
	lineID := uuid.New()
	txID := uuid.New()
	return &returns.OriginalTransaction{
		ID:                txID,
		TenantID:          tenantID,
		TransactionNumber: "SO-2026-00042",
		Type:              returns.ReturnTypeSale,
		TransactionDate:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		TotalAmount:       decimal.RequireFromString("150.00"),
		Lines: []returns.OriginalTransactionLine{
			{
				ID:            lineID,
				TransactionID: txID,
				ItemID:        uuid.New(),
				ItemName:      "Cordless Drill",
				ItemSKU:       "DRL-100",
				Quantity:      decimal.NewFromInt(3),
				UnitPrice:     decimal.RequireFromString("50.00"),
			},
		},
	}
}

func TestCachedTransactionLookup_FindByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("caches after first load", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		original := sampleOriginal(tenantID)
		inner := new(mockLookup)
		inner.On("FindByID", ctx, tenantID, original.ID).Return(original, nil).Once()

		lookup := NewCachedTransactionLookup(inner, store, time.Minute, zap.NewNop())

		first, err := lookup.FindByID(ctx, tenantID, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.TransactionNumber, first.TransactionNumber)

		// Second call must be served from cache; mock allows one call only
		second, err := lookup.FindByID(ctx, tenantID, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.TransactionNumber, second.TransactionNumber)
		require.Len(t, second.Lines, 1)
		assert.Equal(t, "DRL-100", second.Lines[0].ItemSKU)
		assert.True(t, second.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))

		inner.AssertExpectations(t)
	})

	t.Run("propagates lookup errors without caching", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		id := uuid.New()
		inner := new(mockLookup)
		inner.On("FindByID", ctx, tenantID, id).Return(nil, assert.AnError).Twice()

		lookup := NewCachedTransactionLookup(inner, store, time.Minute, zap.NewNop())

		_, err := lookup.FindByID(ctx, tenantID, id)
		assert.Error(t, err)
		_, err = lookup.FindByID(ctx, tenantID, id)
		assert.Error(t, err)

		inner.AssertExpectations(t)
		assert.Zero(t, store.Len())
	})

	t.Run("recovers from corrupt cache entry", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		original := sampleOriginal(tenantID)
		require.NoError(t, store.Set(ctx, snapshotKey(tenantID, original.ID), []byte("{not json"), time.Minute))

		inner := new(mockLookup)
		inner.On("FindByID", ctx, tenantID, original.ID).Return(original, nil).Once()

		lookup := NewCachedTransactionLookup(inner, store, time.Minute, zap.NewNop())

		got, err := lookup.FindByID(ctx, tenantID, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.ID, got.ID)

		inner.AssertExpectations(t)
	})
}

func TestCachedTransactionLookup_ReturnedQuantities(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	txID := uuid.New()
	lineID := uuid.New()

	store := NewInMemorySnapshotStore()
	defer store.Close()

	sums := returns.ReturnedQuantities{lineID: decimal.NewFromInt(2)}
	inner := new(mockLookup)
	// Sums are never cached, every call goes through
	inner.On("ReturnedQuantities", ctx, tenantID, txID).Return(sums, nil).Twice()

	lookup := NewCachedTransactionLookup(inner, store, time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		got, err := lookup.ReturnedQuantities(ctx, tenantID, txID)
		require.NoError(t, err)
		assert.True(t, got[lineID].Equal(decimal.NewFromInt(2)))
	}

	inner.AssertExpectations(t)
}

func TestInMemorySnapshotStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get returns copy", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "k", []byte("payload"), time.Minute))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)

		// Mutating the returned slice must not affect the cached value
		got[0] = 'X'
		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), again)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrSnapshotMiss)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrSnapshotMiss)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		store := NewInMemorySnapshotStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
		require.NoError(t, store.Delete(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrSnapshotMiss)
	})
}
