package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(t *testing.T) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	t.Run("starts with empty buckets", func(t *testing.T) {
		item := testItem(t)
		assert.True(t, item.OnHandQuantity().IsZero())
		assert.True(t, item.RentableQuantity().IsZero())
	})

	t.Run("rejects empty location", func(t *testing.T) {
		_, err := NewInventoryItem(uuid.New(), uuid.Nil, uuid.New())
		assert.Error(t, err)
	})
}

func TestInventoryItemApplyDelta(t *testing.T) {
	t.Run("increments a status bucket", func(t *testing.T) {
		item := testItem(t)

		require.NoError(t, item.ApplyDelta(UnitStatusAvailable, decimal.NewFromInt(5)))
		assert.Equal(t, "5", item.QuantityIn(UnitStatusAvailable).String())
		assert.Equal(t, "5", item.OnHandQuantity().String())
	})

	t.Run("rejects going below zero", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusAvailable, decimal.NewFromInt(2)))

		err := item.ApplyDelta(UnitStatusAvailable, decimal.NewFromInt(-3))
		assert.Error(t, err)
		assert.Equal(t, "2", item.QuantityIn(UnitStatusAvailable).String())
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		item := testItem(t)
		assert.Error(t, item.ApplyDelta(UnitStatusAvailable, decimal.Zero))
	})

	t.Run("in-transit stock is not on hand", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusInTransitToSupplier, decimal.NewFromInt(4)))

		assert.True(t, item.OnHandQuantity().IsZero())
		assert.Equal(t, "4", item.QuantityIn(UnitStatusInTransitToSupplier).String())
	})

	t.Run("inspection stock is on hand but not rentable", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusRequiresInspection, decimal.NewFromInt(1)))

		assert.Equal(t, "1", item.OnHandQuantity().String())
		assert.True(t, item.RentableQuantity().IsZero())
	})

	t.Run("raises an event with the new bucket quantity", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusAvailableUsed, decimal.NewFromInt(3)))

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		adjusted, ok := events[0].(*StockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, UnitStatusAvailableUsed, adjusted.UnitStatus)
		assert.Equal(t, "3", adjusted.NewQuantity.String())
	})
}

func TestInventoryItemMoveStatus(t *testing.T) {
	t.Run("moves quantity between buckets", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusRequiresCleaning, decimal.NewFromInt(2)))

		require.NoError(t, item.MoveStatus(UnitStatusRequiresCleaning, UnitStatusAvailableUsed, decimal.NewFromInt(2)))
		assert.True(t, item.QuantityIn(UnitStatusRequiresCleaning).IsZero())
		assert.Equal(t, "2", item.QuantityIn(UnitStatusAvailableUsed).String())
	})

	t.Run("rejects moving more than held", func(t *testing.T) {
		item := testItem(t)
		require.NoError(t, item.ApplyDelta(UnitStatusRequiresCleaning, decimal.NewFromInt(1)))

		err := item.MoveStatus(UnitStatusRequiresCleaning, UnitStatusAvailable, decimal.NewFromInt(2))
		assert.Error(t, err)
	})
}

func TestUnitStatus(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		for _, s := range AllUnitStatuses() {
			assert.True(t, s.IsValid())
		}
		assert.False(t, UnitStatus("ON_RENT").IsValid())
	})

	t.Run("rentable statuses", func(t *testing.T) {
		assert.True(t, UnitStatusAvailable.Rentable())
		assert.True(t, UnitStatusAvailableUsed.Rentable())
		assert.False(t, UnitStatusRequiresInspection.Rentable())
		assert.False(t, UnitStatusInTransitToSupplier.Rentable())
	})
}
