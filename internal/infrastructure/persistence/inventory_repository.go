package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements inventory.Repository and
// inventory.Adjuster using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByLocationAndItem finds the inventory record for a location-item pair
func (r *GormInventoryRepository) FindByLocationAndItem(ctx context.Context, tenantID, locationID, itemID uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND item_id = ?", tenantID, locationID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByItem finds all location records for an item
func (r *GormInventoryRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("location_id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an inventory record with a version check
func (r *GormInventoryRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveInventoryItem(tx, item)
	})
}

// AppendAdjustment writes one ledger entry
func (r *GormInventoryRepository) AppendAdjustment(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

// FindAdjustmentsByReference returns the ledger entries recorded for a
// reference document, oldest first
func (r *GormInventoryRepository) FindAdjustmentsByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]inventory.StockAdjustment, error) {
	var adjustments []inventory.StockAdjustment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Adjust applies one adjustment to the item's status bucket and appends the
// corresponding ledger entry, in its own transaction
func (r *GormInventoryRepository) Adjust(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyStockAdjustment(tx, adjustment)
	})
}

// applyStockAdjustment runs one adjustment inside the caller's transaction.
// The inventory row is locked for the duration so concurrent adjustments to
// the same location-item pair serialize.
func applyStockAdjustment(tx *gorm.DB, adjustment *inventory.StockAdjustment) error {
	var item inventory.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND location_id = ? AND item_id = ?",
			adjustment.TenantID, adjustment.LocationID, adjustment.ItemID).
		First(&item).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fresh, newErr := inventory.NewInventoryItem(adjustment.TenantID, adjustment.LocationID, adjustment.ItemID)
		if newErr != nil {
			return newErr
		}
		item = *fresh
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	}

	if err := item.ApplyDelta(adjustment.UnitStatus, adjustment.QuantityDelta); err != nil {
		return err
	}
	item.ClearDomainEvents()

	if err := saveInventoryItem(tx, &item); err != nil {
		return err
	}

	return tx.Create(adjustment).Error
}

// saveInventoryItem updates the quantity buckets with an optimistic version
// check; ApplyDelta has already incremented the in-memory version
func saveInventoryItem(tx *gorm.DB, item *inventory.InventoryItem) error {
	result := tx.Model(&inventory.InventoryItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"available_quantity":           item.AvailableQuantity,
			"available_used_quantity":      item.AvailableUsedQuantity,
			"requires_cleaning_quantity":   item.RequiresCleaningQuantity,
			"requires_inspection_quantity": item.RequiresInspectionQuantity,
			"in_transit_quantity":          item.InTransitQuantity,
			"version":                      item.Version,
			"updated_at":                   item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormInventoryRepository implements both contracts
var (
	_ inventory.Repository = (*GormInventoryRepository)(nil)
	_ inventory.Adjuster   = (*GormInventoryRepository)(nil)
)
