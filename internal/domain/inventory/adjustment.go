package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAdjustment is one append-only ledger entry describing a change made
// to a status bucket of an inventory item. The return engine writes one
// entry per line outcome; entries are never updated or deleted.
type StockAdjustment struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ItemID        uuid.UUID
	LocationID    uuid.UUID
	UnitStatus    UnitStatus
	QuantityDelta decimal.Decimal
	Reference     string // originating document, e.g. a return number
	Reason        string
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (StockAdjustment) TableName() string {
	return "inventory_adjustments"
}

// NewStockAdjustment creates a ledger entry
func NewStockAdjustment(tenantID, itemID, locationID uuid.UUID, status UnitStatus, delta decimal.Decimal, reference, reason string) *StockAdjustment {
	return &StockAdjustment{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ItemID:        itemID,
		LocationID:    locationID,
		UnitStatus:    status,
		QuantityDelta: delta,
		Reference:     reference,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
}

// Adjuster applies stock adjustments. The return engine consumes it as an
// opaque collaborator; the persistence layer implements it against the
// inventory tables, within the caller's unit of work when one is active.
type Adjuster interface {
	// Adjust applies one adjustment to the item's status bucket and appends
	// the corresponding ledger entry
	Adjust(ctx context.Context, adjustment *StockAdjustment) error
}

// Repository defines the interface for inventory persistence
type Repository interface {
	// FindByLocationAndItem finds the inventory record for a location-item pair
	FindByLocationAndItem(ctx context.Context, tenantID, locationID, itemID uuid.UUID) (*InventoryItem, error)

	// FindByItem finds all location records for an item
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]InventoryItem, error)

	// Save creates or updates an inventory record with a version check
	Save(ctx context.Context, item *InventoryItem) error

	// AppendAdjustment writes one ledger entry
	AppendAdjustment(ctx context.Context, adjustment *StockAdjustment) error

	// FindAdjustmentsByReference returns the ledger entries recorded for a
	// reference document, oldest first
	FindAdjustmentsByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]StockAdjustment, error)
}
