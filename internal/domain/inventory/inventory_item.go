package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryItem tracks stock for one catalog item at one location.
// It is the aggregate root for inventory operations; the composite
// identifier is LocationID + ItemID. Quantities are held per unit status
// so returned goods can be routed through inspection or cleaning before
// they become sellable again.
type InventoryItem struct {
	shared.TenantAggregateRoot
	LocationID uuid.UUID
	ItemID     uuid.UUID

	AvailableQuantity          decimal.Decimal
	AvailableUsedQuantity      decimal.Decimal
	RequiresCleaningQuantity   decimal.Decimal
	RequiresInspectionQuantity decimal.Decimal
	InTransitQuantity          decimal.Decimal
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new inventory record for a location-item pair
func NewInventoryItem(tenantID, locationID, itemID uuid.UUID) (*InventoryItem, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}

	return &InventoryItem{
		TenantAggregateRoot:        shared.NewTenantAggregateRoot(tenantID),
		LocationID:                 locationID,
		ItemID:                     itemID,
		AvailableQuantity:          decimal.Zero,
		AvailableUsedQuantity:      decimal.Zero,
		RequiresCleaningQuantity:   decimal.Zero,
		RequiresInspectionQuantity: decimal.Zero,
		InTransitQuantity:          decimal.Zero,
	}, nil
}

// QuantityIn returns the quantity currently held in the given status bucket
func (i *InventoryItem) QuantityIn(status UnitStatus) decimal.Decimal {
	switch status {
	case UnitStatusAvailable:
		return i.AvailableQuantity
	case UnitStatusAvailableUsed:
		return i.AvailableUsedQuantity
	case UnitStatusRequiresCleaning:
		return i.RequiresCleaningQuantity
	case UnitStatusRequiresInspection:
		return i.RequiresInspectionQuantity
	case UnitStatusInTransitToSupplier:
		return i.InTransitQuantity
	}
	return decimal.Zero
}

func (i *InventoryItem) setQuantity(status UnitStatus, quantity decimal.Decimal) {
	switch status {
	case UnitStatusAvailable:
		i.AvailableQuantity = quantity
	case UnitStatusAvailableUsed:
		i.AvailableUsedQuantity = quantity
	case UnitStatusRequiresCleaning:
		i.RequiresCleaningQuantity = quantity
	case UnitStatusRequiresInspection:
		i.RequiresInspectionQuantity = quantity
	case UnitStatusInTransitToSupplier:
		i.InTransitQuantity = quantity
	}
}

// OnHandQuantity returns the total quantity physically at the location
func (i *InventoryItem) OnHandQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, status := range AllUnitStatuses() {
		if status.OnSite() {
			total = total.Add(i.QuantityIn(status))
		}
	}
	return total
}

// RentableQuantity returns the quantity allocatable to new sales or rentals
func (i *InventoryItem) RentableQuantity() decimal.Decimal {
	return i.AvailableQuantity.Add(i.AvailableUsedQuantity)
}

// ApplyDelta adjusts the quantity in one status bucket. A negative delta
// that would take the bucket below zero is rejected.
func (i *InventoryItem) ApplyDelta(status UnitStatus, delta decimal.Decimal) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown unit status: %s", status))
	}
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity delta cannot be zero")
	}

	next := i.QuantityIn(status).Add(delta)
	if next.IsNegative() {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Adjustment would take %s stock below zero", status))
	}

	i.setQuantity(status, next)
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockAdjustedEvent(i, status, delta))

	return nil
}

// MoveStatus moves a quantity between two status buckets, e.g. releasing
// inspected units back to AVAILABLE_USED
func (i *InventoryItem) MoveStatus(from, to UnitStatus, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Move quantity must be positive")
	}
	if err := i.ApplyDelta(from, quantity.Neg()); err != nil {
		return err
	}
	return i.ApplyDelta(to, quantity)
}
