package inventory

import (
	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for InventoryItem
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants for inventory
const (
	EventTypeStockAdjusted = "StockAdjusted"
)

// StockAdjustedEvent is raised when a status bucket quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ItemID        uuid.UUID       `json:"item_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	UnitStatus    UnitStatus      `json:"unit_status"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	NewQuantity   decimal.Decimal `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(item *InventoryItem, status UnitStatus, delta decimal.Decimal) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeInventoryItem, item.ID, item.TenantID),
		ItemID:          item.ItemID,
		LocationID:      item.LocationID,
		UnitStatus:      status,
		QuantityDelta:   delta,
		NewQuantity:     item.QuantityIn(status),
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}
