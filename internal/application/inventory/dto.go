package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemStockResponse is the per-location stock view of one item
type ItemStockResponse struct {
	LocationID uuid.UUID `json:"location_id"`
	ItemID     uuid.UUID `json:"item_id"`

	Available          decimal.Decimal `json:"available"`
	AvailableUsed      decimal.Decimal `json:"available_used"`
	RequiresCleaning   decimal.Decimal `json:"requires_cleaning"`
	RequiresInspection decimal.Decimal `json:"requires_inspection"`
	InTransit          decimal.Decimal `json:"in_transit_to_supplier"`

	OnHand   decimal.Decimal `json:"on_hand"`
	Rentable decimal.Decimal `json:"rentable"`

	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// AdjustmentResponse is one stock adjustment ledger entry
type AdjustmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	ItemID        uuid.UUID       `json:"item_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	UnitStatus    string          `json:"unit_status"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	Reference     string          `json:"reference,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToItemStockResponse converts a domain inventory item to a response DTO
func ToItemStockResponse(item *inventory.InventoryItem) ItemStockResponse {
	return ItemStockResponse{
		LocationID:         item.LocationID,
		ItemID:             item.ItemID,
		Available:          item.AvailableQuantity,
		AvailableUsed:      item.AvailableUsedQuantity,
		RequiresCleaning:   item.RequiresCleaningQuantity,
		RequiresInspection: item.RequiresInspectionQuantity,
		InTransit:          item.InTransitQuantity,
		OnHand:             item.OnHandQuantity(),
		Rentable:           item.RentableQuantity(),
		UpdatedAt:          item.UpdatedAt,
		Version:            item.Version,
	}
}

// ToAdjustmentResponse converts a ledger entry to a response DTO
func ToAdjustmentResponse(adj *inventory.StockAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:            adj.ID,
		ItemID:        adj.ItemID,
		LocationID:    adj.LocationID,
		UnitStatus:    string(adj.UnitStatus),
		QuantityDelta: adj.QuantityDelta,
		Reference:     adj.Reference,
		Reason:        adj.Reason,
		CreatedAt:     adj.CreatedAt,
	}
}
