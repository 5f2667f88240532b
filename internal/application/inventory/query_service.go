package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/shared"
)

// InventoryQueryService exposes read-only stock views. Stock mutations go
// exclusively through the return engine's reconciliation; this service
// exists so operators can see where returned units ended up.
type InventoryQueryService struct {
	repo inventory.Repository
}

// NewInventoryQueryService creates a new InventoryQueryService
func NewInventoryQueryService(repo inventory.Repository) *InventoryQueryService {
	return &InventoryQueryService{repo: repo}
}

// ItemStockQuery selects the stock records to return. ItemID is required;
// LocationID narrows the result to one location.
type ItemStockQuery struct {
	ItemID     uuid.UUID
	LocationID *uuid.UUID
}

// ItemStock returns the per-location stock buckets for an item
func (s *InventoryQueryService) ItemStock(ctx context.Context, tenantID uuid.UUID, query ItemStockQuery) ([]ItemStockResponse, error) {
	if query.ItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID is required")
	}

	if query.LocationID != nil {
		item, err := s.repo.FindByLocationAndItem(ctx, tenantID, *query.LocationID, query.ItemID)
		if err != nil {
			return nil, err
		}
		return []ItemStockResponse{ToItemStockResponse(item)}, nil
	}

	items, err := s.repo.FindByItem(ctx, tenantID, query.ItemID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemStockResponse, len(items))
	for i := range items {
		out[i] = ToItemStockResponse(&items[i])
	}
	return out, nil
}

// AdjustmentHistory returns the adjustment ledger entries recorded for a
// reference document, oldest first. The return engine writes entries with
// the return number as the reference.
func (s *InventoryQueryService) AdjustmentHistory(ctx context.Context, tenantID uuid.UUID, reference string) ([]AdjustmentResponse, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference is required")
	}
	adjustments, err := s.repo.FindAdjustmentsByReference(ctx, tenantID, reference)
	if err != nil {
		return nil, err
	}
	out := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		out[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return out, nil
}
