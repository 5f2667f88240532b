package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
)

// InventoryReconciler translates a return's line outcomes into stock and
// unit-status deltas. Planning is pure; applying goes through the
// inventory adjuster so the persistence layer can join the ambient unit
// of work.
type InventoryReconciler struct {
	adjuster      inventory.Adjuster
	inventoryRepo inventory.Repository
}

// NewInventoryReconciler creates a reconciler
func NewInventoryReconciler(adjuster inventory.Adjuster, inventoryRepo inventory.Repository) *InventoryReconciler {
	return &InventoryReconciler{
		adjuster:      adjuster,
		inventoryRepo: inventoryRepo,
	}
}

// PlanSale produces the adjustments for a sale return: returned units go
// back to available stock unless damaged, in which case they are routed
// to inspection.
func (r *InventoryReconciler) PlanSale(rt *returns.ReturnTransaction) []*inventory.StockAdjustment {
	adjustments := make([]*inventory.StockAdjustment, 0, len(rt.Lines))
	for i := range rt.Lines {
		line := &rt.Lines[i]
		status := inventory.UnitStatusAvailable
		if line.ConditionCode == returns.ConditionDamaged {
			status = inventory.UnitStatusRequiresInspection
		}
		adjustments = append(adjustments, inventory.NewStockAdjustment(
			rt.TenantID, line.ItemID, rt.LocationID, status,
			line.ReturnedQuantity, rt.ReturnNumber, rt.ReasonCode,
		))
	}
	return adjustments
}

// PlanPurchase produces the adjustments for a purchase return: on-hand
// stock is decremented and the units move to in-transit-to-supplier.
func (r *InventoryReconciler) PlanPurchase(rt *returns.ReturnTransaction) []*inventory.StockAdjustment {
	adjustments := make([]*inventory.StockAdjustment, 0, 2*len(rt.Lines))
	for i := range rt.Lines {
		line := &rt.Lines[i]
		adjustments = append(adjustments,
			inventory.NewStockAdjustment(
				rt.TenantID, line.ItemID, rt.LocationID, inventory.UnitStatusAvailable,
				line.ReturnedQuantity.Neg(), rt.ReturnNumber, rt.ReasonCode,
			),
			inventory.NewStockAdjustment(
				rt.TenantID, line.ItemID, rt.LocationID, inventory.UnitStatusInTransitToSupplier,
				line.ReturnedQuantity, rt.ReturnNumber, rt.ReasonCode,
			),
		)
	}
	return adjustments
}

// PlanRental produces the adjustments for a rental return. The target
// status follows the condition/functionality matrix: failed units go to
// inspection, soiled units to cleaning, pristine units are available, and
// everything else re-enters stock as available-used.
func (r *InventoryReconciler) PlanRental(rt *returns.ReturnTransaction) []*inventory.StockAdjustment {
	adjustments := make([]*inventory.StockAdjustment, 0, len(rt.Lines))
	for i := range rt.Lines {
		line := &rt.Lines[i]
		adjustments = append(adjustments, inventory.NewStockAdjustment(
			rt.TenantID, line.ItemID, rt.LocationID, rentalUnitStatus(line),
			line.ReturnedQuantity, rt.ReturnNumber, rt.ReasonCode,
		))
	}
	return adjustments
}

func rentalUnitStatus(line *returns.ReturnLineItem) inventory.UnitStatus {
	switch {
	case !line.FunctionalityPassed(), line.ConditionCode == returns.ConditionDamaged:
		return inventory.UnitStatusRequiresInspection
	case line.ConditionCode.RequiresCleaning():
		return inventory.UnitStatusRequiresCleaning
	case line.ConditionCode == returns.ConditionNew:
		return inventory.UnitStatusAvailable
	default:
		return inventory.UnitStatusAvailableUsed
	}
}

// Apply pushes planned adjustments through the inventory adjuster
func (r *InventoryReconciler) Apply(ctx context.Context, adjustments []*inventory.StockAdjustment) error {
	for _, adjustment := range adjustments {
		if err := r.adjuster.Adjust(ctx, adjustment); err != nil {
			return err
		}
	}
	return nil
}

// PlanReversal negates every adjustment recorded for a return, used when
// a return is cancelled after its stock deltas were committed. The plan
// is applied by the caller inside the unit of work that also commits the
// cancelled state, so neither can land without the other.
func (r *InventoryReconciler) PlanReversal(ctx context.Context, tenantID uuid.UUID, returnNumber string) ([]*inventory.StockAdjustment, error) {
	recorded, err := r.inventoryRepo.FindAdjustmentsByReference(ctx, tenantID, returnNumber)
	if err != nil {
		return nil, err
	}

	reversals := make([]*inventory.StockAdjustment, 0, len(recorded))
	for i := range recorded {
		original := &recorded[i]
		reversals = append(reversals, inventory.NewStockAdjustment(
			original.TenantID, original.ItemID, original.LocationID, original.UnitStatus,
			original.QuantityDelta.Neg(), returnNumber, "cancellation reversal",
		))
	}

	return reversals, nil
}
