package returns

import (
	"context"

	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
)

// PurchaseReturnProcessor implements the per-type policy for returns to
// suppliers: a mandatory RMA reference, expected supplier credit net of
// the supplier restocking fee and buyer-borne shipping, and stock moved
// to in-transit-to-supplier.
type PurchaseReturnProcessor struct {
	validator  *ReturnValidator
	calculator *FinancialCalculator
	reconciler *InventoryReconciler
	policy     Policy
}

// NewPurchaseReturnProcessor creates the purchase variant
func NewPurchaseReturnProcessor(
	validator *ReturnValidator,
	calculator *FinancialCalculator,
	reconciler *InventoryReconciler,
	policy Policy,
) *PurchaseReturnProcessor {
	return &PurchaseReturnProcessor{
		validator:  validator,
		calculator: calculator,
		reconciler: reconciler,
		policy:     policy,
	}
}

// Type returns the return type this processor handles
func (p *PurchaseReturnProcessor) Type() returns.ReturnType {
	return returns.ReturnTypePurchase
}

// ValidateReturn collects all violations for a purchase return request,
// including the missing-RMA rule
func (p *PurchaseReturnProcessor) ValidateReturn(_ context.Context, pctx *ProcessorContext) returns.Violations {
	return p.validator.Validate(pctx.Original, pctx.AlreadyReturned, pctx.Request)
}

// ProcessInventory decrements on-hand stock and moves the units to
// IN_TRANSIT_TO_SUPPLIER
func (p *PurchaseReturnProcessor) ProcessInventory(_ context.Context, pctx *ProcessorContext) ([]*inventory.StockAdjustment, error) {
	return p.reconciler.PlanPurchase(pctx.Return), nil
}

// CalculateFinancials computes the expected supplier credit
func (p *PurchaseReturnProcessor) CalculateFinancials(_ context.Context, pctx *ProcessorContext) (returns.FinancialBreakdown, error) {
	breakdown, err := p.calculator.CalculatePurchase(pctx.Return.Lines, pctx.Original, p.policy)
	if err != nil {
		return returns.FinancialBreakdown{}, returns.NewValidationError(calculationViolations(err))
	}
	return breakdown, nil
}

// PostProcess records the RMA reference on the return
func (p *PurchaseReturnProcessor) PostProcess(_ context.Context, pctx *ProcessorContext) error {
	pctx.Return.SetRMAReference(pctx.Request.RMAReference)
	return nil
}
