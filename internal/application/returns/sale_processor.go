package returns

import (
	"context"

	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
)

// SaleReturnProcessor implements the per-type policy for customer sale
// returns: condition multipliers on the refund, a restocking fee when
// packaging is missing, damaged units routed to inspection, and optional
// exchange credit redirection.
type SaleReturnProcessor struct {
	validator  *ReturnValidator
	calculator *FinancialCalculator
	reconciler *InventoryReconciler
	policy     Policy
}

// NewSaleReturnProcessor creates the sale variant
func NewSaleReturnProcessor(
	validator *ReturnValidator,
	calculator *FinancialCalculator,
	reconciler *InventoryReconciler,
	policy Policy,
) *SaleReturnProcessor {
	return &SaleReturnProcessor{
		validator:  validator,
		calculator: calculator,
		reconciler: reconciler,
		policy:     policy,
	}
}

// Type returns the return type this processor handles
func (p *SaleReturnProcessor) Type() returns.ReturnType {
	return returns.ReturnTypeSale
}

// ValidateReturn collects all violations for a sale return request
func (p *SaleReturnProcessor) ValidateReturn(_ context.Context, pctx *ProcessorContext) returns.Violations {
	return p.validator.Validate(pctx.Original, pctx.AlreadyReturned, pctx.Request)
}

// ProcessInventory increments available stock for each line, routing
// damaged units to REQUIRES_INSPECTION instead
func (p *SaleReturnProcessor) ProcessInventory(_ context.Context, pctx *ProcessorContext) ([]*inventory.StockAdjustment, error) {
	return p.reconciler.PlanSale(pctx.Return), nil
}

// CalculateFinancials computes the condition-adjusted refund and the
// restocking fee
func (p *SaleReturnProcessor) CalculateFinancials(_ context.Context, pctx *ProcessorContext) (returns.FinancialBreakdown, error) {
	breakdown, err := p.calculator.CalculateSale(pctx.Return.Lines, p.policy)
	if err != nil {
		return returns.FinancialBreakdown{}, returns.NewValidationError(calculationViolations(err))
	}
	return breakdown, nil
}

// PostProcess links the optional exchange transaction so the refund is
// redirected as credit instead of paid out
func (p *SaleReturnProcessor) PostProcess(_ context.Context, pctx *ProcessorContext) error {
	if pctx.Request.ExchangeTransactionID != nil {
		return pctx.Return.LinkExchange(*pctx.Request.ExchangeTransactionID)
	}
	return nil
}
