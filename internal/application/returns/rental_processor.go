package returns

import (
	"context"

	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
)

// RentalReturnProcessor implements the per-type policy for rental
// returns: late, damage, and cleaning fees settled against the held
// deposit with a zero floor, and units routed back to stock through the
// condition/functionality matrix.
type RentalReturnProcessor struct {
	validator  *ReturnValidator
	calculator *FinancialCalculator
	reconciler *InventoryReconciler
	policy     Policy
}

// NewRentalReturnProcessor creates the rental variant
func NewRentalReturnProcessor(
	validator *ReturnValidator,
	calculator *FinancialCalculator,
	reconciler *InventoryReconciler,
	policy Policy,
) *RentalReturnProcessor {
	return &RentalReturnProcessor{
		validator:  validator,
		calculator: calculator,
		reconciler: reconciler,
		policy:     policy,
	}
}

// Type returns the return type this processor handles
func (p *RentalReturnProcessor) Type() returns.ReturnType {
	return returns.ReturnTypeRental
}

// ValidateReturn collects all violations for a rental return request,
// including mandatory-full-return lines rejecting partial quantities
func (p *RentalReturnProcessor) ValidateReturn(_ context.Context, pctx *ProcessorContext) returns.Violations {
	return p.validator.Validate(pctx.Original, pctx.AlreadyReturned, pctx.Request)
}

// ProcessInventory routes each returned unit to AVAILABLE,
// AVAILABLE_USED, REQUIRES_CLEANING, or REQUIRES_INSPECTION
func (p *RentalReturnProcessor) ProcessInventory(_ context.Context, pctx *ProcessorContext) ([]*inventory.StockAdjustment, error) {
	return p.reconciler.PlanRental(pctx.Return), nil
}

// CalculateFinancials settles the deposit against late, damage, and
// cleaning fees; a negative remainder becomes a receivable
func (p *RentalReturnProcessor) CalculateFinancials(_ context.Context, pctx *ProcessorContext) (returns.FinancialBreakdown, error) {
	if pctx.Request.ActualReturnDate == nil {
		return returns.FinancialBreakdown{}, returns.NewValidationError(returns.Violations{{
			Code:    returns.ViolationMissingField,
			Field:   "actual_return_date",
			Message: "Rental returns require the actual return date",
		}})
	}

	breakdown, err := p.calculator.CalculateRental(pctx.Return.Lines, pctx.Original, *pctx.Request.ActualReturnDate, p.policy)
	if err != nil {
		return returns.FinancialBreakdown{}, returns.NewValidationError(calculationViolations(err))
	}
	return breakdown, nil
}

// PostProcess has no rental-specific finishing step; the receivable is
// already part of the breakdown
func (p *RentalReturnProcessor) PostProcess(_ context.Context, _ *ProcessorContext) error {
	return nil
}
