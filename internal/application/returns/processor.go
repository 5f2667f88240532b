package returns

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
)

// ProcessorContext carries everything a processor needs for one request.
// Processors are stateless; nothing is cached between invocations.
type ProcessorContext struct {
	TenantID        uuid.UUID
	Original        *returns.OriginalTransaction
	AlreadyReturned returns.ReturnedQuantities
	Request         CreateReturnRequest
	Return          *returns.ReturnTransaction // set once the aggregate is built
}

// ReturnProcessor is the shared per-type contract. ReturnService invokes
// the four operations in order: ValidateReturn, ProcessInventory,
// CalculateFinancials, PostProcess.
type ReturnProcessor interface {
	// Type returns the return type this processor handles
	Type() returns.ReturnType

	// ValidateReturn collects every violation of the request, never
	// short-circuiting on the first failure
	ValidateReturn(ctx context.Context, pctx *ProcessorContext) returns.Violations

	// ProcessInventory plans the stock and unit-status deltas for the
	// return's lines. The planned adjustments commit atomically with the
	// return record.
	ProcessInventory(ctx context.Context, pctx *ProcessorContext) ([]*inventory.StockAdjustment, error)

	// CalculateFinancials computes the fee/refund breakdown. Arithmetic
	// failures surface as validation errors, not raw computation errors.
	CalculateFinancials(ctx context.Context, pctx *ProcessorContext) (returns.FinancialBreakdown, error)

	// PostProcess runs the type-specific finishing step, e.g. exchange
	// credit linkage or supplier credit recording
	PostProcess(ctx context.Context, pctx *ProcessorContext) error
}

// ProcessorFactory resolves the processor variant for a return type.
// Dispatch on the type happens exactly once, here; each arm is an
// independent stateless implementation.
type ProcessorFactory struct {
	processors map[returns.ReturnType]ReturnProcessor
}

// NewProcessorFactory wires the three processor variants
func NewProcessorFactory(
	validator *ReturnValidator,
	calculator *FinancialCalculator,
	reconciler *InventoryReconciler,
	policy Policy,
) *ProcessorFactory {
	factory := &ProcessorFactory{processors: make(map[returns.ReturnType]ReturnProcessor, 3)}
	for _, p := range []ReturnProcessor{
		NewSaleReturnProcessor(validator, calculator, reconciler, policy),
		NewPurchaseReturnProcessor(validator, calculator, reconciler, policy),
		NewRentalReturnProcessor(validator, calculator, reconciler, policy),
	} {
		factory.processors[p.Type()] = p
	}
	return factory
}

// ForType returns the processor for the given return type
func (f *ProcessorFactory) ForType(t returns.ReturnType) (ReturnProcessor, error) {
	processor, ok := f.processors[t]
	if !ok {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", fmt.Sprintf("No processor for return type: %s", t))
	}
	return processor, nil
}

// calculationViolations converts a calculator failure into the violation
// list the processor boundary reports instead of a raw computation error
func calculationViolations(err error) returns.Violations {
	return returns.Violations{{
		Code:    returns.ViolationMissingPriceData,
		Message: err.Error(),
	}}
}
