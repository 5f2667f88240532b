package partner

import (
	"context"
	"fmt"

	"github.com/rentora/backend/internal/domain/partner"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReturnCompletedHandler accrues expected supplier credit when a purchase
// return completes. The receivable stays on the supplier's owed-credit
// balance until the credit note arrives.
type ReturnCompletedHandler struct {
	txLookup returns.TransactionLookup
	credits  partner.SupplierCreditWriter
	logger   *zap.Logger
}

// NewReturnCompletedHandler creates a new handler for return transition events
func NewReturnCompletedHandler(
	txLookup returns.TransactionLookup,
	credits partner.SupplierCreditWriter,
	logger *zap.Logger,
) *ReturnCompletedHandler {
	return &ReturnCompletedHandler{
		txLookup: txLookup,
		credits:  credits,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReturnCompletedHandler) EventTypes() []string {
	return []string{returns.EventTypeReturnTransitioned}
}

// Handle accrues supplier owed credit for completed purchase returns.
// Transitions of other return types and to other states are ignored.
func (h *ReturnCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	transitioned, ok := event.(*returns.ReturnTransitionedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			returns.EventTypeReturnTransitioned, event.EventType())
	}

	if transitioned.ToState != returns.WorkflowStateCompleted ||
		transitioned.ReturnType != returns.ReturnTypePurchase {
		return nil
	}
	// For purchase returns the net refund is the credit expected from the
	// supplier, not money paid out
	if transitioned.RefundAmount.IsZero() {
		return nil
	}

	original, err := h.txLookup.FindByID(ctx, event.TenantID(), transitioned.OriginalTransactionID)
	if err != nil {
		return fmt.Errorf("resolve original purchase %s: %w", transitioned.OriginalTransactionID, err)
	}
	if original.SupplierID == nil {
		h.logger.Warn("purchase return completed without supplier on original transaction",
			zap.String("return_number", transitioned.ReturnNumber),
			zap.String("original_transaction_id", transitioned.OriginalTransactionID.String()),
		)
		return nil
	}

	if err := h.credits.AccrueOwedCredit(ctx, event.TenantID(), *original.SupplierID, transitioned.RefundAmount); err != nil {
		return fmt.Errorf("accrue owed credit for supplier %s: %w", original.SupplierID, err)
	}

	h.logger.Info("supplier owed credit accrued",
		zap.String("return_number", transitioned.ReturnNumber),
		zap.String("supplier_id", original.SupplierID.String()),
		zap.String("amount", transitioned.RefundAmount.String()),
	)
	return nil
}

// Ensure ReturnCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReturnCompletedHandler)(nil)
