package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// transitionKey identifies one edge of the workflow graph
type transitionKey struct {
	From returns.WorkflowState
	To   returns.WorkflowState
}

// TransitionContext carries the caller-supplied context of a transition
type TransitionContext struct {
	Actor uuid.UUID
	Note  string
}

// TransitionHandler is the side effect executed when a return enters the
// target state, before the new state is committed. A handler failure
// leaves the workflow state unchanged. Handlers only plan: any inventory
// adjustments they return are applied in the same transaction that
// commits the new state, so a version conflict rolls both back.
type TransitionHandler func(ctx context.Context, rt *returns.ReturnTransaction, tctx TransitionContext) ([]*inventory.StockAdjustment, error)

// WorkflowEngine drives a return's lifecycle. Each transition is checked
// against the state machine's allow-list, runs the declared side-effect
// handler, and commits state, audit record, and events together.
// Transitions are idempotent: re-invoking with the current state is a
// no-op, never an error.
type WorkflowEngine struct {
	returnRepo returns.ReturnRepository
	auditRepo  returns.AuditLogRepository
	reconciler *InventoryReconciler
	publisher  shared.EventPublisher
	logger     *zap.Logger
	handlers   map[transitionKey]TransitionHandler
}

// NewWorkflowEngine creates the engine and registers the side-effect
// handler table
func NewWorkflowEngine(
	returnRepo returns.ReturnRepository,
	auditRepo returns.AuditLogRepository,
	reconciler *InventoryReconciler,
	logger *zap.Logger,
) *WorkflowEngine {
	e := &WorkflowEngine{
		returnRepo: returnRepo,
		auditRepo:  auditRepo,
		reconciler: reconciler,
		logger:     logger,
		handlers:   make(map[transitionKey]TransitionHandler),
	}

	// (from, to) -> handler. Only edges with side effects are listed;
	// every edge is still checked against the allow-list first.
	e.register(returns.WorkflowStateItemsReceived, returns.WorkflowStateRefundApproved, e.finalizeFinancials)
	e.register(returns.WorkflowStateInspectionComplete, returns.WorkflowStateRefundApproved, e.finalizeFinancials)
	e.register(returns.WorkflowStateRefundApproved, returns.WorkflowStateRefundProcessed, e.processRefund)
	for _, from := range returns.AllWorkflowStates() {
		if from.CanCancel() {
			e.register(from, returns.WorkflowStateCancelled, e.reverseInventory)
		}
	}

	return e
}

// SetEventPublisher sets the publisher for transition events
func (e *WorkflowEngine) SetEventPublisher(publisher shared.EventPublisher) {
	e.publisher = publisher
}

func (e *WorkflowEngine) register(from, to returns.WorkflowState, handler TransitionHandler) {
	e.handlers[transitionKey{From: from, To: to}] = handler
}

// Transition advances the return to the target state. The edge is checked
// against the allow-list before the target's side-effect handler runs; the
// new state, one audit record, and the domain events commit afterwards.
func (e *WorkflowEngine) Transition(
	ctx context.Context,
	tenantID, returnID uuid.UUID,
	target returns.WorkflowState,
	tctx TransitionContext,
) (*ReturnResponse, error) {
	rt, err := e.returnRepo.FindByID(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	// Idempotent retry: same (source, target) pair is a no-op
	if rt.WorkflowState == target {
		response := ToReturnResponse(rt)
		return &response, nil
	}

	from := rt.WorkflowState
	if !from.CanTransitionTo(target) {
		return nil, returns.NewInvalidTransitionError(from, target)
	}

	var adjustments []*inventory.StockAdjustment
	if handler, ok := e.handlers[transitionKey{From: from, To: target}]; ok {
		adjustments, err = handler(ctx, rt, tctx)
		if err != nil {
			e.logger.Warn("workflow transition handler failed",
				zap.String("return_number", rt.ReturnNumber),
				zap.String("from", from.String()),
				zap.String("to", target.String()),
				zap.Error(err))
			return nil, err
		}
	}

	if target == returns.WorkflowStateCancelled {
		reason := tctx.Note
		if reason == "" {
			reason = "cancelled"
		}
		err = rt.Cancel(reason)
	} else {
		err = rt.TransitionTo(target)
	}
	if err != nil {
		return nil, err
	}

	if len(adjustments) > 0 {
		err = e.returnRepo.SaveWithLockAndAdjust(ctx, rt, adjustments)
	} else {
		err = e.returnRepo.SaveWithLock(ctx, rt)
	}
	if err != nil {
		return nil, err
	}

	audit := returns.NewReturnAuditLog(tenantID, rt.ID, from, target, tctx.Actor, tctx.Note)
	if err := e.auditRepo.Append(ctx, audit); err != nil {
		e.logger.Error("failed to append return audit record",
			zap.String("return_number", rt.ReturnNumber),
			zap.Error(err))
	}

	e.publishEvents(ctx, rt)

	e.logger.Info("return transitioned",
		zap.String("return_number", rt.ReturnNumber),
		zap.String("from", from.String()),
		zap.String("to", target.String()))

	response := ToReturnResponse(rt)
	return &response, nil
}

// finalizeFinancials gates entry into REFUND_APPROVED: the financial
// breakdown written at creation must be present and final
func (e *WorkflowEngine) finalizeFinancials(_ context.Context, rt *returns.ReturnTransaction, _ TransitionContext) ([]*inventory.StockAdjustment, error) {
	if rt.FinancialsSetAt == nil {
		return nil, shared.NewDomainError("FINANCIALS_MISSING", "Return has no financial breakdown to approve")
	}
	return nil, nil
}

// processRefund marks the payout boundary. The engine never auto-retries
// past this point; a failed commit is surfaced to the caller to avoid any
// risk of a double refund.
func (e *WorkflowEngine) processRefund(_ context.Context, rt *returns.ReturnTransaction, _ TransitionContext) ([]*inventory.StockAdjustment, error) {
	if rt.ExchangeTransactionID != nil {
		e.logger.Info("refund redirected as exchange credit",
			zap.String("return_number", rt.ReturnNumber),
			zap.String("exchange_transaction_id", rt.ExchangeTransactionID.String()))
	}
	return nil, nil
}

// reverseInventory plans the undo of the stock deltas committed at
// creation; the plan lands in the same transaction as the CANCELLED
// state, and the line quantities stop counting against the original
// lines' returnable quantity at the same time
func (e *WorkflowEngine) reverseInventory(ctx context.Context, rt *returns.ReturnTransaction, _ TransitionContext) ([]*inventory.StockAdjustment, error) {
	return e.reconciler.PlanReversal(ctx, rt.TenantID, rt.ReturnNumber)
}

func (e *WorkflowEngine) publishEvents(ctx context.Context, rt *returns.ReturnTransaction) {
	if e.publisher == nil {
		return
	}
	for _, event := range rt.GetDomainEvents() {
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	rt.ClearDomainEvents()
}
