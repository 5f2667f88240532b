package returns

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type engineFixture struct {
	engine        *WorkflowEngine
	returnRepo    *MockReturnRepository
	auditRepo     *MockAuditLogRepository
	adjuster      *MockStockAdjuster
	inventoryRepo *MockInventoryRepository
	tenantID      uuid.UUID
}

func newEngineFixture() *engineFixture {
	returnRepo := new(MockReturnRepository)
	auditRepo := new(MockAuditLogRepository)
	adjuster := new(MockStockAdjuster)
	inventoryRepo := new(MockInventoryRepository)

	return &engineFixture{
		engine:        NewWorkflowEngine(returnRepo, auditRepo, NewInventoryReconciler(adjuster, inventoryRepo), zap.NewNop()),
		returnRepo:    returnRepo,
		auditRepo:     auditRepo,
		adjuster:      adjuster,
		inventoryRepo: inventoryRepo,
		tenantID:      uuid.New(),
	}
}

func TestWorkflowEngine_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("advances along an allowed edge and records the transition", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateInitiated)
		actor := uuid.New()

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.returnRepo.On("SaveWithLock", ctx, rt).Return(nil)

		var audit *returns.ReturnAuditLog
		f.auditRepo.On("Append", ctx, mock.AnythingOfType("*returns.ReturnAuditLog")).
			Run(func(args mock.Arguments) { audit = args.Get(1).(*returns.ReturnAuditLog) }).
			Return(nil)

		resp, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateValidated, TransitionContext{
			Actor: actor,
			Note:  "documents verified",
		})
		require.NoError(t, err)
		assert.Equal(t, string(returns.WorkflowStateValidated), resp.WorkflowState)

		require.NotNil(t, audit)
		assert.Equal(t, returns.WorkflowStateInitiated, audit.FromState)
		assert.Equal(t, returns.WorkflowStateValidated, audit.ToState)
		assert.Equal(t, actor, audit.Actor)
		assert.Equal(t, "documents verified", audit.Note)
	})

	t.Run("skipping ahead is rejected and the state is untouched", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateInitiated)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)

		_, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCompleted, TransitionContext{})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		assert.Equal(t, returns.WorkflowStateInitiated, rt.WorkflowState)
		f.returnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("re-requesting the current state is a no-op", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateValidated)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)

		resp, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateValidated, TransitionContext{})
		require.NoError(t, err)
		assert.Equal(t, string(returns.WorkflowStateValidated), resp.WorkflowState)

		f.returnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("refund approval requires the financial breakdown to be present", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateItemsReceived)
		rt.FinancialsSetAt = nil

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)

		_, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateRefundApproved, TransitionContext{})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "FINANCIALS_MISSING", domainErr.Code)
		assert.Equal(t, returns.WorkflowStateItemsReceived, rt.WorkflowState)
		f.returnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("cancellation reverses the committed stock deltas", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateValidated)

		recorded := []inventory.StockAdjustment{{
			ID:            uuid.New(),
			TenantID:      f.tenantID,
			ItemID:        rt.Lines[0].ItemID,
			LocationID:    rt.LocationID,
			UnitStatus:    inventory.UnitStatusAvailable,
			QuantityDelta: decimal.NewFromInt(2),
			Reference:     rt.ReturnNumber,
		}}

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)
		f.inventoryRepo.On("FindAdjustmentsByReference", ctx, f.tenantID, rt.ReturnNumber).Return(recorded, nil)

		var reversals []*inventory.StockAdjustment
		f.returnRepo.On("SaveWithLockAndAdjust", ctx, rt, mock.Anything).
			Run(func(args mock.Arguments) { reversals = args.Get(2).([]*inventory.StockAdjustment) }).
			Return(nil)

		resp, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCancelled, TransitionContext{
			Note: "customer kept the goods",
		})
		require.NoError(t, err)
		assert.Equal(t, string(returns.WorkflowStateCancelled), resp.WorkflowState)
		assert.Equal(t, "customer kept the goods", resp.CancelReason)

		require.Len(t, reversals, 1)
		assert.Equal(t, "-2", reversals[0].QuantityDelta.String())
		assert.Equal(t, inventory.UnitStatusAvailable, reversals[0].UnitStatus)
		// The reversal travels with the state commit, never on its own
		f.adjuster.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything)
		f.returnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("a version conflict rolls the reversal back with the state", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateValidated)

		recorded := []inventory.StockAdjustment{{
			ID:            uuid.New(),
			TenantID:      f.tenantID,
			ItemID:        rt.Lines[0].ItemID,
			LocationID:    rt.LocationID,
			UnitStatus:    inventory.UnitStatusAvailable,
			QuantityDelta: decimal.NewFromInt(2),
			Reference:     rt.ReturnNumber,
		}}

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.inventoryRepo.On("FindAdjustmentsByReference", ctx, f.tenantID, rt.ReturnNumber).Return(recorded, nil)
		f.returnRepo.On("SaveWithLockAndAdjust", ctx, rt, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCancelled, TransitionContext{})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		// No adjustment is ever applied outside the failed commit
		f.adjuster.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything)
		f.auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("cancellation is closed once the refund was processed", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateRefundProcessed)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)

		_, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCancelled, TransitionContext{})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		f.inventoryRepo.AssertNotCalled(t, "FindAdjustmentsByReference", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a failed reversal blocks the cancellation", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateValidated)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.inventoryRepo.On("FindAdjustmentsByReference", ctx, f.tenantID, rt.ReturnNumber).
			Return(nil, shared.ErrPersistenceFailed)

		_, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCancelled, TransitionContext{})
		assert.ErrorIs(t, err, shared.ErrPersistenceFailed)
		assert.Equal(t, returns.WorkflowStateValidated, rt.WorkflowState)
		f.returnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.returnRepo.AssertNotCalled(t, "SaveWithLockAndAdjust", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("an audit write failure does not block the transition", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateInitiated)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.returnRepo.On("SaveWithLock", ctx, rt).Return(nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(errors.New("audit store down"))

		resp, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateValidated, TransitionContext{})
		require.NoError(t, err)
		assert.Equal(t, string(returns.WorkflowStateValidated), resp.WorkflowState)
	})

	t.Run("completion stamps the completed timestamp", func(t *testing.T) {
		f := newEngineFixture()
		rt := persistedReturn(t, f.tenantID, returns.ReturnTypeSale, returns.WorkflowStateRefundProcessed)

		f.returnRepo.On("FindByID", ctx, f.tenantID, rt.ID).Return(rt, nil)
		f.returnRepo.On("SaveWithLock", ctx, rt).Return(nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)

		resp, err := f.engine.Transition(ctx, f.tenantID, rt.ID, returns.WorkflowStateCompleted, TransitionContext{})
		require.NoError(t, err)
		assert.Equal(t, string(returns.WorkflowStateCompleted), resp.WorkflowState)
		assert.NotNil(t, resp.CompletedAt)
	})
}
