package partner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
)

// MockTransactionLookup is a mock implementation of returns.TransactionLookup
type MockTransactionLookup struct {
	mock.Mock
}

func (m *MockTransactionLookup) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.OriginalTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.OriginalTransaction), args.Error(1)
}

func (m *MockTransactionLookup) ReturnedQuantities(ctx context.Context, tenantID, transactionID uuid.UUID) (returns.ReturnedQuantities, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(returns.ReturnedQuantities), args.Error(1)
}

// MockSupplierCreditWriter is a mock implementation of partner.SupplierCreditWriter
type MockSupplierCreditWriter struct {
	mock.Mock
}

func (m *MockSupplierCreditWriter) AccrueOwedCredit(ctx context.Context, tenantID, supplierID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, tenantID, supplierID, amount)
	return args.Error(0)
}

func transitionEvent(tenantID, originalID uuid.UUID, returnType returns.ReturnType, toState returns.WorkflowState, refund string) *returns.ReturnTransitionedEvent {
	return &returns.ReturnTransitionedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(returns.EventTypeReturnTransitioned, returns.AggregateTypeReturn, uuid.New(), tenantID),
		ReturnID:              uuid.New(),
		ReturnNumber:          "RT-2026-00042",
		ReturnType:            returnType,
		OriginalTransactionID: originalID,
		FromState:             returns.WorkflowStateRefundProcessed,
		ToState:               toState,
		RefundAmount:          decimal.RequireFromString(refund),
	}
}

func TestReturnCompletedHandler_AccruesSupplierCredit(t *testing.T) {
	txLookup := new(MockTransactionLookup)
	credits := new(MockSupplierCreditWriter)
	handler := NewReturnCompletedHandler(txLookup, credits, zap.NewNop())

	tenantID := uuid.New()
	originalID := uuid.New()
	supplierID := uuid.New()
	amount := decimal.RequireFromString("41.85")

	txLookup.On("FindByID", mock.Anything, tenantID, originalID).
		Return(&returns.OriginalTransaction{
			ID:         originalID,
			TenantID:   tenantID,
			Type:       returns.ReturnTypePurchase,
			SupplierID: &supplierID,
		}, nil)
	credits.On("AccrueOwedCredit", mock.Anything, tenantID, supplierID, amount).Return(nil)

	event := transitionEvent(tenantID, originalID, returns.ReturnTypePurchase, returns.WorkflowStateCompleted, "41.85")
	err := handler.Handle(context.Background(), event)

	require.NoError(t, err)
	credits.AssertExpectations(t)
	txLookup.AssertExpectations(t)
}

func TestReturnCompletedHandler_IgnoresOtherTransitions(t *testing.T) {
	tests := []struct {
		name       string
		returnType returns.ReturnType
		toState    returns.WorkflowState
		refund     string
	}{
		{"sale return completed", returns.ReturnTypeSale, returns.WorkflowStateCompleted, "80.00"},
		{"rental return completed", returns.ReturnTypeRental, returns.WorkflowStateCompleted, "170.00"},
		{"purchase return not yet completed", returns.ReturnTypePurchase, returns.WorkflowStateRefundProcessed, "41.85"},
		{"purchase return with zero credit", returns.ReturnTypePurchase, returns.WorkflowStateCompleted, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txLookup := new(MockTransactionLookup)
			credits := new(MockSupplierCreditWriter)
			handler := NewReturnCompletedHandler(txLookup, credits, zap.NewNop())

			event := transitionEvent(uuid.New(), uuid.New(), tt.returnType, tt.toState, tt.refund)
			err := handler.Handle(context.Background(), event)

			require.NoError(t, err)
			txLookup.AssertNotCalled(t, "FindByID")
			credits.AssertNotCalled(t, "AccrueOwedCredit")
		})
	}
}

func TestReturnCompletedHandler_NoSupplierOnOriginal(t *testing.T) {
	txLookup := new(MockTransactionLookup)
	credits := new(MockSupplierCreditWriter)
	handler := NewReturnCompletedHandler(txLookup, credits, zap.NewNop())

	tenantID := uuid.New()
	originalID := uuid.New()

	txLookup.On("FindByID", mock.Anything, tenantID, originalID).
		Return(&returns.OriginalTransaction{
			ID:       originalID,
			TenantID: tenantID,
			Type:     returns.ReturnTypePurchase,
		}, nil)

	event := transitionEvent(tenantID, originalID, returns.ReturnTypePurchase, returns.WorkflowStateCompleted, "41.85")
	err := handler.Handle(context.Background(), event)

	// No supplier is a data problem worth logging, not a retryable failure
	require.NoError(t, err)
	credits.AssertNotCalled(t, "AccrueOwedCredit")
}

func TestReturnCompletedHandler_LookupFailure(t *testing.T) {
	txLookup := new(MockTransactionLookup)
	credits := new(MockSupplierCreditWriter)
	handler := NewReturnCompletedHandler(txLookup, credits, zap.NewNop())

	tenantID := uuid.New()
	originalID := uuid.New()

	txLookup.On("FindByID", mock.Anything, tenantID, originalID).
		Return(nil, errors.New("connection reset"))

	event := transitionEvent(tenantID, originalID, returns.ReturnTypePurchase, returns.WorkflowStateCompleted, "41.85")
	err := handler.Handle(context.Background(), event)

	require.Error(t, err)
	credits.AssertNotCalled(t, "AccrueOwedCredit")
}

func TestReturnCompletedHandler_UnexpectedEventType(t *testing.T) {
	handler := NewReturnCompletedHandler(new(MockTransactionLookup), new(MockSupplierCreditWriter), zap.NewNop())

	event := returns.NewReturnInitiatedEvent(mustReturnTransaction(t))
	err := handler.Handle(context.Background(), event)

	assert.Error(t, err)
}

func mustReturnTransaction(t *testing.T) *returns.ReturnTransaction {
	t.Helper()

	original := &returns.OriginalTransaction{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Type:     returns.ReturnTypeSale,
	}
	rt, err := returns.NewReturnTransaction(original.TenantID, "RT-2026-00001", original, returns.ReturnTypeSale, time.Now(), "CUSTOMER_REMORSE", uuid.New())
	require.NoError(t, err)
	return rt
}

func TestReturnCompletedHandler_EventTypes(t *testing.T) {
	handler := NewReturnCompletedHandler(new(MockTransactionLookup), new(MockSupplierCreditWriter), zap.NewNop())
	assert.Equal(t, []string{returns.EventTypeReturnTransitioned}, handler.EventTypes())
}
