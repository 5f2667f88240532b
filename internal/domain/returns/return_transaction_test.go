package returns

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOriginalTransaction(returnType ReturnType) *OriginalTransaction {
	txID := uuid.New()
	return &OriginalTransaction{
		ID:                txID,
		TenantID:          uuid.New(),
		TransactionNumber: "TX-2026-00042",
		Type:              returnType,
		TransactionDate:   time.Now().AddDate(0, 0, -5),
		TotalAmount:       decimal.NewFromInt(100),
		Lines: []OriginalTransactionLine{
			{
				ID:            uuid.New(),
				TransactionID: txID,
				ItemID:        uuid.New(),
				ItemName:      "Cordless Drill",
				ItemSKU:       "DRL-100",
				Quantity:      decimal.NewFromInt(2),
				UnitPrice:     decimal.NewFromInt(50),
			},
		},
	}
}

func testReturn(t *testing.T, returnType ReturnType) (*ReturnTransaction, *OriginalTransaction) {
	t.Helper()
	original := testOriginalTransaction(returnType)
	rt, err := NewReturnTransaction(
		original.TenantID, "RT-2026-00001", original, returnType,
		time.Now(), "CUSTOMER_REMORSE", uuid.New(),
	)
	require.NoError(t, err)
	return rt, original
}

func TestNewReturnTransaction(t *testing.T) {
	t.Run("creates return in INITIATED state", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)

		assert.Equal(t, WorkflowStateInitiated, rt.WorkflowState)
		assert.Equal(t, original.ID, rt.OriginalTransactionID)
		assert.Equal(t, original.TransactionNumber, rt.OriginalTransactionNumber)
		assert.True(t, rt.RefundAmount.IsZero())
		assert.Len(t, rt.Lines, 0)

		events := rt.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeReturnInitiated, events[0].EventType())
	})

	t.Run("rejects empty return number", func(t *testing.T) {
		original := testOriginalTransaction(ReturnTypeSale)
		_, err := NewReturnTransaction(original.TenantID, "", original, ReturnTypeSale, time.Now(), "DEFECT", uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects type mismatch with original", func(t *testing.T) {
		original := testOriginalTransaction(ReturnTypeSale)
		_, err := NewReturnTransaction(original.TenantID, "RT-2026-00002", original, ReturnTypeRental, time.Now(), "DEFECT", uuid.New())
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TYPE_MISMATCH", domainErr.Code)
	})

	t.Run("rejects empty reason code", func(t *testing.T) {
		original := testOriginalTransaction(ReturnTypeSale)
		_, err := NewReturnTransaction(original.TenantID, "RT-2026-00003", original, ReturnTypeSale, time.Now(), "", uuid.New())
		assert.Error(t, err)
	})
}

func TestReturnTransactionAddLine(t *testing.T) {
	t.Run("adds a line for an original line", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)

		line, err := rt.AddLine(&original.Lines[0], decimal.NewFromInt(1), ConditionNew)
		require.NoError(t, err)
		assert.Equal(t, original.Lines[0].ID, line.OriginalLineID)
		assert.Equal(t, "50", line.UnitPrice.String())
		assert.Equal(t, 1, rt.LineCount())
	})

	t.Run("rejects duplicate original line", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)

		_, err := rt.AddLine(&original.Lines[0], decimal.NewFromInt(1), ConditionNew)
		require.NoError(t, err)
		_, err = rt.AddLine(&original.Lines[0], decimal.NewFromInt(1), ConditionNew)
		assert.Error(t, err)
	})

	t.Run("rejects quantity over original line quantity", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)

		_, err := rt.AddLine(&original.Lines[0], decimal.NewFromInt(3), ConditionNew)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)

		_, err := rt.AddLine(&original.Lines[0], decimal.Zero, ConditionNew)
		assert.Error(t, err)
	})

	t.Run("rejects lines once the return leaves INITIATED", func(t *testing.T) {
		rt, original := testReturn(t, ReturnTypeSale)
		require.NoError(t, rt.TransitionTo(WorkflowStateValidated))

		_, err := rt.AddLine(&original.Lines[0], decimal.NewFromInt(1), ConditionNew)
		assert.Error(t, err)
	})
}

func TestReturnTransactionFinancials(t *testing.T) {
	breakdown := FinancialBreakdown{
		Subtotal: decimal.NewFromInt(95),
		Fees: []FeeLine{
			{Kind: FeeKindRestocking, Description: "restocking fee", Amount: decimal.RequireFromString("14.25")},
		},
		NetRefund:  decimal.RequireFromString("80.75"),
		Receivable: decimal.Zero,
	}

	t.Run("applies the breakdown once", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)

		require.NoError(t, rt.ApplyFinancials(breakdown))
		assert.Equal(t, "80.75", rt.RefundAmount.String())
		assert.Equal(t, "14.25", rt.RestockingFee.String())
		assert.Equal(t, "14.25", rt.FeeTotal.String())
		assert.NotNil(t, rt.FinancialsSetAt)
	})

	t.Run("rejects a second write", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)

		require.NoError(t, rt.ApplyFinancials(breakdown))
		err := rt.ApplyFinancials(breakdown)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FINANCIALS_FINAL", domainErr.Code)
	})
}

func TestReturnTransactionTransitions(t *testing.T) {
	t.Run("walks the full lifecycle", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeRental)

		for _, target := range []WorkflowState{
			WorkflowStateValidated,
			WorkflowStateItemsReceived,
			WorkflowStateInspectionPending,
			WorkflowStateInspectionComplete,
			WorkflowStateRefundApproved,
			WorkflowStateRefundProcessed,
			WorkflowStateCompleted,
		} {
			require.NoError(t, rt.TransitionTo(target))
			assert.Equal(t, target, rt.WorkflowState)
		}
		assert.NotNil(t, rt.CompletedAt)
	})

	t.Run("direct INITIATED to COMPLETED fails and state is unchanged", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)

		err := rt.TransitionTo(WorkflowStateCompleted)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		assert.Equal(t, WorkflowStateInitiated, rt.WorkflowState)
	})

	t.Run("re-entering the current state is a no-op", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		require.NoError(t, rt.TransitionTo(WorkflowStateValidated))
		eventsBefore := len(rt.GetDomainEvents())

		require.NoError(t, rt.TransitionTo(WorkflowStateValidated))
		assert.Equal(t, WorkflowStateValidated, rt.WorkflowState)
		assert.Len(t, rt.GetDomainEvents(), eventsBefore)
	})

	t.Run("each committed transition raises an event", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		rt.ClearDomainEvents()

		require.NoError(t, rt.TransitionTo(WorkflowStateValidated))
		events := rt.GetDomainEvents()
		require.Len(t, events, 1)

		transitioned, ok := events[0].(*ReturnTransitionedEvent)
		require.True(t, ok)
		assert.Equal(t, WorkflowStateInitiated, transitioned.FromState)
		assert.Equal(t, WorkflowStateValidated, transitioned.ToState)
	})
}

func TestReturnTransactionCancel(t *testing.T) {
	t.Run("cancels before refund processing", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		require.NoError(t, rt.TransitionTo(WorkflowStateValidated))

		require.NoError(t, rt.Cancel("customer withdrew request"))
		assert.True(t, rt.IsCancelled())
		assert.NotNil(t, rt.CancelledAt)
		assert.Equal(t, "customer withdrew request", rt.CancelReason)
		assert.False(t, rt.CountsAgainstReturnable())
	})

	t.Run("rejects cancellation after refund processed", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		for _, target := range []WorkflowState{
			WorkflowStateValidated, WorkflowStateItemsReceived,
			WorkflowStateRefundApproved, WorkflowStateRefundProcessed,
		} {
			require.NoError(t, rt.TransitionTo(target))
		}

		err := rt.Cancel("too late")
		assert.Error(t, err)
		assert.Equal(t, WorkflowStateRefundProcessed, rt.WorkflowState)
	})

	t.Run("requires a reason", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		assert.Error(t, rt.Cancel(""))
	})
}

func TestReturnTransactionExchange(t *testing.T) {
	t.Run("links an exchange on a sale return", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypeSale)
		replacement := uuid.New()

		require.NoError(t, rt.LinkExchange(replacement))
		require.NotNil(t, rt.ExchangeTransactionID)
		assert.Equal(t, replacement, *rt.ExchangeTransactionID)
	})

	t.Run("rejects exchange on non-sale returns", func(t *testing.T) {
		rt, _ := testReturn(t, ReturnTypePurchase)
		assert.Error(t, rt.LinkExchange(uuid.New()))
	})
}

func TestReturnLineItemDetails(t *testing.T) {
	rt, original := testReturn(t, ReturnTypeRental)
	line, err := rt.AddLine(&original.Lines[0], decimal.NewFromInt(1), ConditionSoiled)
	require.NoError(t, err)

	t.Run("defaults before details are set", func(t *testing.T) {
		assert.True(t, line.IsPackagingIntact())
		assert.False(t, line.IsSupplierFault())
		assert.True(t, line.FunctionalityPassed())
	})

	t.Run("rental details", func(t *testing.T) {
		line.SetRentalDetails("scratched housing", false, decimal.NewFromInt(25))
		assert.False(t, line.FunctionalityPassed())
		require.NotNil(t, line.RepairCostEstimate)
		assert.Equal(t, "25", line.RepairCostEstimate.String())
	})

	t.Run("subtotal", func(t *testing.T) {
		assert.Equal(t, "50", line.Subtotal().String())
	})

	t.Run("soiled condition requires cleaning", func(t *testing.T) {
		assert.True(t, ConditionSoiled.RequiresCleaning())
		assert.False(t, ConditionUsed.RequiresCleaning())
	})
}
