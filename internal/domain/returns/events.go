package returns

import (
	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for ReturnTransaction
const AggregateTypeReturn = "ReturnTransaction"

// Event type constants for ReturnTransaction
const (
	EventTypeReturnInitiated    = "ReturnInitiated"
	EventTypeReturnTransitioned = "ReturnTransitioned"
)

// ReturnLineInfo carries line information inside events
type ReturnLineInfo struct {
	LineID           uuid.UUID       `json:"line_id"`
	OriginalLineID   uuid.UUID       `json:"original_line_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	ItemSKU          string          `json:"item_sku"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	ConditionCode    ConditionCode   `json:"condition_code"`
}

func lineInfos(rt *ReturnTransaction) []ReturnLineInfo {
	infos := make([]ReturnLineInfo, len(rt.Lines))
	for i, line := range rt.Lines {
		infos[i] = ReturnLineInfo{
			LineID:           line.ID,
			OriginalLineID:   line.OriginalLineID,
			ItemID:           line.ItemID,
			ItemSKU:          line.ItemSKU,
			ReturnedQuantity: line.ReturnedQuantity,
			ConditionCode:    line.ConditionCode,
		}
	}
	return infos
}

// ReturnInitiatedEvent is raised when a new return transaction is created
type ReturnInitiatedEvent struct {
	shared.BaseDomainEvent
	ReturnID              uuid.UUID  `json:"return_id"`
	ReturnNumber          string     `json:"return_number"`
	ReturnType            ReturnType `json:"return_type"`
	OriginalTransactionID uuid.UUID  `json:"original_transaction_id"`
	ReasonCode            string     `json:"reason_code"`
}

// NewReturnInitiatedEvent creates a new ReturnInitiatedEvent
func NewReturnInitiatedEvent(rt *ReturnTransaction) *ReturnInitiatedEvent {
	return &ReturnInitiatedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeReturnInitiated, AggregateTypeReturn, rt.ID, rt.TenantID),
		ReturnID:              rt.ID,
		ReturnNumber:          rt.ReturnNumber,
		ReturnType:            rt.ReturnType,
		OriginalTransactionID: rt.OriginalTransactionID,
		ReasonCode:            rt.ReasonCode,
	}
}

// EventType returns the event type name
func (e *ReturnInitiatedEvent) EventType() string {
	return EventTypeReturnInitiated
}

// ReturnTransitionedEvent is raised on every committed workflow transition,
// including cancellation. Downstream contexts (inventory, finance,
// notification) subscribe on the target state.
type ReturnTransitionedEvent struct {
	shared.BaseDomainEvent
	ReturnID              uuid.UUID        `json:"return_id"`
	ReturnNumber          string           `json:"return_number"`
	ReturnType            ReturnType       `json:"return_type"`
	OriginalTransactionID uuid.UUID        `json:"original_transaction_id"`
	FromState             WorkflowState    `json:"from_state"`
	ToState               WorkflowState    `json:"to_state"`
	RefundAmount          decimal.Decimal  `json:"refund_amount"`
	ReceivableAmount      decimal.Decimal  `json:"receivable_amount"`
	Lines                 []ReturnLineInfo `json:"lines"`
	CancelReason          string           `json:"cancel_reason,omitempty"`
}

// NewReturnTransitionedEvent creates a new ReturnTransitionedEvent
func NewReturnTransitionedEvent(rt *ReturnTransaction, from, to WorkflowState) *ReturnTransitionedEvent {
	return &ReturnTransitionedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeReturnTransitioned, AggregateTypeReturn, rt.ID, rt.TenantID),
		ReturnID:              rt.ID,
		ReturnNumber:          rt.ReturnNumber,
		ReturnType:            rt.ReturnType,
		OriginalTransactionID: rt.OriginalTransactionID,
		FromState:             from,
		ToState:               to,
		RefundAmount:          rt.RefundAmount,
		ReceivableAmount:      rt.ReceivableAmount,
		Lines:                 lineInfos(rt),
		CancelReason:          rt.CancelReason,
	}
}

// EventType returns the event type name
func (e *ReturnTransitionedEvent) EventType() string {
	return EventTypeReturnTransitioned
}
