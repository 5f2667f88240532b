package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// CreateReturnRequest represents a request to create a return transaction
type CreateReturnRequest struct {
	OriginalTransactionID uuid.UUID                `json:"original_transaction_id" binding:"required"`
	ReturnType            returns.ReturnType       `json:"return_type" binding:"required,oneof=SALE PURCHASE RENTAL"`
	ReturnDate            time.Time                `json:"return_date" binding:"required"`
	ReasonCode            string                   `json:"reason_code" binding:"required,min=1,max=50"`
	LocationID            uuid.UUID                `json:"location_id" binding:"required"`
	Lines                 []CreateReturnLineInput  `json:"lines" binding:"required,min=1,dive"`
	RMAReference          string                   `json:"rma_reference"`
	ExchangeTransactionID *uuid.UUID               `json:"exchange_transaction_id"`
	ActualReturnDate      *time.Time               `json:"actual_return_date"` // rentals: when the goods came back
	Metadata              map[string]any           `json:"metadata"`
	ProcessedBy           uuid.UUID                `json:"-"` // from JWT context via handler
}

// CreateReturnLineInput represents one line in the create request.
// The type-specific fields matching the request's return type apply;
// the rest are ignored.
type CreateReturnLineInput struct {
	OriginalLineID   uuid.UUID             `json:"original_line_id" binding:"required"`
	ReturnedQuantity decimal.Decimal       `json:"returned_quantity" binding:"required"`
	ConditionCode    returns.ConditionCode `json:"condition_code" binding:"required,oneof=NEW OPENED USED DAMAGED SOILED"`

	// Sale
	PackagingIntact *bool `json:"packaging_intact"`
	RequiresTesting *bool `json:"requires_testing"`

	// Purchase
	DefectCode    *string `json:"defect_code"`
	BatchNumber   *string `json:"batch_number"`
	SupplierFault *bool   `json:"supplier_fault"`

	// Rental
	DamageAssessment    *string          `json:"damage_assessment"`
	FunctionalityPassed *bool            `json:"functionality_passed"`
	RepairCostEstimate  *decimal.Decimal `json:"repair_cost_estimate"`
}

// TransitionRequest advances a return's workflow to a target state
type TransitionRequest struct {
	TargetState returns.WorkflowState `json:"target_state" binding:"required"`
	Note        string                `json:"note" binding:"max=500"`
	Actor       uuid.UUID             `json:"-"` // from JWT context via handler
}

// InspectionLineInput carries the inspection outcome for one return line
type InspectionLineInput struct {
	LineID              uuid.UUID        `json:"line_id" binding:"required"`
	FunctionalityPassed bool             `json:"functionality_passed"`
	DamageAssessment    string           `json:"damage_assessment"`
	RepairCostEstimate  *decimal.Decimal `json:"repair_cost_estimate"`
}

// InspectionRequest submits inspection results for a return awaiting inspection
type InspectionRequest struct {
	Lines []InspectionLineInput `json:"lines" binding:"required,min=1,dive"`
	Note  string                `json:"note" binding:"max=500"`
	Actor uuid.UUID             `json:"-"`
}

// CancelRequest cancels a return before its refund is processed
type CancelRequest struct {
	Reason string    `json:"reason" binding:"required,min=1,max=500"`
	Actor  uuid.UUID `json:"-"`
}

// ReturnListFilter represents filter options for the return list
type ReturnListFilter struct {
	Search                string     `form:"search"`
	ReturnType            *string    `form:"return_type" binding:"omitempty,oneof=SALE PURCHASE RENTAL"`
	State                 *string    `form:"state"`
	OriginalTransactionID *uuid.UUID `form:"original_transaction_id"`
	StartDate             *time.Time `form:"start_date"`
	EndDate               *time.Time `form:"end_date"`
	Page                  int        `form:"page" binding:"omitempty,min=1"`
	PageSize              int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy               string     `form:"order_by"`
	OrderDir              string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// FeeLineResponse is one itemized fee in a breakdown response
type FeeLineResponse struct {
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// FinancialBreakdownResponse is the financial result of a return
type FinancialBreakdownResponse struct {
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Fees       []FeeLineResponse `json:"fees"`
	FeeTotal   decimal.Decimal   `json:"fee_total"`
	NetRefund  decimal.Decimal   `json:"net_refund"`
	Receivable decimal.Decimal   `json:"receivable"`
}

// ReturnLineResponse represents a return line in API responses
type ReturnLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	OriginalLineID   uuid.UUID       `json:"original_line_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	ItemName         string          `json:"item_name"`
	ItemSKU          string          `json:"item_sku"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ConditionCode    string          `json:"condition_code"`

	PackagingIntact *bool `json:"packaging_intact,omitempty"`
	RequiresTesting *bool `json:"requires_testing,omitempty"`

	DefectCode    *string `json:"defect_code,omitempty"`
	BatchNumber   *string `json:"batch_number,omitempty"`
	SupplierFault *bool   `json:"supplier_fault,omitempty"`

	DamageAssessment   *string          `json:"damage_assessment,omitempty"`
	FunctionalityCheck *bool            `json:"functionality_check,omitempty"`
	RepairCostEstimate *decimal.Decimal `json:"repair_cost_estimate,omitempty"`
}

// ReturnResponse represents a return transaction in API responses
type ReturnResponse struct {
	ID                        uuid.UUID                   `json:"id"`
	TenantID                  uuid.UUID                   `json:"tenant_id"`
	ReturnNumber              string                      `json:"return_number"`
	OriginalTransactionID     uuid.UUID                   `json:"original_transaction_id"`
	OriginalTransactionNumber string                      `json:"original_transaction_number"`
	ReturnType                string                      `json:"return_type"`
	ReturnDate                time.Time                   `json:"return_date"`
	ReasonCode                string                      `json:"reason_code"`
	ProcessedBy               uuid.UUID                   `json:"processed_by"`
	WorkflowState             string                      `json:"workflow_state"`
	RefundAmount              decimal.Decimal             `json:"refund_amount"`
	RestockingFee             decimal.Decimal             `json:"restocking_fee"`
	FeeTotal                  decimal.Decimal             `json:"fee_total"`
	ReceivableAmount          decimal.Decimal             `json:"receivable_amount"`
	ExchangeTransactionID     *uuid.UUID                  `json:"exchange_transaction_id,omitempty"`
	RMAReference              string                      `json:"rma_reference,omitempty"`
	Lines                     []ReturnLineResponse        `json:"lines"`
	Metadata                  map[string]any              `json:"metadata,omitempty"`
	Breakdown                 *FinancialBreakdownResponse `json:"breakdown,omitempty"`
	CancelledAt               *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason              string                      `json:"cancel_reason,omitempty"`
	CompletedAt               *time.Time                  `json:"completed_at,omitempty"`
	CreatedAt                 time.Time                   `json:"created_at"`
	UpdatedAt                 time.Time                   `json:"updated_at"`
	Version                   int                         `json:"version"`
}

// ReturnListItemResponse represents a return in list responses
type ReturnListItemResponse struct {
	ID                    uuid.UUID       `json:"id"`
	ReturnNumber          string          `json:"return_number"`
	OriginalTransactionID uuid.UUID       `json:"original_transaction_id"`
	ReturnType            string          `json:"return_type"`
	ReturnDate            time.Time       `json:"return_date"`
	ReasonCode            string          `json:"reason_code"`
	WorkflowState         string          `json:"workflow_state"`
	RefundAmount          decimal.Decimal `json:"refund_amount"`
	LineCount             int             `json:"line_count"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// AuditLogResponse is one workflow transition record
type AuditLogResponse struct {
	ID        uuid.UUID `json:"id"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Actor     uuid.UUID `json:"actor"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StateSummaryResponse represents return counts per workflow state
type StateSummaryResponse struct {
	States map[string]int64 `json:"states"`
	Total  int64            `json:"total"`
}

// ViolationResponse is one validation failure in an error payload
type ViolationResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	LineID  string `json:"line_id,omitempty"`
	Message string `json:"message"`
}

// ==================== Converters ====================

// ToFinancialBreakdownResponse converts a domain breakdown to a response DTO
func ToFinancialBreakdownResponse(b returns.FinancialBreakdown) FinancialBreakdownResponse {
	fees := make([]FeeLineResponse, len(b.Fees))
	for i, fee := range b.Fees {
		fees[i] = FeeLineResponse{
			Kind:        string(fee.Kind),
			Description: fee.Description,
			Amount:      fee.Amount,
		}
	}
	return FinancialBreakdownResponse{
		Subtotal:   b.Subtotal,
		Fees:       fees,
		FeeTotal:   b.TotalFees(),
		NetRefund:  b.NetRefund,
		Receivable: b.Receivable,
	}
}

// ToReturnLineResponse converts a domain line to a response DTO
func ToReturnLineResponse(line *returns.ReturnLineItem) ReturnLineResponse {
	return ReturnLineResponse{
		ID:                 line.ID,
		OriginalLineID:     line.OriginalLineID,
		ItemID:             line.ItemID,
		ItemName:           line.ItemName,
		ItemSKU:            line.ItemSKU,
		ReturnedQuantity:   line.ReturnedQuantity,
		UnitPrice:          line.UnitPrice,
		ConditionCode:      string(line.ConditionCode),
		PackagingIntact:    line.PackagingIntact,
		RequiresTesting:    line.RequiresTesting,
		DefectCode:         line.DefectCode,
		BatchNumber:        line.BatchNumber,
		SupplierFault:      line.SupplierFault,
		DamageAssessment:   line.DamageAssessment,
		FunctionalityCheck: line.FunctionalityCheck,
		RepairCostEstimate: line.RepairCostEstimate,
	}
}

// ToReturnResponse converts a domain return to a response DTO
func ToReturnResponse(rt *returns.ReturnTransaction) ReturnResponse {
	lines := make([]ReturnLineResponse, len(rt.Lines))
	for i := range rt.Lines {
		lines[i] = ToReturnLineResponse(&rt.Lines[i])
	}

	var metadata map[string]any
	if rt.Metadata != nil {
		metadata = map[string]any(rt.Metadata.Attributes)
	}

	return ReturnResponse{
		ID:                        rt.ID,
		TenantID:                  rt.TenantID,
		ReturnNumber:              rt.ReturnNumber,
		OriginalTransactionID:     rt.OriginalTransactionID,
		OriginalTransactionNumber: rt.OriginalTransactionNumber,
		ReturnType:                string(rt.ReturnType),
		ReturnDate:                rt.ReturnDate,
		ReasonCode:                rt.ReasonCode,
		ProcessedBy:               rt.ProcessedBy,
		WorkflowState:             string(rt.WorkflowState),
		RefundAmount:              rt.RefundAmount,
		RestockingFee:             rt.RestockingFee,
		FeeTotal:                  rt.FeeTotal,
		ReceivableAmount:          rt.ReceivableAmount,
		ExchangeTransactionID:     rt.ExchangeTransactionID,
		RMAReference:              rt.RMAReference,
		Lines:                     lines,
		Metadata:                  metadata,
		CancelledAt:               rt.CancelledAt,
		CancelReason:              rt.CancelReason,
		CompletedAt:               rt.CompletedAt,
		CreatedAt:                 rt.CreatedAt,
		UpdatedAt:                 rt.UpdatedAt,
		Version:                   rt.Version,
	}
}

// ToReturnListItemResponse converts a domain return to a list item DTO
func ToReturnListItemResponse(rt *returns.ReturnTransaction) ReturnListItemResponse {
	return ReturnListItemResponse{
		ID:                    rt.ID,
		ReturnNumber:          rt.ReturnNumber,
		OriginalTransactionID: rt.OriginalTransactionID,
		ReturnType:            string(rt.ReturnType),
		ReturnDate:            rt.ReturnDate,
		ReasonCode:            rt.ReasonCode,
		WorkflowState:         string(rt.WorkflowState),
		RefundAmount:          rt.RefundAmount,
		LineCount:             rt.LineCount(),
		CreatedAt:             rt.CreatedAt,
		UpdatedAt:             rt.UpdatedAt,
	}
}

// ToReturnListItemResponses converts a slice of domain returns
func ToReturnListItemResponses(items []returns.ReturnTransaction) []ReturnListItemResponse {
	out := make([]ReturnListItemResponse, len(items))
	for i := range items {
		out[i] = ToReturnListItemResponse(&items[i])
	}
	return out
}

// ToAuditLogResponses converts audit records to response DTOs
func ToAuditLogResponses(logs []returns.ReturnAuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, len(logs))
	for i, log := range logs {
		out[i] = AuditLogResponse{
			ID:        log.ID,
			FromState: string(log.FromState),
			ToState:   string(log.ToState),
			Actor:     log.Actor,
			Note:      log.Note,
			CreatedAt: log.CreatedAt,
		}
	}
	return out
}

// ToViolationResponses converts domain violations to response DTOs
func ToViolationResponses(violations returns.Violations) []ViolationResponse {
	out := make([]ViolationResponse, len(violations))
	for i, v := range violations {
		resp := ViolationResponse{
			Code:    v.Code,
			Field:   v.Field,
			Message: v.Message,
		}
		if v.LineID != uuid.Nil {
			resp.LineID = v.LineID.String()
		}
		out[i] = resp
	}
	return out
}
