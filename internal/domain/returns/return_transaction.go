package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnType discriminates the three kinds of reversible transactions
type ReturnType string

const (
	ReturnTypeSale     ReturnType = "SALE"
	ReturnTypePurchase ReturnType = "PURCHASE"
	ReturnTypeRental   ReturnType = "RENTAL"
)

// IsValid checks if the type is a known ReturnType
func (t ReturnType) IsValid() bool {
	switch t {
	case ReturnTypeSale, ReturnTypePurchase, ReturnTypeRental:
		return true
	}
	return false
}

// String returns the string representation of ReturnType
func (t ReturnType) String() string {
	return string(t)
}

// ConditionCode describes the physical state of a returned item
type ConditionCode string

const (
	ConditionNew     ConditionCode = "NEW"
	ConditionOpened  ConditionCode = "OPENED"
	ConditionUsed    ConditionCode = "USED"
	ConditionDamaged ConditionCode = "DAMAGED"
	ConditionSoiled  ConditionCode = "SOILED" // rental item needing cleaning before re-rent
)

// IsValid checks if the code is a known ConditionCode
func (c ConditionCode) IsValid() bool {
	switch c {
	case ConditionNew, ConditionOpened, ConditionUsed, ConditionDamaged, ConditionSoiled:
		return true
	}
	return false
}

// String returns the string representation of ConditionCode
func (c ConditionCode) String() string {
	return string(c)
}

// RequiresCleaning reports whether this condition routes a rental unit
// through cleaning before it can be rented again
func (c ConditionCode) RequiresCleaning() bool {
	return c == ConditionSoiled
}

// ReturnLineItem represents a line item in a return transaction.
// The per-type detail fields are nullable; exactly one group is populated,
// matching the parent transaction's ReturnType.
type ReturnLineItem struct {
	ID               uuid.UUID
	ReturnID         uuid.UUID
	OriginalLineID   uuid.UUID // Reference to the original transaction line
	ItemID           uuid.UUID
	ItemName         string
	ItemSKU          string
	ReturnedQuantity decimal.Decimal
	UnitPrice        decimal.Decimal // Price per unit, from the original line
	ConditionCode    ConditionCode

	// Sale return details
	PackagingIntact *bool
	RequiresTesting *bool

	// Purchase return details
	DefectCode    *string
	BatchNumber   *string
	SupplierFault *bool

	// Rental return details
	DamageAssessment   *string
	FunctionalityCheck *bool // true when the unit passed its functional check
	RepairCostEstimate *decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ReturnLineItem) TableName() string {
	return "return_line_items"
}

// NewReturnLineItem creates a new return line item against an original line
func NewReturnLineItem(
	returnID uuid.UUID,
	originalLine *OriginalTransactionLine,
	returnedQuantity decimal.Decimal,
	condition ConditionCode,
) (*ReturnLineItem, error) {
	if originalLine == nil {
		return nil, shared.NewDomainError("INVALID_LINE", "Original transaction line cannot be nil")
	}
	if returnedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if returnedQuantity.GreaterThan(originalLine.Quantity) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity cannot exceed original line quantity")
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", fmt.Sprintf("Unknown condition code: %s", condition))
	}

	now := time.Now()
	return &ReturnLineItem{
		ID:               uuid.New(),
		ReturnID:         returnID,
		OriginalLineID:   originalLine.ID,
		ItemID:           originalLine.ItemID,
		ItemName:         originalLine.ItemName,
		ItemSKU:          originalLine.ItemSKU,
		ReturnedQuantity: returnedQuantity,
		UnitPrice:        originalLine.UnitPrice,
		ConditionCode:    condition,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// SetSaleDetails attaches the sale-specific payload
func (i *ReturnLineItem) SetSaleDetails(packagingIntact, requiresTesting bool) {
	i.PackagingIntact = &packagingIntact
	i.RequiresTesting = &requiresTesting
	i.UpdatedAt = time.Now()
}

// SetPurchaseDetails attaches the purchase-specific payload
func (i *ReturnLineItem) SetPurchaseDetails(defectCode, batchNumber string, supplierFault bool) {
	i.DefectCode = &defectCode
	i.BatchNumber = &batchNumber
	i.SupplierFault = &supplierFault
	i.UpdatedAt = time.Now()
}

// SetRentalDetails attaches the rental-specific payload
func (i *ReturnLineItem) SetRentalDetails(damageAssessment string, functionalityPassed bool, repairCostEstimate decimal.Decimal) {
	i.DamageAssessment = &damageAssessment
	i.FunctionalityCheck = &functionalityPassed
	i.RepairCostEstimate = &repairCostEstimate
	i.UpdatedAt = time.Now()
}

// IsPackagingIntact returns the sale packaging flag, defaulting to true when unset
func (i *ReturnLineItem) IsPackagingIntact() bool {
	return i.PackagingIntact == nil || *i.PackagingIntact
}

// IsSupplierFault returns the purchase supplier-fault flag, defaulting to false when unset
func (i *ReturnLineItem) IsSupplierFault() bool {
	return i.SupplierFault != nil && *i.SupplierFault
}

// FunctionalityPassed returns the rental functional-check flag, defaulting to true when unset
func (i *ReturnLineItem) FunctionalityPassed() bool {
	return i.FunctionalityCheck == nil || *i.FunctionalityCheck
}

// Subtotal returns ReturnedQuantity * UnitPrice without any fee applied
func (i *ReturnLineItem) Subtotal() decimal.Decimal {
	return i.ReturnedQuantity.Mul(i.UnitPrice)
}

// ReturnTransaction is the aggregate root for a return of a sale, purchase,
// or rental transaction. Financial fields are written once at creation and
// never recomputed; corrections require a new return. The workflow state is
// mutated only through TransitionTo.
type ReturnTransaction struct {
	shared.TenantAggregateRoot
	ReturnNumber              string
	OriginalTransactionID     uuid.UUID
	OriginalTransactionNumber string
	ReturnType                ReturnType
	ReturnDate                time.Time
	ReasonCode                string
	ProcessedBy               uuid.UUID
	LocationID                uuid.UUID // where returned goods are received or shipped from
	WorkflowState             WorkflowState
	RefundAmount              decimal.Decimal
	RestockingFee             decimal.Decimal
	FeeTotal                  decimal.Decimal
	ReceivableAmount          decimal.Decimal
	ExchangeTransactionID     *uuid.UUID // Replacement transaction credited instead of a cash refund
	RMAReference              string     // Supplier authorization, mandatory for purchase returns
	Lines                     []ReturnLineItem `gorm:"foreignKey:ReturnID;references:ID"`
	Metadata                  *ReturnMetadata  `gorm:"foreignKey:ReturnID;references:ID"`
	FinancialsSetAt           *time.Time
	CancelledAt               *time.Time
	CancelReason              string
	CompletedAt               *time.Time
}

// TableName returns the table name for GORM
func (ReturnTransaction) TableName() string {
	return "return_transactions"
}

// NewReturnTransaction creates a new return transaction in the INITIATED state
func NewReturnTransaction(
	tenantID uuid.UUID,
	returnNumber string,
	original *OriginalTransaction,
	returnType ReturnType,
	returnDate time.Time,
	reasonCode string,
	processedBy uuid.UUID,
) (*ReturnTransaction, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if len(returnNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot exceed 50 characters")
	}
	if original == nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Original transaction cannot be nil")
	}
	if !returnType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", fmt.Sprintf("Unknown return type: %s", returnType))
	}
	if original.Type != returnType {
		return nil, shared.NewDomainError("TYPE_MISMATCH",
			fmt.Sprintf("Return type %s does not match original transaction type %s", returnType, original.Type))
	}
	if reasonCode == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason code cannot be empty")
	}
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROCESSOR", "Processed-by user ID cannot be empty")
	}

	rt := &ReturnTransaction{
		TenantAggregateRoot:       shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:              returnNumber,
		OriginalTransactionID:     original.ID,
		OriginalTransactionNumber: original.TransactionNumber,
		ReturnType:                returnType,
		ReturnDate:                returnDate,
		ReasonCode:                reasonCode,
		ProcessedBy:               processedBy,
		WorkflowState:             WorkflowStateInitiated,
		RefundAmount:              decimal.Zero,
		RestockingFee:             decimal.Zero,
		FeeTotal:                  decimal.Zero,
		ReceivableAmount:          decimal.Zero,
		Lines:                     make([]ReturnLineItem, 0),
	}

	rt.AddDomainEvent(NewReturnInitiatedEvent(rt))

	return rt, nil
}

// AddLine adds a line item for an original transaction line.
// Only allowed while the return is still in INITIATED state.
func (r *ReturnTransaction) AddLine(
	originalLine *OriginalTransactionLine,
	returnedQuantity decimal.Decimal,
	condition ConditionCode,
) (*ReturnLineItem, error) {
	if r.WorkflowState != WorkflowStateInitiated {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a return past initiation")
	}

	for _, line := range r.Lines {
		if line.OriginalLineID == originalLine.ID {
			return nil, shared.NewDomainError("DUPLICATE_LINE", "Original line already present in return")
		}
	}

	line, err := NewReturnLineItem(r.ID, originalLine, returnedQuantity, condition)
	if err != nil {
		return nil, err
	}

	r.Lines = append(r.Lines, *line)
	r.Touch()

	return line, nil
}

// SetLocation records the location receiving or shipping the returned goods
func (r *ReturnTransaction) SetLocation(locationID uuid.UUID) error {
	if locationID == uuid.Nil {
		return shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	r.LocationID = locationID
	r.Touch()
	return nil
}

// SetRMAReference records the supplier's RMA authorization
func (r *ReturnTransaction) SetRMAReference(rma string) {
	r.RMAReference = rma
	r.Touch()
}

// LinkExchange redirects the refund as credit toward a replacement transaction
func (r *ReturnTransaction) LinkExchange(transactionID uuid.UUID) error {
	if transactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Exchange transaction ID cannot be empty")
	}
	if r.ReturnType != ReturnTypeSale {
		return shared.NewDomainError("INVALID_STATE", "Exchange credit is only available for sale returns")
	}
	r.ExchangeTransactionID = &transactionID
	r.Touch()
	return nil
}

// SetMetadata attaches the overflow type-specific attributes.
// At most one metadata record exists per return.
func (r *ReturnTransaction) SetMetadata(attributes map[string]any) error {
	meta, err := NewReturnMetadata(r.ID, r.ReturnType, attributes)
	if err != nil {
		return err
	}
	r.Metadata = meta
	r.Touch()
	return nil
}

// ApplyFinancials writes the computed financial fields. They are set exactly
// once; a second call is rejected so amounts can never drift after creation.
func (r *ReturnTransaction) ApplyFinancials(breakdown FinancialBreakdown) error {
	if r.FinancialsSetAt != nil {
		return shared.NewDomainError("FINANCIALS_FINAL", "Financial fields are written once; issue a new return for corrections")
	}

	now := time.Now()
	r.RefundAmount = breakdown.NetRefund
	r.RestockingFee = breakdown.FeeAmount(FeeKindRestocking)
	r.FeeTotal = breakdown.TotalFees()
	r.ReceivableAmount = breakdown.Receivable
	r.FinancialsSetAt = &now
	r.Touch()

	return nil
}

// TransitionTo moves the return to the target workflow state.
// Re-invoking with the current state is a no-op so retries are safe.
func (r *ReturnTransaction) TransitionTo(target WorkflowState) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Unknown workflow state: %s", target))
	}
	if r.WorkflowState == target {
		return nil
	}
	if !r.WorkflowState.CanTransitionTo(target) {
		return NewInvalidTransitionError(r.WorkflowState, target)
	}

	from := r.WorkflowState
	now := time.Now()
	r.WorkflowState = target
	if target == WorkflowStateCompleted {
		r.CompletedAt = &now
	}
	r.Touch()

	r.AddDomainEvent(NewReturnTransitionedEvent(r, from, target))

	return nil
}

// Cancel cancels the return. Disallowed once the refund has been processed.
func (r *ReturnTransaction) Cancel(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if err := r.TransitionTo(WorkflowStateCancelled); err != nil {
		return err
	}

	now := time.Now()
	r.CancelledAt = &now
	r.CancelReason = reason

	return nil
}

// NewInvalidTransitionError builds the conflict error for a disallowed edge
func NewInvalidTransitionError(from, to WorkflowState) *shared.DomainError {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition return from %s to %s", from, to))
}

// TotalReturnedQuantity returns the sum of all line quantities
func (r *ReturnTransaction) TotalReturnedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.ReturnedQuantity)
	}
	return total
}

// LineCount returns the number of line items in the return
func (r *ReturnTransaction) LineCount() int {
	return len(r.Lines)
}

// GetLineByOriginal returns the line referencing the given original line ID
func (r *ReturnTransaction) GetLineByOriginal(originalLineID uuid.UUID) *ReturnLineItem {
	for idx := range r.Lines {
		if r.Lines[idx].OriginalLineID == originalLineID {
			return &r.Lines[idx]
		}
	}
	return nil
}

// IsCancelled returns true if the return was cancelled
func (r *ReturnTransaction) IsCancelled() bool {
	return r.WorkflowState == WorkflowStateCancelled
}

// IsCompleted returns true if the return reached COMPLETED
func (r *ReturnTransaction) IsCompleted() bool {
	return r.WorkflowState == WorkflowStateCompleted
}

// IsTerminal returns true if the return is in a terminal workflow state
func (r *ReturnTransaction) IsTerminal() bool {
	return r.WorkflowState.IsTerminal()
}

// CountsAgainstReturnable reports whether this return's quantities consume
// the original lines' remaining returnable quantity. Cancelled returns
// restore their quantities immediately.
func (r *ReturnTransaction) CountsAgainstReturnable() bool {
	return !r.IsCancelled()
}
