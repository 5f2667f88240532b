package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OriginalTransactionLine is a read-only line of the transaction being
// reversed. Rental pricing fields are zero-valued for sale/purchase lines.
type OriginalTransactionLine struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	ItemID        uuid.UUID
	ItemName      string
	ItemSKU       string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal

	// Rental line pricing
	DailyLateRate       decimal.Decimal
	ReplacementValue    decimal.Decimal
	MandatoryFullReturn bool // line must be returned in full, partials rejected
}

// TableName returns the table name for GORM
func (OriginalTransactionLine) TableName() string {
	return "original_transaction_lines"
}

// OriginalTransaction is the read-only reference to the sale, purchase, or
// rental record being reversed. It is owned by the transaction subsystem and
// never mutated here.
type OriginalTransaction struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	TransactionNumber string
	Type              ReturnType
	TransactionDate   time.Time
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	TotalAmount       decimal.Decimal
	Lines             []OriginalTransactionLine `gorm:"foreignKey:TransactionID;references:ID"`

	// Rental terms
	ScheduledEndDate *time.Time
	HeldDeposit      decimal.Decimal

	// Purchase return shipping terms
	ReturnShippingCost decimal.Decimal
	ShippingBuyerBorne bool
}

// TableName returns the table name for GORM
func (OriginalTransaction) TableName() string {
	return "original_transactions"
}

// GetLine returns the line with the given ID, or nil
func (t *OriginalTransaction) GetLine(lineID uuid.UUID) *OriginalTransactionLine {
	for idx := range t.Lines {
		if t.Lines[idx].ID == lineID {
			return &t.Lines[idx]
		}
	}
	return nil
}

// ReturnedQuantities maps an original line ID to the summed returned
// quantity across all persisted, non-cancelled returns of that line
type ReturnedQuantities map[uuid.UUID]decimal.Decimal

// Remaining returns how much of the line's original quantity is still returnable
func (q ReturnedQuantities) Remaining(line *OriginalTransactionLine) decimal.Decimal {
	return line.Quantity.Sub(q[line.ID])
}

// TransactionLookup resolves original transactions and their already-returned
// sums. Implemented by the persistence layer over the transaction subsystem's
// tables; consumed here as an opaque collaborator.
type TransactionLookup interface {
	// FindByID returns the original transaction with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*OriginalTransaction, error)

	// ReturnedQuantities returns, per original line of the given transaction,
	// the total quantity already returned by non-cancelled returns
	ReturnedQuantities(ctx context.Context, tenantID, transactionID uuid.UUID) (ReturnedQuantities, error)
}
