package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements returns.TransactionLookup over the
// transaction subsystem's read-only tables
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID returns the original transaction with its lines
func (r *GormTransactionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.OriginalTransaction, error) {
	var original returns.OriginalTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&original).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &original, nil
}

// ReturnedQuantities returns, per original line of the given transaction, the
// total quantity already returned by non-cancelled returns. Cancelled returns
// are excluded so their quantities are restored the moment the cancellation
// commits.
func (r *GormTransactionRepository) ReturnedQuantities(ctx context.Context, tenantID, transactionID uuid.UUID) (returns.ReturnedQuantities, error) {
	type returnedRow struct {
		OriginalLineID uuid.UUID
		Total          decimal.Decimal
	}

	var rows []returnedRow
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnLineItem{}).
		Select("return_line_items.original_line_id, COALESCE(SUM(return_line_items.returned_quantity), 0) AS total").
		Joins("JOIN return_transactions ON return_transactions.id = return_line_items.return_id").
		Where("return_transactions.tenant_id = ?", tenantID).
		Where("return_transactions.original_transaction_id = ?", transactionID).
		Where("return_transactions.workflow_state <> ?", returns.WorkflowStateCancelled).
		Group("return_line_items.original_line_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	quantities := make(returns.ReturnedQuantities, len(rows))
	for _, row := range rows {
		quantities[row.OriginalLineID] = row.Total
	}
	return quantities, nil
}

// Ensure GormTransactionRepository implements TransactionLookup
var _ returns.TransactionLookup = (*GormTransactionRepository)(nil)
