package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReturnRepository implements returns.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// CreateAtomic persists the return, its lines, its metadata, and the planned
// inventory adjustments in one transaction. The remaining returnable quantity
// of every touched original line is recomputed inside the transaction; any
// oversell rolls the whole unit of work back with a retryable conflict.
func (r *GormReturnRepository) CreateAtomic(ctx context.Context, rt *returns.ReturnTransaction, adjustments []*inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.assertRemainingQuantity(tx, rt); err != nil {
			return err
		}

		if err := tx.Omit("Lines", "Metadata").Create(rt).Error; err != nil {
			return err
		}

		for i := range rt.Lines {
			rt.Lines[i].ReturnID = rt.ID
			if err := tx.Create(&rt.Lines[i]).Error; err != nil {
				return err
			}
		}

		if rt.Metadata != nil {
			rt.Metadata.ReturnID = rt.ID
			if err := tx.Create(rt.Metadata).Error; err != nil {
				return err
			}
		}

		for _, adjustment := range adjustments {
			if err := applyStockAdjustment(tx, adjustment); err != nil {
				return err
			}
		}

		return nil
	})
}

// assertRemainingQuantity recomputes, from already-persisted non-cancelled
// returns, how much of each touched original line is still returnable. A
// concurrent creation that got there first surfaces as a conflict here.
func (r *GormReturnRepository) assertRemainingQuantity(tx *gorm.DB, rt *returns.ReturnTransaction) error {
	type returnedRow struct {
		OriginalLineID uuid.UUID
		Total          decimal.Decimal
	}

	var rows []returnedRow
	err := tx.Model(&returns.ReturnLineItem{}).
		Select("return_line_items.original_line_id, COALESCE(SUM(return_line_items.returned_quantity), 0) AS total").
		Joins("JOIN return_transactions ON return_transactions.id = return_line_items.return_id").
		Where("return_transactions.tenant_id = ?", rt.TenantID).
		Where("return_transactions.original_transaction_id = ?", rt.OriginalTransactionID).
		Where("return_transactions.workflow_state <> ?", returns.WorkflowStateCancelled).
		Group("return_line_items.original_line_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	alreadyReturned := make(returns.ReturnedQuantities, len(rows))
	for _, row := range rows {
		alreadyReturned[row.OriginalLineID] = row.Total
	}

	lineIDs := make([]uuid.UUID, len(rt.Lines))
	for i := range rt.Lines {
		lineIDs[i] = rt.Lines[i].OriginalLineID
	}

	var originalLines []returns.OriginalTransactionLine
	if err := tx.Where("id IN ?", lineIDs).Find(&originalLines).Error; err != nil {
		return err
	}
	originalByID := make(map[uuid.UUID]*returns.OriginalTransactionLine, len(originalLines))
	for i := range originalLines {
		originalByID[originalLines[i].ID] = &originalLines[i]
	}

	for i := range rt.Lines {
		line := &rt.Lines[i]
		original, ok := originalByID[line.OriginalLineID]
		if !ok {
			return shared.NewDomainError("UNKNOWN_LINE", "Original transaction line no longer exists")
		}
		remaining := original.Quantity.Sub(alreadyReturned[line.OriginalLineID])
		if line.ReturnedQuantity.GreaterThan(remaining) {
			return shared.ErrConcurrencyConflict
		}
	}

	return nil
}

// FindByID finds a return by ID for a tenant, with lines and metadata
func (r *GormReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.ReturnTransaction, error) {
	var rt returns.ReturnTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Metadata").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindByReturnNumber finds a return by its return number for a tenant
func (r *GormReturnRepository) FindByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*returns.ReturnTransaction, error) {
	var rt returns.ReturnTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Metadata").
		Where("tenant_id = ? AND return_number = ?", tenantID, returnNumber).
		First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindAllForTenant finds all returns for a tenant with filtering
func (r *GormReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]returns.ReturnTransaction, error) {
	var results []returns.ReturnTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&returns.ReturnTransaction{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Preload("Lines").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindByOriginalTransaction finds all returns issued against an original transaction
func (r *GormReturnRepository) FindByOriginalTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]returns.ReturnTransaction, error) {
	var results []returns.ReturnTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND original_transaction_id = ?", tenantID, transactionID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindByState finds returns in a given workflow state for a tenant
func (r *GormReturnRepository) FindByState(ctx context.Context, tenantID uuid.UUID, state returns.WorkflowState, filter shared.Filter) ([]returns.ReturnTransaction, error) {
	var results []returns.ReturnTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&returns.ReturnTransaction{}).
			Where("tenant_id = ? AND workflow_state = ?", tenantID, state),
		filter,
	)

	if err := query.Preload("Lines").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SaveWithLock saves an existing return with an optimistic version check
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, rt *returns.ReturnTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveLocked(tx, rt)
	})
}

// SaveWithLockAndAdjust saves the return under the optimistic version check
// and applies the inventory adjustments inside the same transaction. A stale
// version rolls the adjustments back with the save.
func (r *GormReturnRepository) SaveWithLockAndAdjust(ctx context.Context, rt *returns.ReturnTransaction, adjustments []*inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveLocked(tx, rt); err != nil {
			return err
		}
		for _, adjustment := range adjustments {
			if err := applyStockAdjustment(tx, adjustment); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormReturnRepository) saveLocked(tx *gorm.DB, rt *returns.ReturnTransaction) error {
	currentVersion := rt.Version
	rt.Version++
	rt.UpdatedAt = time.Now()

	result := tx.Model(&returns.ReturnTransaction{}).
		Where("id = ? AND tenant_id = ? AND version = ?", rt.ID, rt.TenantID, currentVersion).
		Updates(map[string]any{
			"workflow_state":    rt.WorkflowState,
			"refund_amount":     rt.RefundAmount,
			"restocking_fee":    rt.RestockingFee,
			"fee_total":         rt.FeeTotal,
			"receivable_amount": rt.ReceivableAmount,
			"rma_reference":     rt.RMAReference,
			"financials_set_at": rt.FinancialsSetAt,
			"cancelled_at":      rt.CancelledAt,
			"cancel_reason":     rt.CancelReason,
			"completed_at":      rt.CompletedAt,
			"version":           rt.Version,
			"updated_at":        rt.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		rt.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}

	// Line payloads are mutable until inspection is recorded
	for i := range rt.Lines {
		line := &rt.Lines[i]
		if err := tx.Model(&returns.ReturnLineItem{}).
			Where("id = ? AND return_id = ?", line.ID, rt.ID).
			Updates(map[string]any{
				"condition_code":       line.ConditionCode,
				"packaging_intact":     line.PackagingIntact,
				"requires_testing":     line.RequiresTesting,
				"defect_code":          line.DefectCode,
				"batch_number":         line.BatchNumber,
				"supplier_fault":       line.SupplierFault,
				"damage_assessment":    line.DamageAssessment,
				"functionality_check":  line.FunctionalityCheck,
				"repair_cost_estimate": line.RepairCostEstimate,
				"updated_at":           line.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}

// CountForTenant counts returns for a tenant with optional filters
func (r *GormReturnRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&returns.ReturnTransaction{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByState counts returns per workflow state for a tenant
func (r *GormReturnRepository) CountByState(ctx context.Context, tenantID uuid.UUID) (map[returns.WorkflowState]int64, error) {
	type stateRow struct {
		WorkflowState returns.WorkflowState
		Count         int64
	}

	var rows []stateRow
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnTransaction{}).
		Select("workflow_state, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("workflow_state").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[returns.WorkflowState]int64, len(rows))
	for _, row := range rows {
		counts[row.WorkflowState] = row.Count
	}
	return counts, nil
}

// ExistsByRMAReference checks if an RMA reference is already used by a
// non-cancelled purchase return for the tenant
func (r *GormReturnRepository) ExistsByRMAReference(ctx context.Context, tenantID uuid.UUID, rma string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnTransaction{}).
		Where("tenant_id = ? AND rma_reference = ? AND workflow_state <> ?",
			tenantID, rma, returns.WorkflowStateCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateReturnNumber generates a unique return number for a tenant.
// Format: RT-YYYY-NNNNN (e.g., RT-2026-00001)
func (r *GormReturnRepository) GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("RT-%d-", year)

	var lastReturn returns.ReturnTransaction
	err := r.db.WithContext(ctx).
		Model(&returns.ReturnTransaction{}).
		Where("tenant_id = ? AND return_number LIKE ?", tenantID, prefix+"%").
		Order("return_number DESC").
		First(&lastReturn).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastReturn.ReturnNumber != "" {
		parts := strings.Split(lastReturn.ReturnNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	returnNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByReturnNumber(ctx, tenantID, returnNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for range 100 {
			nextNum++
			returnNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByReturnNumber(ctx, tenantID, returnNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return returnNumber, nil
}

func (r *GormReturnRepository) existsByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnTransaction{}).
		Where("tenant_id = ? AND return_number = ?", tenantID, returnNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ReturnSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReturnRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("return_number ILIKE ? OR original_transaction_number ILIKE ? OR rma_reference ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "return_type":
			query = query.Where("return_type = ?", value)
		case "workflow_state":
			query = query.Where("workflow_state = ?", value)
		case "original_transaction_id":
			query = query.Where("original_transaction_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("return_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("return_date <= ?", t)
			}
		case "min_refund":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("refund_amount >= ?", d)
			}
		case "max_refund":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("refund_amount <= ?", d)
			}
		}
	}

	return query
}

// Ensure GormReturnRepository implements ReturnRepository
var _ returns.ReturnRepository = (*GormReturnRepository)(nil)
