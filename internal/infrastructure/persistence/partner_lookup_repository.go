package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/partner"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPartnerLookupRepository implements partner.CustomerLookup and
// partner.SupplierLookup using GORM. Reads only; partner master data is
// written by the excluded CRUD subsystem.
type GormPartnerLookupRepository struct {
	db *gorm.DB
}

// NewGormPartnerLookupRepository creates a new GormPartnerLookupRepository
func NewGormPartnerLookupRepository(db *gorm.DB) *GormPartnerLookupRepository {
	return &GormPartnerLookupRepository{db: db}
}

// FindByID returns the customer for a tenant
func (r *GormPartnerLookupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

var _ partner.CustomerLookup = (*GormPartnerLookupRepository)(nil)

// GormSupplierLookupRepository implements partner.SupplierLookup using GORM
type GormSupplierLookupRepository struct {
	db *gorm.DB
}

// NewGormSupplierLookupRepository creates a new GormSupplierLookupRepository
func NewGormSupplierLookupRepository(db *gorm.DB) *GormSupplierLookupRepository {
	return &GormSupplierLookupRepository{db: db}
}

// FindByID returns the supplier for a tenant
func (r *GormSupplierLookupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// AccrueOwedCredit atomically adds amount to the supplier's owed credit
func (r *GormSupplierLookupRepository) AccrueOwedCredit(ctx context.Context, tenantID, supplierID uuid.UUID, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("tenant_id = ? AND id = ?", tenantID, supplierID).
		Updates(map[string]interface{}{
			"owed_credit": gorm.Expr("owed_credit + ?", amount),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.SupplierLookup = (*GormSupplierLookupRepository)(nil)
var _ partner.SupplierCreditWriter = (*GormSupplierLookupRepository)(nil)
