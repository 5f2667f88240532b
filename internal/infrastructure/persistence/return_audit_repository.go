package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/returns"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements returns.AuditLogRepository using GORM.
// The table is append-only; no update or delete path exists.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append writes one audit record
func (r *GormAuditLogRepository) Append(ctx context.Context, log *returns.ReturnAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByReturn returns the transition history of a return, oldest first
func (r *GormAuditLogRepository) FindByReturn(ctx context.Context, tenantID, returnID uuid.UUID) ([]returns.ReturnAuditLog, error) {
	var logs []returns.ReturnAuditLog
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND return_id = ?", tenantID, returnID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormAuditLogRepository implements AuditLogRepository
var _ returns.AuditLogRepository = (*GormAuditLogRepository)(nil)
