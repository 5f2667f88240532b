package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/shared"
)

// ReturnRepository defines the interface for return transaction persistence
type ReturnRepository interface {
	// CreateAtomic persists the return, its lines, its metadata, and the
	// planned inventory adjustments in one transaction. Inside that
	// transaction the remaining returnable quantity of every touched
	// original line is recomputed from already-persisted returns; if any
	// line would be oversold, the whole unit of work is rolled back and a
	// retryable CONCURRENCY_CONFLICT error is returned.
	CreateAtomic(ctx context.Context, rt *ReturnTransaction, adjustments []*inventory.StockAdjustment) error

	// FindByID finds a return by ID for a tenant, with lines and metadata
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ReturnTransaction, error)

	// FindByReturnNumber finds a return by its return number for a tenant
	FindByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*ReturnTransaction, error)

	// FindAllForTenant finds all returns for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReturnTransaction, error)

	// FindByOriginalTransaction finds all returns issued against an original transaction
	FindByOriginalTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ReturnTransaction, error)

	// FindByState finds returns in a given workflow state for a tenant
	FindByState(ctx context.Context, tenantID uuid.UUID, state WorkflowState, filter shared.Filter) ([]ReturnTransaction, error)

	// SaveWithLock saves an existing return with an optimistic version check.
	// Used by workflow transitions; a stale version yields CONCURRENCY_CONFLICT.
	SaveWithLock(ctx context.Context, rt *ReturnTransaction) error

	// SaveWithLockAndAdjust saves the return under the same version check
	// and applies the inventory adjustments in the same transaction, so a
	// stale version rolls both back together. Cancellation commits its
	// stock reversal through this.
	SaveWithLockAndAdjust(ctx context.Context, rt *ReturnTransaction, adjustments []*inventory.StockAdjustment) error

	// CountForTenant counts returns for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByState counts returns per workflow state for a tenant
	CountByState(ctx context.Context, tenantID uuid.UUID) (map[WorkflowState]int64, error)

	// ExistsByRMAReference checks if an RMA reference is already used by a
	// non-cancelled purchase return for the tenant
	ExistsByRMAReference(ctx context.Context, tenantID uuid.UUID, rma string) (bool, error)

	// GenerateReturnNumber generates a unique return number for a tenant
	GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// AuditLogRepository defines the interface for the append-only transition log
type AuditLogRepository interface {
	// Append writes one audit record; records are immutable once written
	Append(ctx context.Context, log *ReturnAuditLog) error

	// FindByReturn returns the transition history of a return, oldest first
	FindByReturn(ctx context.Context, tenantID, returnID uuid.UUID) ([]ReturnAuditLog, error)
}
