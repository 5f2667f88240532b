package returns

import (
	"time"

	"github.com/google/uuid"
)

// ReturnAuditLog is one append-only record of a committed workflow
// transition. Audit records are never updated or deleted.
type ReturnAuditLog struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ReturnID  uuid.UUID
	FromState WorkflowState
	ToState   WorkflowState
	Actor     uuid.UUID
	Note      string
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ReturnAuditLog) TableName() string {
	return "return_audit_logs"
}

// NewReturnAuditLog creates an audit record for a transition
func NewReturnAuditLog(tenantID, returnID uuid.UUID, from, to WorkflowState, actor uuid.UUID, note string) *ReturnAuditLog {
	return &ReturnAuditLog{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ReturnID:  returnID,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		Note:      note,
		CreatedAt: time.Now(),
	}
}
