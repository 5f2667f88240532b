package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartnerStatus represents the status of a customer or supplier
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusInactive  PartnerStatus = "inactive"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// Customer is the read model the return engine needs for refund routing.
// Customer master data is owned by the excluded CRUD subsystem.
type Customer struct {
	shared.TenantAggregateRoot
	Code          string
	Name          string
	Status        PartnerStatus
	Email         string
	Phone         string
	CreditBalance decimal.Decimal // store credit usable for exchange redirects
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// IsActive returns true if the customer can receive refunds and credits
func (c *Customer) IsActive() bool {
	return c.Status == PartnerStatusActive
}

// Supplier is the read model the return engine needs for purchase returns:
// RMA handling and expected-credit routing.
type Supplier struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Status         PartnerStatus
	Email          string
	Phone          string
	RequiresRMA    bool            // supplier insists on an authorization before accepting goods
	RestockingRate decimal.Decimal // supplier-specific restocking percentage, zero means policy default
	OwedCredit     decimal.Decimal // accumulated expected credit from in-flight returns
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// IsActive returns true if returns can be shipped to the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == PartnerStatusActive
}

// CustomerLookup resolves customers for fault/credit routing
type CustomerLookup interface {
	// FindByID returns the customer for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
}

// SupplierLookup resolves suppliers for fault/credit routing
type SupplierLookup interface {
	// FindByID returns the supplier for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
}

// SupplierCreditWriter accrues expected credit on a supplier when goods ship
// back. The only write this context performs on partner data.
type SupplierCreditWriter interface {
	// AccrueOwedCredit atomically adds amount to the supplier's owed credit
	AccrueOwedCredit(ctx context.Context, tenantID, supplierID uuid.UUID, amount decimal.Decimal) error
}
