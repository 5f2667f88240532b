package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/partner"
)

// PartnerLookupService exposes the customer and supplier read models the
// return engine routes refunds and supplier credits against. Partner
// master data management lives outside this service.
type PartnerLookupService struct {
	customers partner.CustomerLookup
	suppliers partner.SupplierLookup
}

// NewPartnerLookupService creates a new PartnerLookupService
func NewPartnerLookupService(customers partner.CustomerLookup, suppliers partner.SupplierLookup) *PartnerLookupService {
	return &PartnerLookupService{
		customers: customers,
		suppliers: suppliers,
	}
}

// GetCustomer retrieves one customer by ID
func (s *PartnerLookupService) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetSupplier retrieves one supplier by ID
func (s *PartnerLookupService) GetSupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}
