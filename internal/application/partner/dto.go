package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerResponse is the customer read model in API responses
type CustomerResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SupplierResponse is the supplier read model in API responses
type SupplierResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	RequiresRMA    bool            `json:"requires_rma"`
	RestockingRate decimal.Decimal `json:"restocking_rate"`
	OwedCredit     decimal.Decimal `json:"owed_credit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Status:        string(c.Status),
		Email:         c.Email,
		Phone:         c.Phone,
		CreditBalance: c.CreditBalance,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToSupplierResponse converts a domain supplier to a response DTO
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		Status:         string(s.Status),
		Email:          s.Email,
		Phone:          s.Phone,
		RequiresRMA:    s.RequiresRMA,
		RestockingRate: s.RestockingRate,
		OwedCredit:     s.OwedCredit,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
