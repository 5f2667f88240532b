package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/rentora/backend/internal/application/partner"
)

// PartnerHandler handles read-only customer and supplier lookups backing
// refund and supplier-credit routing
type PartnerHandler struct {
	BaseHandler
	lookupService *partnerapp.PartnerLookupService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(lookupService *partnerapp.PartnerLookupService) *PartnerHandler {
	return &PartnerHandler{
		lookupService: lookupService,
	}
}

// GetCustomer godoc
//
//	@ID				getCustomerById
//	@Summary		Get customer by ID
//	@Description	Retrieve the customer read model used for refund routing
//	@Tags			partner
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Customer ID"	format(uuid)
//	@Success		200			{object}	APIResponse[partnerapp.CustomerResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/partner/customers/{id} [get]
func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	customer, err := h.lookupService.GetCustomer(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// GetSupplier godoc
//
//	@ID				getSupplierById
//	@Summary		Get supplier by ID
//	@Description	Retrieve the supplier read model used for purchase return routing
//	@Tags			partner
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Supplier ID"	format(uuid)
//	@Success		200			{object}	APIResponse[partnerapp.SupplierResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/partner/suppliers/{id} [get]
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := h.lookupService.GetSupplier(c.Request.Context(), tenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}
