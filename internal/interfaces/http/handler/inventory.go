package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/rentora/backend/internal/application/inventory"
)

// InventoryHandler handles read-only inventory API endpoints. Stock moves
// only through return reconciliation, so there are no write routes here.
type InventoryHandler struct {
	BaseHandler
	queryService *inventoryapp.InventoryQueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(queryService *inventoryapp.InventoryQueryService) *InventoryHandler {
	return &InventoryHandler{
		queryService: queryService,
	}
}

// ListItemStock godoc
//
//	@ID				listInventoryItems
//	@Summary		Get stock levels for an item
//	@Description	Retrieve per-location stock buckets for an item, optionally narrowed to one location
//	@Tags			inventory
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			item_id		query		string	true	"Item ID"		format(uuid)
//	@Param			location_id	query		string	false	"Location ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]inventoryapp.ItemStockResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/items [get]
func (h *InventoryHandler) ListItemStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing item_id")
		return
	}

	query := inventoryapp.ItemStockQuery{ItemID: itemID}
	if raw := c.Query("location_id"); raw != "" {
		locationID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid location_id format")
			return
		}
		query.LocationID = &locationID
	}

	items, err := h.queryService.ItemStock(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// GetAdjustmentHistory godoc
//
//	@ID				getInventoryAdjustments
//	@Summary		Get the adjustment ledger for a reference
//	@Description	Retrieve the stock adjustment entries recorded for a reference document such as a return number, oldest first
//	@Tags			inventory
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			reference	query		string	true	"Reference document number"	example:"RET-2026-00001"
//	@Success		200			{object}	APIResponse[[]inventoryapp.AdjustmentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/adjustments [get]
func (h *InventoryHandler) GetAdjustmentHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reference := c.Query("reference")
	if reference == "" {
		h.BadRequest(c, "reference is required")
		return
	}

	entries, err := h.queryService.AdjustmentHistory(c.Request.Context(), tenantID, reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}
