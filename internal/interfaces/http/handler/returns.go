package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	returnsapp "github.com/rentora/backend/internal/application/returns"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/interfaces/http/dto"
)

// ReturnHandler handles return processing API endpoints
type ReturnHandler struct {
	BaseHandler
	returnService *returnsapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *returnsapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{
		returnService: returnService,
	}
}

// Create godoc
//
//	@ID				createReturn
//	@Summary		Create a new return
//	@Description	Create a return against an original SALE, PURCHASE or RENTAL transaction. Validation collects every violation before rejecting.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string								false	"Tenant ID (optional for dev)"
//	@Param			request		body		returnsapp.CreateReturnRequest		true	"Return creation request"
//	@Success		201			{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Processing user identity is required")
		return
	}

	var req returnsapp.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ProcessedBy = userID

	resp, err := h.returnService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
//
//	@ID				listReturns
//	@Summary		List returns
//	@Description	List returns with filtering and pagination
//	@Tags			returns
//	@Produce		json
//	@Param			X-Tenant-ID				header		string	false	"Tenant ID (optional for dev)"
//	@Param			return_type				query		string	false	"Filter by return type"	Enums(SALE, PURCHASE, RENTAL)
//	@Param			state					query		string	false	"Filter by workflow state"
//	@Param			original_transaction_id	query		string	false	"Filter by original transaction"	format(uuid)
//	@Param			search					query		string	false	"Search return number or reason code"
//	@Param			page					query		int		false	"Page number"		default(1)
//	@Param			page_size				query		int		false	"Items per page"	default(20)
//	@Success		200						{object}	APIResponse[[]returnsapp.ReturnListItemResponse]
//	@Failure		400						{object}	dto.ErrorResponse
//	@Failure		401						{object}	dto.ErrorResponse
//	@Failure		500						{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter returnsapp.ReturnListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.returnService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	h.SuccessWithMeta(c, items, total, page, filter.PageSize)
}

// GetByID godoc
//
//	@ID				getReturnById
//	@Summary		Get return by ID
//	@Description	Retrieve a return transaction by its ID
//	@Tags			returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Return ID"	format(uuid)
//	@Success		200			{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/{id} [get]
func (h *ReturnHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returnService.GetByID(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByReturnNumber godoc
//
//	@ID				getReturnByNumber
//	@Summary		Get return by return number
//	@Description	Retrieve a return transaction by its return number
//	@Tags			returns
//	@Produce		json
//	@Param			X-Tenant-ID		header		string	false	"Tenant ID (optional for dev)"
//	@Param			return_number	path		string	true	"Return Number"	example:"RET-2026-00001"
//	@Success		200				{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		404				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/number/{return_number} [get]
func (h *ReturnHandler) GetByReturnNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnNumber := c.Param("return_number")
	if returnNumber == "" {
		h.BadRequest(c, "Return number is required")
		return
	}

	resp, err := h.returnService.GetByReturnNumber(c.Request.Context(), tenantID, returnNumber)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, resp)
}

// Transition godoc
//
//	@ID				transitionReturn
//	@Summary		Advance the return workflow
//	@Description	Move the return to the target workflow state. Invalid transitions are rejected; same-state transitions are no-ops.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string							false	"Tenant ID (optional for dev)"
//	@Param			id			path		string							true	"Return ID"	format(uuid)
//	@Param			request		body		returnsapp.TransitionRequest	true	"Transition request"
//	@Success		200			{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/{id}/transition [post]
func (h *ReturnHandler) Transition(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = userID

	resp, err := h.returnService.Transition(c.Request.Context(), tenantID, returnID, req)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
//
//	@ID				cancelReturn
//	@Summary		Cancel a return
//	@Description	Cancel the return. Not allowed once the refund was processed.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string						false	"Tenant ID (optional for dev)"
//	@Param			id			path		string						true	"Return ID"	format(uuid)
//	@Param			request		body		returnsapp.CancelRequest	true	"Cancellation request"
//	@Success		200			{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = userID

	resp, err := h.returnService.Cancel(c.Request.Context(), tenantID, returnID, req)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, resp)
}

// SubmitInspection godoc
//
//	@ID				submitReturnInspection
//	@Summary		Submit inspection results
//	@Description	Record per-line inspection outcomes for a return awaiting inspection and advance it to INSPECTION_COMPLETE
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string							false	"Tenant ID (optional for dev)"
//	@Param			id			path		string							true	"Return ID"	format(uuid)
//	@Param			request		body		returnsapp.InspectionRequest	true	"Inspection results"
//	@Success		200			{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/{id}/inspection [post]
func (h *ReturnHandler) SubmitInspection(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.InspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = userID

	resp, err := h.returnService.SubmitInspection(c.Request.Context(), tenantID, returnID, req)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetAuditTrail godoc
//
//	@ID				getReturnAuditTrail
//	@Summary		Get the return's audit trail
//	@Description	Retrieve the workflow transition history of a return, oldest first
//	@Tags			returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Return ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]returnsapp.AuditLogResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/{id}/audit [get]
func (h *ReturnHandler) GetAuditTrail(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	logs, err := h.returnService.GetAuditTrail(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, logs)
}

// GetStateSummary godoc
//
//	@ID				getReturnStateSummary
//	@Summary		Get return counts by workflow state
//	@Description	Retrieve the number of returns in each workflow state for the tenant
//	@Tags			returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Success		200			{object}	APIResponse[returnsapp.StateSummaryResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/returns/stats/summary [get]
func (h *ReturnHandler) GetStateSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.returnService.StateSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.handleReturnError(c, err)
		return
	}

	h.Success(c, summary)
}

// handleReturnError maps return-engine errors to HTTP responses. A
// *returns.ValidationError carries the complete list of collected
// violations, which goes out itemized; everything else follows the
// generic domain error mapping.
func (h *ReturnHandler) handleReturnError(c *gin.Context, err error) {
	var validationErr *returns.ValidationError
	if errors.As(err, &validationErr) {
		details := make([]dto.ValidationDetail, 0, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			detail := dto.ValidationDetail{
				Code:    v.Code,
				Field:   v.Field,
				Message: v.Message,
			}
			if v.LineID != uuid.Nil {
				detail.LineID = v.LineID.String()
			}
			details = append(details, detail)
		}
		h.ValidationError(c, details)
		return
	}

	h.HandleError(c, err)
}
