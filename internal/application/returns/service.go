package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnService is the facade over the return processing engine and the
// only entry point external callers use. It resolves the processor
// variant for the request's type and orchestrates
// validate -> persist -> calculate -> reconcile -> initialize workflow.
type ReturnService struct {
	returnRepo returns.ReturnRepository
	auditRepo  returns.AuditLogRepository
	txLookup   returns.TransactionLookup
	factory    *ProcessorFactory
	engine     *WorkflowEngine
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	returnRepo returns.ReturnRepository,
	auditRepo returns.AuditLogRepository,
	txLookup returns.TransactionLookup,
	factory *ProcessorFactory,
	engine *WorkflowEngine,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		auditRepo:  auditRepo,
		txLookup:   txLookup,
		factory:    factory,
		engine:     engine,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
	s.engine.SetEventPublisher(publisher)
}

// Create processes a new return request as one atomic unit of work:
// validation collects every violation, then the return, its lines, its
// metadata, and the inventory deltas commit together or roll back
// together. The workflow starts in INITIATED.
func (s *ReturnService) Create(ctx context.Context, tenantID uuid.UUID, req CreateReturnRequest) (*ReturnResponse, error) {
	if !req.ReturnType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", "Unknown return type: "+string(req.ReturnType))
	}

	original, err := s.txLookup.FindByID(ctx, tenantID, req.OriginalTransactionID)
	if err != nil {
		return nil, err
	}

	alreadyReturned, err := s.txLookup.ReturnedQuantities(ctx, tenantID, original.ID)
	if err != nil {
		return nil, err
	}

	processor, err := s.factory.ForType(req.ReturnType)
	if err != nil {
		return nil, err
	}

	pctx := &ProcessorContext{
		TenantID:        tenantID,
		Original:        original,
		AlreadyReturned: alreadyReturned,
		Request:         req,
	}

	// Validation never short-circuits; the complete list comes back at once
	if violations := processor.ValidateReturn(ctx, pctx); violations.HasAny() {
		return nil, returns.NewValidationError(violations)
	}

	if req.ReturnType == returns.ReturnTypePurchase {
		duplicate, err := s.returnRepo.ExistsByRMAReference(ctx, tenantID, req.RMAReference)
		if err != nil {
			return nil, err
		}
		if duplicate {
			return nil, shared.NewDomainError("DUPLICATE_RMA", "RMA reference is already used by another return")
		}
	}

	returnNumber, err := s.returnRepo.GenerateReturnNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	rt, err := returns.NewReturnTransaction(tenantID, returnNumber, original, req.ReturnType, req.ReturnDate, req.ReasonCode, req.ProcessedBy)
	if err != nil {
		return nil, err
	}
	if err := rt.SetLocation(req.LocationID); err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		originalLine := original.GetLine(input.OriginalLineID)
		line, err := rt.AddLine(originalLine, input.ReturnedQuantity, input.ConditionCode)
		if err != nil {
			return nil, err
		}
		applyLineDetails(line, req.ReturnType, input)
	}

	if len(req.Metadata) > 0 {
		if err := rt.SetMetadata(req.Metadata); err != nil {
			return nil, err
		}
	}

	pctx.Return = rt

	adjustments, err := processor.ProcessInventory(ctx, pctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := processor.CalculateFinancials(ctx, pctx)
	if err != nil {
		return nil, err
	}
	if err := rt.ApplyFinancials(breakdown); err != nil {
		return nil, err
	}

	if err := processor.PostProcess(ctx, pctx); err != nil {
		return nil, err
	}

	if err := s.returnRepo.CreateAtomic(ctx, rt, adjustments); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rt)

	s.logger.Info("return created",
		zap.String("return_number", rt.ReturnNumber),
		zap.String("return_type", rt.ReturnType.String()),
		zap.String("refund_amount", rt.RefundAmount.String()))

	response := ToReturnResponse(rt)
	breakdownResponse := ToFinancialBreakdownResponse(breakdown)
	response.Breakdown = &breakdownResponse
	return &response, nil
}

// GetByID retrieves a return by ID
func (s *ReturnService) GetByID(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	rt, err := s.returnRepo.FindByID(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(rt)
	return &response, nil
}

// GetByReturnNumber retrieves a return by its return number
func (s *ReturnService) GetByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*ReturnResponse, error) {
	rt, err := s.returnRepo.FindByReturnNumber(ctx, tenantID, returnNumber)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(rt)
	return &response, nil
}

// List retrieves returns with filtering and pagination
func (s *ReturnService) List(ctx context.Context, tenantID uuid.UUID, filter ReturnListFilter) ([]ReturnListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.ReturnType != nil {
		domainFilter.Filters["return_type"] = *filter.ReturnType
	}
	if filter.State != nil {
		domainFilter.Filters["workflow_state"] = *filter.State
	}
	if filter.OriginalTransactionID != nil {
		domainFilter.Filters["original_transaction_id"] = *filter.OriginalTransactionID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	items, err := s.returnRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.returnRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToReturnListItemResponses(items), total, nil
}

// ListByOriginalTransaction retrieves all returns against one original transaction
func (s *ReturnService) ListByOriginalTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ReturnListItemResponse, error) {
	items, err := s.returnRepo.FindByOriginalTransaction(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	return ToReturnListItemResponses(items), nil
}

// Transition advances the return's workflow to the target state
func (s *ReturnService) Transition(ctx context.Context, tenantID, returnID uuid.UUID, req TransitionRequest) (*ReturnResponse, error) {
	return s.engine.Transition(ctx, tenantID, returnID, req.TargetState, TransitionContext{
		Actor: req.Actor,
		Note:  req.Note,
	})
}

// Cancel cancels the return, disallowed once the refund was processed
func (s *ReturnService) Cancel(ctx context.Context, tenantID, returnID uuid.UUID, req CancelRequest) (*ReturnResponse, error) {
	return s.engine.Transition(ctx, tenantID, returnID, returns.WorkflowStateCancelled, TransitionContext{
		Actor: req.Actor,
		Note:  req.Reason,
	})
}

// SubmitInspection records inspection results on the return's lines and
// advances the workflow to INSPECTION_COMPLETE. Financial fields stay as
// written at creation; a correcting return is issued when inspection
// changes the picture.
func (s *ReturnService) SubmitInspection(ctx context.Context, tenantID, returnID uuid.UUID, req InspectionRequest) (*ReturnResponse, error) {
	rt, err := s.returnRepo.FindByID(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	if rt.WorkflowState != returns.WorkflowStateInspectionPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Return is not awaiting inspection")
	}

	for _, input := range req.Lines {
		line := findLine(rt, input.LineID)
		if line == nil {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", "Return has no line with ID "+input.LineID.String())
		}
		estimate := decimalOrZero(input.RepairCostEstimate)
		line.SetRentalDetails(input.DamageAssessment, input.FunctionalityPassed, estimate)
	}

	if err := s.returnRepo.SaveWithLock(ctx, rt); err != nil {
		return nil, err
	}

	return s.engine.Transition(ctx, tenantID, returnID, returns.WorkflowStateInspectionComplete, TransitionContext{
		Actor: req.Actor,
		Note:  req.Note,
	})
}

// GetAuditTrail returns the transition history of a return, oldest first
func (s *ReturnService) GetAuditTrail(ctx context.Context, tenantID, returnID uuid.UUID) ([]AuditLogResponse, error) {
	if _, err := s.returnRepo.FindByID(ctx, tenantID, returnID); err != nil {
		return nil, err
	}
	logs, err := s.auditRepo.FindByReturn(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	return ToAuditLogResponses(logs), nil
}

// StateSummary returns return counts grouped by workflow state
func (s *ReturnService) StateSummary(ctx context.Context, tenantID uuid.UUID) (*StateSummaryResponse, error) {
	counts, err := s.returnRepo.CountByState(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &StateSummaryResponse{States: make(map[string]int64, len(counts))}
	for state, count := range counts {
		summary.States[state.String()] = count
		summary.Total += count
	}
	return summary, nil
}

func (s *ReturnService) publishEvents(ctx context.Context, rt *returns.ReturnTransaction) {
	if s.publisher == nil {
		return
	}
	for _, event := range rt.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	rt.ClearDomainEvents()
}

// applyLineDetails copies the request's type-specific payload onto the line
func applyLineDetails(line *returns.ReturnLineItem, returnType returns.ReturnType, input CreateReturnLineInput) {
	switch returnType {
	case returns.ReturnTypeSale:
		line.SetSaleDetails(boolOrDefault(input.PackagingIntact, true), boolOrDefault(input.RequiresTesting, false))
	case returns.ReturnTypePurchase:
		line.SetPurchaseDetails(stringOrEmpty(input.DefectCode), stringOrEmpty(input.BatchNumber), boolOrDefault(input.SupplierFault, false))
	case returns.ReturnTypeRental:
		line.SetRentalDetails(stringOrEmpty(input.DamageAssessment), boolOrDefault(input.FunctionalityPassed, true), decimalOrZero(input.RepairCostEstimate))
	}
}

func findLine(rt *returns.ReturnTransaction, lineID uuid.UUID) *returns.ReturnLineItem {
	for idx := range rt.Lines {
		if rt.Lines[idx].ID == lineID {
			return &rt.Lines[idx]
		}
	}
	return nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func decimalOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
