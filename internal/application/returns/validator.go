package returns

import (
	"fmt"
	"time"

	"github.com/rentora/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// ReturnValidator checks a create-return request against the original
// transaction and the business windows. It never short-circuits: every
// violation is collected so the caller sees the complete list at once.
type ReturnValidator struct {
	policy Policy
}

// NewReturnValidator creates a validator with the given policy
func NewReturnValidator(policy Policy) *ReturnValidator {
	return &ReturnValidator{policy: policy}
}

// Validate runs all request-level and line-level rules and returns the
// full violation list. An empty list means the request is acceptable.
func (v *ReturnValidator) Validate(
	original *returns.OriginalTransaction,
	alreadyReturned returns.ReturnedQuantities,
	req CreateReturnRequest,
) returns.Violations {
	var violations returns.Violations

	if original.Type != req.ReturnType {
		violations.Add(returns.ViolationTypeMismatch, "return_type",
			fmt.Sprintf("Return type %s does not match original transaction type %s", req.ReturnType, original.Type))
	}

	v.checkWindow(original, req, &violations)
	v.checkTypeRequirements(original, req, &violations)
	v.checkLines(original, alreadyReturned, req, &violations)

	return violations
}

// checkWindow verifies the return was requested inside the allowed window.
// Sales and purchases count from the transaction date; rentals have no
// fixed window since fees are driven by the scheduled end date instead.
func (v *ReturnValidator) checkWindow(original *returns.OriginalTransaction, req CreateReturnRequest, violations *returns.Violations) {
	var windowDays int
	switch req.ReturnType {
	case returns.ReturnTypeSale:
		windowDays = v.policy.SaleWindowDays
	case returns.ReturnTypePurchase:
		windowDays = v.policy.PurchaseWindowDays
	default:
		return
	}

	deadline := original.TransactionDate.AddDate(0, 0, windowDays)
	if req.ReturnDate.After(deadline) {
		violations.Add(returns.ViolationWindowExpired, "return_date",
			fmt.Sprintf("Return window of %d days expired on %s", windowDays, deadline.Format(time.DateOnly)))
	}
}

// checkTypeRequirements enforces the per-type required fields
func (v *ReturnValidator) checkTypeRequirements(original *returns.OriginalTransaction, req CreateReturnRequest, violations *returns.Violations) {
	switch req.ReturnType {
	case returns.ReturnTypePurchase:
		if req.RMAReference == "" {
			violations.Add(returns.ViolationMissingRMA, "rma_reference",
				"Purchase returns require a non-empty RMA reference")
		}
	case returns.ReturnTypeRental:
		if req.ActualReturnDate == nil {
			violations.Add(returns.ViolationMissingField, "actual_return_date",
				"Rental returns require the actual return date")
		}
		if original.ScheduledEndDate == nil {
			violations.Add(returns.ViolationMissingField, "scheduled_end_date",
				"Original rental has no scheduled end date")
		}
	}
}

// checkLines runs the per-line rules: known original line, positive
// quantity, remaining returnable quantity, and mandatory-full-return
func (v *ReturnValidator) checkLines(
	original *returns.OriginalTransaction,
	alreadyReturned returns.ReturnedQuantities,
	req CreateReturnRequest,
	violations *returns.Violations,
) {
	if len(req.Lines) == 0 {
		violations.Add(returns.ViolationNoLines, "lines", "Return must contain at least one line")
		return
	}

	seen := make(map[string]bool, len(req.Lines))
	for _, line := range req.Lines {
		if seen[line.OriginalLineID.String()] {
			violations.AddForLine(returns.ViolationDuplicateLine, line.OriginalLineID,
				"Original line referenced more than once in the request")
			continue
		}
		seen[line.OriginalLineID.String()] = true

		originalLine := original.GetLine(line.OriginalLineID)
		if originalLine == nil {
			violations.AddForLine(returns.ViolationUnknownLine, line.OriginalLineID,
				"Original transaction has no such line")
			continue
		}

		if line.ReturnedQuantity.LessThanOrEqual(decimal.Zero) {
			violations.AddForLine(returns.ViolationInvalidValue, line.OriginalLineID,
				"Returned quantity must be positive")
			continue
		}

		remaining := alreadyReturned.Remaining(originalLine)
		if line.ReturnedQuantity.GreaterThan(remaining) {
			violations.AddForLine(returns.ViolationOverQuantity, line.OriginalLineID,
				fmt.Sprintf("Requested quantity %s exceeds remaining returnable quantity %s",
					line.ReturnedQuantity, remaining))
		}

		if req.ReturnType == returns.ReturnTypeRental && originalLine.MandatoryFullReturn &&
			!line.ReturnedQuantity.Equal(originalLine.Quantity) {
			violations.AddForLine(returns.ViolationPartialNotAllowed, line.OriginalLineID,
				"Line is flagged mandatory-full-return; partial quantities are rejected")
		}

		if !line.ConditionCode.IsValid() {
			violations.AddForLine(returns.ViolationInvalidValue, line.OriginalLineID,
				fmt.Sprintf("Unknown condition code: %s", line.ConditionCode))
		}
	}
}
