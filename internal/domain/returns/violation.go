package returns

import (
	"fmt"

	"github.com/google/uuid"
)

// Violation is one business-rule failure found while validating a return
// request. Validation always collects every violation before reporting.
type Violation struct {
	Code    string    `json:"code"`
	Field   string    `json:"field,omitempty"`
	LineID  uuid.UUID `json:"line_id,omitempty"`
	Message string    `json:"message"`
}

// Violation codes
const (
	ViolationWindowExpired       = "WINDOW_EXPIRED"
	ViolationOverQuantity        = "OVER_QUANTITY"
	ViolationMissingRMA          = "MISSING_RMA"
	ViolationPartialNotAllowed   = "PARTIAL_NOT_ALLOWED"
	ViolationUnknownLine         = "UNKNOWN_LINE"
	ViolationMissingField        = "MISSING_FIELD"
	ViolationInvalidValue        = "INVALID_VALUE"
	ViolationMissingPriceData    = "MISSING_PRICE_DATA"
	ViolationTypeMismatch        = "TYPE_MISMATCH"
	ViolationDuplicateLine       = "DUPLICATE_LINE"
	ViolationNoLines             = "NO_LINES"
)

// Violations is an accumulating list of validation failures
type Violations []Violation

// Add appends a violation to the list
func (v *Violations) Add(code, field, message string) {
	*v = append(*v, Violation{Code: code, Field: field, Message: message})
}

// AddForLine appends a violation scoped to a specific request line
func (v *Violations) AddForLine(code string, lineID uuid.UUID, message string) {
	*v = append(*v, Violation{Code: code, LineID: lineID, Message: message})
}

// HasAny returns true if at least one violation was collected
func (v Violations) HasAny() bool {
	return len(v) > 0
}

// ValidationError carries the complete list of violations for a rejected
// return request. It is never raised with a partial list.
type ValidationError struct {
	Violations Violations `json:"violations"`
}

// NewValidationError wraps a non-empty violation list as an error
func NewValidationError(violations Violations) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Violations[0].Message)
	}
	return fmt.Sprintf("validation failed with %d violations", len(e.Violations))
}

// Code returns the stable error code for the HTTP boundary
func (e *ValidationError) Code() string {
	return "VALIDATION_FAILED"
}
