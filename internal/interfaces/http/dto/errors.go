package dto

import "net/http"

// API error codes, ERR_<CATEGORY> form. Domain-specific return
// processing codes (below) keep their domain spelling so API clients
// can branch on them directly.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// Return processing codes, passed through from the domain layer
// unchanged.
const (
	// ErrCodeValidationFailed carries per-line violations in Details.
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	// ErrCodeDuplicateRMA fires when the RMA reference is already taken.
	ErrCodeDuplicateRMA = "DUPLICATE_RMA"
	// ErrCodeInvalidTransition fires on a workflow edge that is not allowed.
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeInvalidReturnType fires on an unknown return type.
	ErrCodeInvalidReturnType = "INVALID_RETURN_TYPE"
	// ErrCodeFinancialsMissing fires when refund approval lacks applied financials.
	ErrCodeFinancialsMissing = "FINANCIALS_MISSING"
	// ErrCodeFinancialsFinal fires when applied financials are modified again.
	ErrCodeFinancialsFinal = "FINANCIALS_FINAL"
	// ErrCodeUnknownLine fires when a return references a line the original lacks.
	ErrCodeUnknownLine = "UNKNOWN_LINE"
	// ErrCodePersistenceFailed fires when an atomic commit was rolled back.
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
)

// ErrorCodeHTTPStatus is the response status for each error code.
// Codes absent from the table answer 500 via GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeValidationFailed:  http.StatusUnprocessableEntity,
	ErrCodeDuplicateRMA:      http.StatusConflict,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeInvalidReturnType: http.StatusBadRequest,
	ErrCodeFinancialsMissing: http.StatusUnprocessableEntity,
	ErrCodeFinancialsFinal:   http.StatusConflict,
	ErrCodeUnknownLine:       http.StatusBadRequest,
	ErrCodePersistenceFailed: http.StatusInternalServerError,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus resolves an error code to its HTTP status, defaulting
// to 500 for codes the table does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeAliases maps the bare domain error codes to their ERR_*
// API spelling. Return processing codes are deliberately not aliased.
var domainCodeAliases = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode rewrites a bare domain error code into its API
// spelling. Codes already in API form, or with no alias, pass through.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeAliases[code]; ok {
		return apiCode
	}
	return code
}
