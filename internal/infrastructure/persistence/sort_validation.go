package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
// Sort fields come from query parameters, so anything outside the whitelist
// never reaches the ORDER BY clause.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ReturnSortFields contains allowed sort fields for return transactions
var ReturnSortFields = map[string]bool{
	"id":                          true,
	"created_at":                  true,
	"updated_at":                  true,
	"return_number":               true,
	"original_transaction_number": true,
	"return_type":                 true,
	"return_date":                 true,
	"reason_code":                 true,
	"workflow_state":              true,
	"refund_amount":               true,
	"restocking_fee":              true,
	"fee_total":                   true,
	"receivable_amount":           true,
	"rma_reference":               true,
	"completed_at":                true,
}

