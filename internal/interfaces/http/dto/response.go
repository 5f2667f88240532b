package dto

import "time"

// Response is the envelope every endpoint answers with: exactly one of
// Data or Error is set, Meta only on paginated lists.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries the machine-readable error payload.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Help      string             `json:"help,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes a single failed validation rule. LineID
// points at the offending return line when the rule is line-scoped.
type ValidationDetail struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	LineID  string `json:"line_id,omitempty"`
	Message string `json:"message"`
}

// Meta is pagination metadata for list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps a page of data with its pagination
// metadata. A non-positive pageSize falls back to 20.
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// newErrorInfo stamps the timestamp and normalizes the code once for
// every error constructor below.
func newErrorInfo(code, message string) *ErrorInfo {
	return &ErrorInfo{
		Code:      NormalizeErrorCode(code),
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse wraps an error code and message in the envelope.
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: newErrorInfo(code, message)}
}

// NewErrorResponseWithRequestID additionally carries the request ID so
// clients can quote it when reporting problems.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	info := newErrorInfo(code, message)
	info.RequestID = requestID
	return Response{Success: false, Error: info}
}

// NewErrorResponseWithHelp additionally links documentation for the error.
func NewErrorResponseWithHelp(code, message, requestID, help string) Response {
	info := newErrorInfo(code, message)
	info.RequestID = requestID
	info.Help = help
	return Response{Success: false, Error: info}
}

// NewValidationErrorResponse carries the full list of collected
// validation failures under the VALIDATION_FAILED code.
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	info := &ErrorInfo{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
		Details:   details,
	}
	return Response{Success: false, Error: info}
}

// ListRequest holds the common list/pagination query parameters.
type ListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// DefaultListRequest is page 1 of 20, newest first.
func DefaultListRequest() ListRequest {
	return ListRequest{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// IDRequest binds a UUID path parameter.
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// TimestampResponse embeds entity timestamps in response DTOs.
type TimestampResponse struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
