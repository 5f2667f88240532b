package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rentora/backend/internal/interfaces/http/dto"
)

// SetupValidator makes gin's validator report field names from json
// tags so error details match the wire format clients sent.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// FormatValidationErrors turns validator errors into the standard
// per-field validation response.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details = make([]dto.ValidationDetail, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 422 with per-field details.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, FormatValidationErrors(err, c.GetString("request_id")))
}

// fixedValidationMessages covers tags whose message does not depend on
// the tag parameter.
var fixedValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"url":      "Invalid URL format",
	"numeric":  "Must be numeric",
	"alphanum": "Must be alphanumeric",
	"alpha":    "Must contain only letters",
}

func validationMessage(fieldErr validator.FieldError) string {
	if msg, ok := fixedValidationMessages[fieldErr.Tag()]; ok {
		return msg
	}

	switch fieldErr.Tag() {
	case "min":
		return "Must be at least " + fieldErr.Param() + sizeUnit(fieldErr)
	case "max":
		return "Must be at most " + fieldErr.Param() + sizeUnit(fieldErr)
	case "len":
		return "Must be exactly " + fieldErr.Param() + " characters"
	case "oneof":
		return "Must be one of: " + fieldErr.Param()
	case "gte":
		return "Must be greater than or equal to " + fieldErr.Param()
	case "lte":
		return "Must be less than or equal to " + fieldErr.Param()
	case "gt":
		return "Must be greater than " + fieldErr.Param()
	case "lt":
		return "Must be less than " + fieldErr.Param()
	default:
		return "Invalid value"
	}
}

// sizeUnit appends " characters" for string fields so min/max read as
// lengths rather than magnitudes.
func sizeUnit(fieldErr validator.FieldError) string {
	if fieldErr.Type().Kind() == reflect.String {
		return " characters"
	}
	return ""
}
