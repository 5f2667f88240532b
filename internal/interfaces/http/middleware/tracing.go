// Package middleware provides HTTP middleware for the Rentora backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps request IDs copied from headers into trace
// attributes.
const maxRequestIDLength = 128

// TracingConfig configures the request tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns the otelgin-based tracing middleware with the
// service defaults.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(TracingConfig{
		ServiceName: "rentora-backend",
		Enabled:     true,
	})
}

// TracingWithConfig returns the otelgin middleware that opens a span
// per request. Attribute enrichment lives in SpanEnrichment, which must
// run later in the chain.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnrichment copies request_id, tenant_id and user_id onto the
// request span. Register it after Tracing: it records after c.Next
// returns, while the span is still open, so claims set by downstream
// middleware (JWT auth in particular) are visible.
func SpanEnrichment() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := traceRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := traceTenantID(c); tenantID != "" {
		span.SetAttributes(attribute.String("tenant_id", tenantID))
	}
	if userID := traceUserID(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
}

func traceRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	// Header fallback is capped so oversized values cannot bloat spans.
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > maxRequestIDLength {
		return headerID[:maxRequestIDLength]
	}
	return headerID
}

// traceTenantID prefers the JWT claim, which is a trusted value. The
// header fallback covers unauthenticated requests and must parse as a
// UUID before it is copied into trace attributes.
func traceTenantID(c *gin.Context) string {
	if id := c.GetString(JWTTenantIDKey); id != "" {
		return id
	}
	headerTenantID := c.GetHeader("X-Tenant-ID")
	if headerTenantID == "" {
		return ""
	}
	if _, err := uuid.Parse(headerTenantID); err != nil {
		return ""
	}
	return headerTenantID
}

func traceUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// SpanErrorMarker marks request spans as failed for 4xx/5xx responses.
// Register it after Tracing so the span exists.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		span.SetStatus(codes.Error, statusText(statusCode))
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}

func statusText(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "Internal Server Error"
	case statusCode == http.StatusUnauthorized:
		return "Unauthorized"
	case statusCode == http.StatusForbidden:
		return "Forbidden"
	case statusCode == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
