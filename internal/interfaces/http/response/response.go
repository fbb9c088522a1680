// internal/interfaces/http/response/response.go
package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes carried in the envelope's code field
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeInvalidRelease    = "invalid_release"
	CodeInvalidTransfer   = "invalid_transfer"
	CodeConflict          = "conflict"
	CodeIdempotencyReused = "idempotency_key_reused"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeRateLimited       = "rate_limited"
	CodeTooLarge          = "request_too_large"
	CodeTimeout           = "timeout"
	CodeInternal          = "internal_error"
)

// Envelope is the body of every JSON response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
}

// OK writes a successful envelope
func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Fail writes a failed envelope
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// FailWithDetails writes a failed envelope with extra detail, used for binding errors
func FailWithDetails(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Code:    code,
		Details: details,
	})
}

// Abort writes a failed envelope and stops the handler chain
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Code:    code,
	})
}
