// internal/interfaces/http/middleware/timeout.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

// Timeout bounds the request context. Handlers pass it down to the database,
// so a slow query is cancelled and the request answers 504.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.Abort(c, http.StatusGatewayTimeout, response.CodeTimeout, "Request timeout")
		}
	}
}
