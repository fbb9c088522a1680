// internal/interfaces/http/middleware/request_size.go
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

// RequestSizeLimit rejects bodies larger than maxBytes
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Abort(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", maxBytes))
			return
		}

		// Bodies without a declared length are cut off while reading
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
