// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/middleware"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

// statusAndCode maps a domain error onto the HTTP status and envelope code
func statusAndCode(err error) (int, string) {
	switch inventory.ClassOf(err) {
	case inventory.ClassValidation:
		return http.StatusBadRequest, response.CodeValidation
	case inventory.ClassNotFound:
		return http.StatusNotFound, response.CodeNotFound
	case inventory.ClassRuleViolation:
		switch {
		case errors.Is(err, inventory.ErrInvalidRelease):
			return http.StatusBadRequest, response.CodeInvalidRelease
		case errors.Is(err, inventory.ErrSameProductTransfer):
			return http.StatusBadRequest, response.CodeInvalidTransfer
		default:
			return http.StatusBadRequest, response.CodeInsufficientStock
		}
	case inventory.ClassConflict:
		return http.StatusConflict, response.CodeConflict
	default:
		return http.StatusInternalServerError, response.CodeInternal
	}
}

// respondError writes err as an envelope. Internal errors are logged and
// replaced by a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status, code := statusAndCode(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.WithError(err).WithField("request_id", c.GetString(middleware.ContextRequestID)).Error(fallback)
		response.Fail(c, status, code, fallback)
		return
	}
	response.Fail(c, status, code, err.Error())
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, message string, err error) {
	response.FailWithDetails(c, http.StatusBadRequest, response.CodeValidation, message, err.Error())
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, response.CodeValidation, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageQuery reads page and limit query parameters, zero when absent or malformed
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}
