// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/analytics"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

// AnalyticsHandler handles stock movement analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	logger           *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// GetAnalytics handles GET /admin/inventory/analytics
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	// Non-positive or malformed values fall back to the default window
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		days = 0
	}

	ctx := c.Request.Context()

	movement, err := h.analyticsService.GetMovementAnalytics(ctx, days)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve movement analytics")
		return
	}

	categories, err := h.analyticsService.GetStockByCategory(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock by category")
		return
	}

	response.OK(c, http.StatusOK, "Inventory analytics retrieved successfully", gin.H{
		"movement":   movement,
		"categories": categories.Categories,
	})
}
