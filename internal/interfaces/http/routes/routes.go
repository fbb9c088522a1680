// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	redisinfra "github.com/your-org/fitness-inventory/internal/infrastructure/database/redis"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/handlers"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/middleware"
	"github.com/your-org/fitness-inventory/internal/pkg/auth"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	InventoryHandler *handlers.InventoryHandler
	ProductHandler   *handlers.ProductHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	JWTManager       *auth.JWTManager
	Idempotency      *redisinfra.IdempotencyStore
	Logger           *logrus.Logger
}

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.JWTManager))
	admin.Use(middleware.AdminMiddleware())
	admin.Use(middleware.Idempotency(deps.Idempotency, deps.Logger))

	SetupInventoryRoutes(admin, deps.InventoryHandler, deps.AnalyticsHandler)
	SetupProductRoutes(admin, deps.ProductHandler)
}

// SetupInventoryRoutes sets up stock ledger routes
func SetupInventoryRoutes(rg *gin.RouterGroup, h *handlers.InventoryHandler, analyticsHandler *handlers.AnalyticsHandler) {
	inv := rg.Group("/inventory")
	{
		// Listings and alerts
		inv.GET("", h.ListInventory)
		inv.GET("/low-stock", h.LowStock)
		inv.GET("/out-of-stock", h.OutOfStock)
		inv.GET("/reorder", h.Reorder)
		inv.GET("/alerts", h.Alerts)
		inv.GET("/valuation", h.Valuation)

		// Reports
		inv.GET("/report.pdf", h.ReportPDF)
		inv.GET("/report.html", h.ReportHTML)
		inv.GET("/analytics", analyticsHandler.GetAnalytics)

		// Batch operations
		inv.POST("/bulk-adjust", h.BulkAdjust)
		inv.POST("/sync", h.Sync)

		// Single record
		inv.GET("/:id", h.GetRecord)
		inv.GET("/:id/history", h.History)
		inv.PATCH("/:id/stock", h.UpdateStock)
		inv.PUT("/:id/settings", h.UpdateSettings)
		inv.POST("/:id/adjust", h.Adjust)
		inv.POST("/:id/reserve", h.Reserve)
		inv.POST("/:id/release", h.Release)
		inv.POST("/:id/transfer", h.Transfer)
		inv.POST("/:id/audit", h.Audit)
	}
}

// SetupProductRoutes sets up the catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}
