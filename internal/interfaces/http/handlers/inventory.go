// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/middleware"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
	"github.com/your-org/fitness-inventory/internal/pkg/pdf"
)

// InventoryHandler handles stock ledger endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	pdfService       *pdf.Service
	logger           *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, pdfService *pdf.Service, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		pdfService:       pdfService,
		logger:           logger,
	}
}

// QUERIES

// ListInventory handles GET /admin/inventory
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	var req inventory.InventoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, "Invalid query parameters", err)
		return
	}

	result, err := h.inventoryService.ListInventory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve inventory")
		return
	}

	response.OK(c, http.StatusOK, "Inventory retrieved successfully", result)
}

// GetRecord handles GET /admin/inventory/:id
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.inventoryService.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock record")
		return
	}

	response.OK(c, http.StatusOK, "Stock record retrieved successfully", record)
}

// History handles GET /admin/inventory/:id/history
func (h *InventoryHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, "Invalid query parameters", err)
		return
	}

	result, err := h.inventoryService.History(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock history")
		return
	}

	response.OK(c, http.StatusOK, "Stock history retrieved successfully", result)
}

// LowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	page, limit := pageQuery(c)
	result, err := h.inventoryService.ListLowStock(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve low stock items")
		return
	}
	response.OK(c, http.StatusOK, "Low stock items retrieved successfully", result)
}

// OutOfStock handles GET /admin/inventory/out-of-stock
func (h *InventoryHandler) OutOfStock(c *gin.Context) {
	page, limit := pageQuery(c)
	result, err := h.inventoryService.ListOutOfStock(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve out of stock items")
		return
	}
	response.OK(c, http.StatusOK, "Out of stock items retrieved successfully", result)
}

// Reorder handles GET /admin/inventory/reorder
func (h *InventoryHandler) Reorder(c *gin.Context) {
	page, limit := pageQuery(c)
	result, err := h.inventoryService.ListReorder(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve reorder items")
		return
	}
	response.OK(c, http.StatusOK, "Reorder items retrieved successfully", result)
}

// Alerts handles GET /admin/inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	summary, err := h.inventoryService.AlertSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock alerts")
		return
	}
	response.OK(c, http.StatusOK, "Stock alerts retrieved successfully", summary)
}

// Valuation handles GET /admin/inventory/valuation
func (h *InventoryHandler) Valuation(c *gin.Context) {
	valuation, err := h.inventoryService.Valuation(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to compute inventory valuation")
		return
	}
	response.OK(c, http.StatusOK, "Inventory valuation computed successfully", valuation)
}

// STOCK OPERATIONS

// UpdateStock handles PATCH /admin/inventory/:id/stock
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.UpdateStock(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to update stock")
		return
	}

	response.OK(c, http.StatusOK, "Stock updated successfully", result)
}

// UpdateSettings handles PUT /admin/inventory/:id/settings
func (h *InventoryHandler) UpdateSettings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	record, err := h.inventoryService.UpdateSettings(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update stock settings")
		return
	}

	response.OK(c, http.StatusOK, "Stock settings updated successfully", record)
}

// Adjust handles POST /admin/inventory/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.Adjust(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to adjust stock")
		return
	}

	response.OK(c, http.StatusOK, "Stock adjusted successfully", result)
}

// Reserve handles POST /admin/inventory/:id/reserve
func (h *InventoryHandler) Reserve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.Reserve(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to reserve stock")
		return
	}

	response.OK(c, http.StatusOK, "Stock reserved successfully", result)
}

// Release handles POST /admin/inventory/:id/release
func (h *InventoryHandler) Release(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.Release(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to release stock")
		return
	}

	response.OK(c, http.StatusOK, "Stock released successfully", result)
}

// Transfer handles POST /admin/inventory/:id/transfer.
// fromProductId defaults to the path id.
func (h *InventoryHandler) Transfer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}
	if req.FromProductID == 0 {
		req.FromProductID = id
	}

	result, err := h.inventoryService.Transfer(c.Request.Context(), &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to transfer stock")
		return
	}

	response.OK(c, http.StatusOK, "Stock transferred successfully", result)
}

// Audit handles POST /admin/inventory/:id/audit
func (h *InventoryHandler) Audit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.Audit(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to audit stock")
		return
	}

	response.OK(c, http.StatusOK, result.Message, result)
}

// BulkAdjust handles POST /admin/inventory/bulk-adjust
func (h *InventoryHandler) BulkAdjust(c *gin.Context) {
	var req inventory.BulkAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	result, err := h.inventoryService.BulkAdjust(c.Request.Context(), &req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to process bulk adjustment")
		return
	}

	response.OK(c, http.StatusOK, "Bulk adjustment processed", result)
}

// Sync handles POST /admin/inventory/sync
func (h *InventoryHandler) Sync(c *gin.Context) {
	result, err := h.inventoryService.SyncWithProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to sync inventory with products")
		return
	}

	response.OK(c, http.StatusOK, "Inventory synced with products", result)
}

// REPORTS

// ReportHTML handles GET /admin/inventory/report.html
func (h *InventoryHandler) ReportHTML(c *gin.Context) {
	report, err := h.inventoryService.BuildStockReport(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to build stock report")
		return
	}

	body, err := h.pdfService.RenderStockReportHTML(report)
	if err != nil {
		respondError(c, h.logger, err, "Failed to render stock report")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// ReportPDF handles GET /admin/inventory/report.pdf
func (h *InventoryHandler) ReportPDF(c *gin.Context) {
	report, err := h.inventoryService.BuildStockReport(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to build stock report")
		return
	}

	buf, err := h.pdfService.RenderStockReport(report)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate stock report PDF")
		return
	}

	filename := "stock-report-" + report.GeneratedAt.Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
