// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	productService *product.Service
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// GetProducts handles GET /admin/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, "Invalid query parameters", err)
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve products")
		return
	}

	response.OK(c, http.StatusOK, "Products retrieved successfully", result)
}

// GetProduct handles GET /admin/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve product")
		return
	}

	response.OK(c, http.StatusOK, "Product retrieved successfully", p)
}

// CreateProduct handles POST /admin/products. The stock record is created
// in the same transaction.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create product")
		return
	}

	response.OK(c, http.StatusCreated, "Product created successfully", p)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete product")
		return
	}

	response.OK(c, http.StatusOK, "Product deleted successfully", nil)
}
