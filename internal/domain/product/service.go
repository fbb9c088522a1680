// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/pkg/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("product SKU already exists")
)

// StockHooks keeps per-product stock state in step with the catalog.
// Both callbacks run inside the catalog write's transaction.
type StockHooks interface {
	OnProductCreated(tx *gorm.DB, p *Product) error
	OnProductDeleted(tx *gorm.DB, productID uint) error
}

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	hooks  StockHooks
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// SetStockHooks registers the inventory lifecycle callbacks
func (s *Service) SetStockHooks(h StockHooks) {
	s.hooks = h
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	IsActive  *bool  `form:"is_active"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU               string `json:"sku" binding:"required,max=100"`
	Name              string `json:"name" binding:"required,max=255"`
	Description       string `json:"description"`
	Category          string `json:"category" binding:"max=100"`
	Price             int64  `json:"price" binding:"gte=0"`
	CostPrice         int64  `json:"cost_price" binding:"gte=0"`
	Quantity          int    `json:"quantity" binding:"gte=0"`
	LowStockThreshold *int   `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	IsActive          *bool  `json:"is_active"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ListProducts retrieves products with filtering and pagination
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{})

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", search, search, search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page, limit := pagination.Normalize(req.Page, req.Limit,
		s.config.Inventory.HistoryDefaultLimit, s.config.Inventory.HistoryMaxLimit)

	err := query.
		Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a new product and, when hooks are registered,
// its stock record in the same transaction
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	product := Product{
		SKU:               strings.TrimSpace(req.SKU),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		Quantity:          req.Quantity,
		LowStockThreshold: s.config.Inventory.DefaultLowStockThreshold,
		IsActive:          true,
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Unscoped().Where("sku = ?", product.SKU).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check sku: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, product.SKU)
		}

		productSlug, err := s.uniqueSlug(tx, product.Name)
		if err != nil {
			return err
		}
		product.Slug = productSlug

		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if s.hooks != nil {
			if err := s.hooks.OnProductCreated(tx, &product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// DeleteProduct soft deletes a product and drops its stock record
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if s.hooks != nil {
			return s.hooks.OnProductDeleted(tx, id)
		}
		return nil
	})
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"sku":        true,
		"price":      true,
		"created_at": true,
		"updated_at": true,
		"quantity":   true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

// uniqueSlug slugifies name and appends a counter until no product
// (deleted ones included) holds the candidate
func (s *Service) uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "product"
	}

	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&Product{}).Unscoped().Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
