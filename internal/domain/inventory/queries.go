// internal/domain/inventory/queries.go
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/fitness-inventory/internal/pkg/pagination"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// StockStatus filters inventory listings by alert state
type StockStatus string

const (
	StatusInStock    StockStatus = "in_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusReorder    StockStatus = "reorder"
)

// InventoryListRequest represents inventory list query parameters
type InventoryListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit"`
	Search    string      `form:"search"`
	Status    StockStatus `form:"status" binding:"omitempty,oneof=in_stock low_stock out_of_stock reorder"`
	SortBy    string      `form:"sort_by,default=updated_at"`
	SortOrder string      `form:"sort_order,default=desc"`
}

// InventoryListResponse represents stock records with pagination
type InventoryListResponse struct {
	Items      []StockRecord         `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

// HistoryRequest filters ledger history
type HistoryRequest struct {
	Type   LedgerType `form:"type"`
	Reason string     `form:"reason"`
	Days   int        `form:"days" binding:"gte=0"`
	Page   int        `form:"page,default=1"`
	Limit  int        `form:"limit"`
}

// HistoryResponse represents ledger entries with pagination
type HistoryResponse struct {
	Record     *StockRecord          `json:"record"`
	Entries    []StockLedgerEntry    `json:"entries"`
	Pagination pagination.Pagination `json:"pagination"`
}

// AlertSummary counts records per alert and lists the most urgent of each
type AlertSummary struct {
	LowStockCount   int64         `json:"low_stock_count"`
	OutOfStockCount int64         `json:"out_of_stock_count"`
	ReorderCount    int64         `json:"reorder_count"`
	LowStock        []StockRecord `json:"low_stock"`
	OutOfStock      []StockRecord `json:"out_of_stock"`
	Reorder         []StockRecord `json:"reorder"`
}

// Valuation totals stock across all records
type Valuation struct {
	Items          int64 `json:"items"`
	Units          int64 `json:"units"`
	ReservedUnits  int64 `json:"reserved_units"`
	AvailableUnits int64 `json:"available_units"`
	TotalValue     int64 `json:"total_value"` // In cents
}

// statusScope narrows a query to the records whose EvaluateAlerts matches status
func statusScope(status StockStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case StatusInStock:
			return db.Where("current_stock > low_stock_threshold")
		case StatusLowStock:
			return db.Where("current_stock <= low_stock_threshold")
		case StatusOutOfStock:
			return db.Where("current_stock <= 0")
		case StatusReorder:
			return db.Where("current_stock <= reorder_point")
		default:
			return db
		}
	}
}

// GetRecord retrieves one stock record with its product
func (s *Service) GetRecord(ctx context.Context, id uint) (*StockRecord, error) {
	rec, err := findRecord(s.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Product").First(rec, rec.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock record: %w", err)
	}
	return rec, nil
}

// ListInventory retrieves stock records with filtering and pagination
func (s *Service) ListInventory(ctx context.Context, req *InventoryListRequest) (*InventoryListResponse, error) {
	if req.Status != "" && req.Status != StatusInStock && req.Status != StatusLowStock &&
		req.Status != StatusOutOfStock && req.Status != StatusReorder {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, req.Status)
	}

	query := statusScope(req.Status)(s.db.WithContext(ctx).Model(&StockRecord{}))
	if req.Search != "" {
		query = query.Where("LOWER(sku) LIKE ?", "%"+strings.ToLower(req.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock records: %w", err)
	}

	page, limit := pagination.Normalize(req.Page, req.Limit,
		s.config.Inventory.HistoryDefaultLimit, s.config.Inventory.HistoryMaxLimit)

	var items []StockRecord
	err := query.
		Preload("Product").
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock records: %w", err)
	}

	return &InventoryListResponse{
		Items:      items,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// ListLowStock lists records at or under their low stock threshold, empty ones included
func (s *Service) ListLowStock(ctx context.Context, page, limit int) (*InventoryListResponse, error) {
	return s.ListInventory(ctx, &InventoryListRequest{
		Page: page, Limit: limit, Status: StatusLowStock, SortBy: "current_stock", SortOrder: "asc",
	})
}

// ListOutOfStock lists records with nothing on hand
func (s *Service) ListOutOfStock(ctx context.Context, page, limit int) (*InventoryListResponse, error) {
	return s.ListInventory(ctx, &InventoryListRequest{
		Page: page, Limit: limit, Status: StatusOutOfStock, SortBy: "updated_at", SortOrder: "desc",
	})
}

// ListReorder lists records at or under their reorder point
func (s *Service) ListReorder(ctx context.Context, page, limit int) (*InventoryListResponse, error) {
	return s.ListInventory(ctx, &InventoryListRequest{
		Page: page, Limit: limit, Status: StatusReorder, SortBy: "current_stock", SortOrder: "asc",
	})
}

// AlertSummary gathers the three alert lists concurrently
func (s *Service) AlertSummary(ctx context.Context) (*AlertSummary, error) {
	summary := &AlertSummary{}
	limit := s.config.Inventory.AlertListLimit

	g, gctx := errgroup.WithContext(ctx)
	collect := func(status StockStatus, count *int64, items *[]StockRecord) {
		g.Go(func() error {
			scope := statusScope(status)
			if err := scope(s.db.WithContext(gctx).Model(&StockRecord{})).Count(count).Error; err != nil {
				return fmt.Errorf("failed to count %s records: %w", status, err)
			}
			err := scope(s.db.WithContext(gctx).Model(&StockRecord{})).
				Preload("Product").
				Order("current_stock ASC, id ASC").
				Limit(limit).
				Find(items).Error
			if err != nil {
				return fmt.Errorf("failed to list %s records: %w", status, err)
			}
			return nil
		})
	}

	collect(StatusLowStock, &summary.LowStockCount, &summary.LowStock)
	collect(StatusOutOfStock, &summary.OutOfStockCount, &summary.OutOfStock)
	collect(StatusReorder, &summary.ReorderCount, &summary.Reorder)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// History retrieves ledger entries for a record, newest first
func (s *Service) History(ctx context.Context, id uint, req *HistoryRequest) (*HistoryResponse, error) {
	if req.Type != "" && !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown ledger type %q", ErrInvalidRequest, req.Type)
	}
	if req.Days < 0 {
		return nil, fmt.Errorf("%w: days cannot be negative", ErrInvalidRequest)
	}

	rec, err := findRecord(s.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&StockLedgerEntry{}).Where("product_id = ?", rec.ProductID)
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Reason != "" {
		query = query.Where("reason = ?", req.Reason)
	}
	if req.Days > 0 {
		query = query.Where("created_at >= ?", time.Now().AddDate(0, 0, -req.Days))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	page, limit := pagination.Normalize(req.Page, req.Limit,
		s.config.Inventory.HistoryDefaultLimit, s.config.Inventory.HistoryMaxLimit)

	entries := []StockLedgerEntry{}
	err = query.
		Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ledger entries: %w", err)
	}

	return &HistoryResponse{
		Record:     rec,
		Entries:    entries,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// Valuation totals units and value across all stock records
func (s *Service) Valuation(ctx context.Context) (*Valuation, error) {
	var v Valuation
	err := s.db.WithContext(ctx).Model(&StockRecord{}).
		Select(`COUNT(*) AS items,
			COALESCE(SUM(current_stock), 0) AS units,
			COALESCE(SUM(reserved_stock), 0) AS reserved_units,
			COALESCE(SUM(available_stock), 0) AS available_units,
			COALESCE(SUM(total_value), 0) AS total_value`).
		Scan(&v).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute valuation: %w", err)
	}
	return &v, nil
}

// buildOrderClause builds ORDER BY clause for sorting
func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"sku":             true,
		"current_stock":   true,
		"available_stock": true,
		"reserved_stock":  true,
		"total_value":     true,
		"created_at":      true,
		"updated_at":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "updated_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
