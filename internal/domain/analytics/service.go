// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/fitness-inventory/internal/config"
	"gorm.io/gorm"
)

const (
	defaultDays = 30
	maxDays     = 365
	topMovers   = 10
)

// Service reports stock movement statistics read from the ledger
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// MovementAnalytics summarizes ledger activity over a window of days
type MovementAnalytics struct {
	Days      int                   `json:"days"`
	Since     time.Time             `json:"since"`
	UnitsIn   int64                 `json:"units_in"`
	UnitsOut  int64                 `json:"units_out"`
	NetChange int64                 `json:"net_change"`
	Entries   int64                 `json:"entries"`
	Daily     []DailyMovement       `json:"daily"`
	ByType    []TypeData            `json:"by_type"`
	TopMovers []ProductMovementData `json:"top_movers"`
}

// StockByCategory is the catalog's stock grouped by product category
type StockByCategory struct {
	Categories []CategoryData `json:"categories"`
}

// Supporting data structures
type DailyMovement struct {
	Date     string `json:"date"`
	UnitsIn  int64  `json:"units_in"`
	UnitsOut int64  `json:"units_out"`
	Entries  int64  `json:"entries"`
}

type TypeData struct {
	Type    string `json:"type"`
	Entries int64  `json:"entries"`
	Units   int64  `json:"units"`
}

type ProductMovementData struct {
	ProductID   uint   `json:"product_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	UnitsIn     int64  `json:"units_in"`
	UnitsOut    int64  `json:"units_out"`
	Entries     int64  `json:"entries"`
}

type CategoryData struct {
	Category     string `json:"category"`
	ProductCount int64  `json:"product_count"`
	Units        int64  `json:"units"`
	Reserved     int64  `json:"reserved"`
	Value        int64  `json:"value"` // In cents
}

// GetMovementAnalytics aggregates ledger entries created in the last days days.
// Reservations and releases carry direction none and count as entries only.
func (s *Service) GetMovementAnalytics(ctx context.Context, days int) (*MovementAnalytics, error) {
	if days <= 0 {
		days = defaultDays
	}
	if days > maxDays {
		days = maxDays
	}

	since := time.Now().AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)
	analytics := &MovementAnalytics{
		Days:      days,
		Since:     since,
		Daily:     []DailyMovement{},
		ByType:    []TypeData{},
		TopMovers: []ProductMovementData{},
	}

	// Totals
	err := db.Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE 0 END), 0) AS units_in,
			COALESCE(SUM(CASE WHEN direction = 'out' THEN quantity ELSE 0 END), 0) AS units_out,
			COUNT(*) AS entries
		FROM stock_ledger_entries
		WHERE created_at >= ?
	`, since).Row().Scan(&analytics.UnitsIn, &analytics.UnitsOut, &analytics.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement totals: %w", err)
	}
	analytics.NetChange = analytics.UnitsIn - analytics.UnitsOut

	// Daily movement
	rows, err := db.Raw(`
		SELECT
			DATE(created_at) AS day,
			COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE 0 END), 0) AS units_in,
			COALESCE(SUM(CASE WHEN direction = 'out' THEN quantity ELSE 0 END), 0) AS units_out,
			COUNT(*) AS entries
		FROM stock_ledger_entries
		WHERE created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY day
	`, since).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily movement: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyMovement
		if err := rows.Scan(&data.Date, &data.UnitsIn, &data.UnitsOut, &data.Entries); err != nil {
			return nil, fmt.Errorf("failed to read daily movement: %w", err)
		}
		// Postgres returns DATE as a timestamp
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		analytics.Daily = append(analytics.Daily, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily movement: %w", err)
	}

	// Entries by ledger type
	err = db.Raw(`
		SELECT type, COUNT(*) AS entries, COALESCE(SUM(quantity), 0) AS units
		FROM stock_ledger_entries
		WHERE created_at >= ?
		GROUP BY type
		ORDER BY entries DESC, type
	`, since).Scan(&analytics.ByType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get movement by type: %w", err)
	}

	// Top movers by units moved in either direction
	err = db.Raw(`
		SELECT
			l.product_id,
			l.sku,
			COALESCE(p.name, '') AS product_name,
			COALESCE(SUM(CASE WHEN l.direction = 'in' THEN l.quantity ELSE 0 END), 0) AS units_in,
			COALESCE(SUM(CASE WHEN l.direction = 'out' THEN l.quantity ELSE 0 END), 0) AS units_out,
			COUNT(*) AS entries
		FROM stock_ledger_entries l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.created_at >= ? AND l.direction <> 'none'
		GROUP BY l.product_id, l.sku, p.name
		ORDER BY SUM(l.quantity) DESC, l.product_id
		LIMIT ?
	`, since, topMovers).Scan(&analytics.TopMovers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top movers: %w", err)
	}

	return analytics, nil
}

// GetStockByCategory groups stock records by their product's category
func (s *Service) GetStockByCategory(ctx context.Context) (*StockByCategory, error) {
	result := &StockByCategory{Categories: []CategoryData{}}

	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(NULLIF(p.category, ''), 'uncategorized') AS category,
			COUNT(*) AS product_count,
			COALESCE(SUM(r.current_stock), 0) AS units,
			COALESCE(SUM(r.reserved_stock), 0) AS reserved,
			COALESCE(SUM(r.total_value), 0) AS value
		FROM stock_records r
		JOIN products p ON p.id = r.product_id AND p.deleted_at IS NULL
		GROUP BY COALESCE(NULLIF(p.category, ''), 'uncategorized')
		ORDER BY value DESC, category
	`).Scan(&result.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stock by category: %w", err)
	}

	return result, nil
}
