// internal/domain/inventory/report.go
package inventory

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReportRow is one product line of a stock report
type ReportRow struct {
	ProductID         uint   `json:"product_id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	CurrentStock      int    `json:"current_stock"`
	AvailableStock    int    `json:"available_stock"`
	ReservedStock     int    `json:"reserved_stock"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	ReorderPoint      int    `json:"reorder_point"`
	CostPrice         int64  `json:"cost_price"`
	TotalValue        int64  `json:"total_value"`
	Alerts            Alerts `json:"alerts"`
}

// StockReport is a point-in-time snapshot of every stock record
type StockReport struct {
	GeneratedAt     time.Time   `json:"generated_at"`
	Rows            []ReportRow `json:"rows"`
	Valuation       Valuation   `json:"valuation"`
	LowStockCount   int         `json:"low_stock_count"`
	OutOfStockCount int         `json:"out_of_stock_count"`
	ReorderCount    int         `json:"reorder_count"`
}

// BuildStockReport loads rows and totals concurrently
func (s *Service) BuildStockReport(ctx context.Context) (*StockReport, error) {
	ctx, span := s.startSpan(ctx, "BuildStockReport")
	defer span.End()

	var (
		records   []StockRecord
		valuation *Valuation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Preload("Product").
			Order("sku ASC").
			Find(&records).Error
		if err != nil {
			return fmt.Errorf("failed to load stock records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		valuation, err = s.Valuation(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	report := &StockReport{
		GeneratedAt: time.Now(),
		Rows:        make([]ReportRow, 0, len(records)),
		Valuation:   *valuation,
	}

	for _, rec := range records {
		row := ReportRow{
			ProductID:         rec.ProductID,
			SKU:               rec.SKU,
			CurrentStock:      rec.CurrentStock,
			AvailableStock:    rec.AvailableStock,
			ReservedStock:     rec.ReservedStock,
			LowStockThreshold: rec.LowStockThreshold,
			ReorderPoint:      rec.ReorderPoint,
			CostPrice:         rec.CostPrice,
			TotalValue:        rec.TotalValue,
			Alerts:            rec.Alerts,
		}
		if rec.Product != nil {
			row.Name = rec.Product.Name
			row.Category = rec.Product.Category
		}

		if row.Alerts.LowStock {
			report.LowStockCount++
		}
		if row.Alerts.OutOfStock {
			report.OutOfStockCount++
		}
		if row.Alerts.Reorder {
			report.ReorderCount++
		}

		report.Rows = append(report.Rows, row)
	}

	return report, nil
}
