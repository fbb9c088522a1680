package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/testutil"
)

func TestRenderStockReportHTML(t *testing.T) {
	svc := NewService(testutil.Config())

	report := &inventory.StockReport{
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Rows: []inventory.ReportRow{
			{SKU: "FIT-KB-16", Name: "Kettlebell <16kg>", CurrentStock: 3, LowStockThreshold: 5, ReorderPoint: 4,
				CostPrice: 2100, TotalValue: 6300, Alerts: inventory.Alerts{LowStock: true, Reorder: true}},
			{SKU: "FIT-WP-1KG", Name: "Whey", CurrentStock: 0, Alerts: inventory.Alerts{LowStock: true, OutOfStock: true, Reorder: true}},
		},
		Valuation:       inventory.Valuation{Items: 2, Units: 3, TotalValue: 6300},
		LowStockCount:   1,
		OutOfStockCount: 1,
		ReorderCount:    2,
	}

	out, err := svc.RenderStockReportHTML(report)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "FitStore stock report")
	assert.Contains(t, html, "March 1, 2026")
	assert.Contains(t, html, "FIT-KB-16")
	assert.Contains(t, html, "Kettlebell &lt;16kg&gt;")
	assert.Contains(t, html, "63.00")
	assert.Contains(t, html, `<span class="badge out">OUT</span>`)
	assert.Contains(t, html, "1 out of stock, 1 low, 2 to reorder")
}

func TestRenderStockReportHTML_Empty(t *testing.T) {
	svc := NewService(testutil.Config())

	out, err := svc.RenderStockReportHTML(&inventory.StockReport{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No stock records")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "1234.05", formatCents(123405))
	assert.Equal(t, "-0.50", formatCents(-50))
}
