package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"github.com/your-org/fitness-inventory/internal/pkg/logger"
	"github.com/your-org/fitness-inventory/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	products *product.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t, &product.Product{}, &StockRecord{}, &StockLedgerEntry{})
	cfg := testutil.Config()

	svc := NewService(db, cfg, logger.Discard())
	products := product.NewService(db, cfg)
	products.SetStockHooks(svc)

	return &fixture{db: db, svc: svc, products: products}
}

// createProduct creates a product and, through the hooks, its stock record
func (f *fixture) createProduct(t *testing.T, sku string, quantity int) *product.Product {
	t.Helper()

	p, err := f.products.CreateProduct(context.Background(), &product.ProductCreateRequest{
		SKU:       sku,
		Name:      "Product " + sku,
		Category:  "strength",
		Price:     4999,
		CostPrice: 2000,
		Quantity:  quantity,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) record(t *testing.T, productID uint) StockRecord {
	t.Helper()

	var rec StockRecord
	require.NoError(t, f.db.Where("product_id = ?", productID).First(&rec).Error)
	return rec
}

func (f *fixture) productQuantity(t *testing.T, productID uint) int {
	t.Helper()

	var p product.Product
	require.NoError(t, f.db.First(&p, productID).Error)
	return p.Quantity
}

func (f *fixture) ledger(t *testing.T, productID uint) []StockLedgerEntry {
	t.Helper()

	var entries []StockLedgerEntry
	require.NoError(t, f.db.Where("product_id = ?", productID).Order("id ASC").Find(&entries).Error)
	return entries
}

func intPtr(n int) *int { return &n }

func uintPtr(n uint) *uint { return &n }
