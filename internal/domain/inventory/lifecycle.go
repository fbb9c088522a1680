// internal/domain/inventory/lifecycle.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/fitness-inventory/internal/domain/product"
	"gorm.io/gorm"
)

// SyncResult reports how many products gained a stock record
type SyncResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// OnProductCreated implements product.StockHooks
func (s *Service) OnProductCreated(tx *gorm.DB, p *product.Product) error {
	_, _, err := s.initialize(tx, p, nil)
	return err
}

// OnProductDeleted implements product.StockHooks. Products without a
// stock record are not an error here.
func (s *Service) OnProductDeleted(tx *gorm.DB, productID uint) error {
	if err := tx.Where("product_id = ?", productID).Delete(&StockRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete stock record: %w", err)
	}
	return nil
}

// initialize returns the existing record untouched when there is one
func (s *Service) initialize(tx *gorm.DB, p *product.Product, actor *uint) (*StockRecord, bool, error) {
	var existing StockRecord
	err := tx.Where("product_id = ?", p.ID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check stock record: %w", err)
	}

	opening := p.Quantity
	if opening < 0 {
		opening = 0
	}

	rec := StockRecord{
		ProductID:         p.ID,
		SKU:               p.SKU,
		CurrentStock:      opening,
		LowStockThreshold: p.LowStockThreshold,
		ReorderPoint:      s.config.Inventory.DefaultReorderPoint,
		CostPrice:         p.CostPrice,
	}
	if opening > 0 {
		rec.LastRestockedAt = timePtr(time.Now())
	}

	if err := tx.Create(&rec).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create stock record: %w", err)
	}

	if opening > 0 {
		_, err := appendEntry(tx, &rec, 0, ledgerTemplate{
			Type:        LedgerTypeIn,
			Reason:      "initial_stock",
			Quantity:    opening,
			Direction:   DirectionIn,
			PerformedBy: actor,
		})
		if err != nil {
			return nil, false, err
		}
	}

	if opening != p.Quantity {
		if err := mirrorProductQuantity(tx, p.ID, opening); err != nil {
			return nil, false, err
		}
	}

	s.logger.WithField("product_id", p.ID).WithField("sku", p.SKU).Debug("Stock record initialized")
	return &rec, true, nil
}

// SyncWithProducts backfills a stock record for every product lacking one
func (s *Service) SyncWithProducts(ctx context.Context) (*SyncResult, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&product.Product{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var missing []product.Product
	err := db.Where("id NOT IN (?)", db.Model(&StockRecord{}).Select("product_id")).
		Order("id ASC").
		Find(&missing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products without stock records: %w", err)
	}

	result := &SyncResult{}
	for i := range missing {
		var created bool
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			_, created, err = s.initialize(tx, &missing[i], nil)
			return err
		})
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		}
	}
	result.Skipped = int(total) - result.Created

	s.logger.WithField("created", result.Created).WithField("skipped", result.Skipped).Info("Stock records synced with products")
	return result, nil
}
