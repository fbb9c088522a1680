// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item whose stock is tracked by the inventory ledger
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SKU               string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string         `gorm:"type:text" json:"description"`
	Category          string         `gorm:"size:100;index" json:"category"`
	Price             int64          `gorm:"not null" json:"price"` // Price in cents
	CostPrice         int64          `json:"cost_price"`            // Cost price in cents
	Quantity          int            `gorm:"default:0" json:"quantity"` // Mirror of the stock record's current stock
	LowStockThreshold int            `gorm:"not null" json:"low_stock_threshold"`
	IsActive          bool           `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string { return "products" }
