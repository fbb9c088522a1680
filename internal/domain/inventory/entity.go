// internal/domain/inventory/entity.go
package inventory

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/your-org/fitness-inventory/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// LedgerType represents the kind of stock transaction a ledger entry records
type LedgerType string

const (
	LedgerTypeIn             LedgerType = "in"
	LedgerTypeOut            LedgerType = "out"
	LedgerTypeAdjustment     LedgerType = "adjustment"
	LedgerTypeReservation    LedgerType = "reservation"
	LedgerTypeRelease        LedgerType = "release"
	LedgerTypeTransfer       LedgerType = "transfer"
	LedgerTypeAudit          LedgerType = "audit"
	LedgerTypeBulkAdjustment LedgerType = "bulk_adjustment"
	LedgerTypeStockUpdate    LedgerType = "stock_update"
)

// Valid reports whether t is a known ledger type
func (t LedgerType) Valid() bool {
	switch t {
	case LedgerTypeIn, LedgerTypeOut, LedgerTypeAdjustment, LedgerTypeReservation,
		LedgerTypeRelease, LedgerTypeTransfer, LedgerTypeAudit,
		LedgerTypeBulkAdjustment, LedgerTypeStockUpdate:
		return true
	}
	return false
}

// Direction represents which way stock moved
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionNone Direction = "none" // reservations, releases and no-op sets
)

// Alerts are derived from the live counters on every read and never stored
type Alerts struct {
	LowStock   bool `json:"low_stock"`
	OutOfStock bool `json:"out_of_stock"`
	Reorder    bool `json:"reorder"`
}

// Any reports whether at least one alert is raised
func (a Alerts) Any() bool {
	return a.LowStock || a.OutOfStock || a.Reorder
}

// StockRecord holds the stock counters for one product
type StockRecord struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProductID         uint       `gorm:"uniqueIndex;not null" json:"product_id"`
	SKU               string     `gorm:"not null;size:100;index" json:"sku"`
	CurrentStock      int        `gorm:"not null;index" json:"current_stock"`
	AvailableStock    int        `gorm:"not null" json:"available_stock"`
	ReservedStock     int        `gorm:"not null" json:"reserved_stock"`
	LowStockThreshold int        `gorm:"not null" json:"low_stock_threshold"`
	ReorderPoint      int        `gorm:"not null" json:"reorder_point"`
	CostPrice         int64      `gorm:"not null" json:"cost_price"`  // In cents
	TotalValue        int64      `gorm:"not null" json:"total_value"` // CurrentStock * CostPrice
	LastAuditedAt     *time.Time `json:"last_audited_at,omitempty"`
	LastRestockedAt   *time.Time `json:"last_restocked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Alerts Alerts `gorm:"-" json:"alerts"`

	// Relationships
	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// StockLedgerEntry is an append-only record of one stock-affecting transaction.
// PreviousStock, NewStock and Difference always describe CurrentStock.
type StockLedgerEntry struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProductID        uint       `gorm:"not null;index:idx_ledger_product_created,priority:1" json:"product_id"`
	SKU              string     `gorm:"not null;size:100;index" json:"sku"`
	StockRecordID    uint       `gorm:"not null;index" json:"stock_record_id"`
	Type             LedgerType `gorm:"not null;size:30;index" json:"type"`
	Reason           string     `gorm:"size:100;index" json:"reason"`
	Quantity         int        `gorm:"not null" json:"quantity"`
	Direction        Direction  `gorm:"not null;size:10" json:"direction"`
	PreviousStock    int        `gorm:"not null" json:"previous_stock"`
	NewStock         int        `gorm:"not null" json:"new_stock"`
	Difference       int        `gorm:"not null" json:"difference"`
	RelatedProductID *uint      `gorm:"index" json:"related_product_id,omitempty"`
	BatchID          *string    `gorm:"size:36;index" json:"batch_id,omitempty"`
	PerformedBy      *uint      `gorm:"index" json:"performed_by,omitempty"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	Metadata         Metadata   `json:"metadata,omitempty"`
	CreatedAt        time.Time  `gorm:"index:idx_ledger_product_created,priority:2" json:"created_at"`
}

// TableName overrides
func (StockRecord) TableName() string      { return "stock_records" }
func (StockLedgerEntry) TableName() string { return "stock_ledger_entries" }

// EvaluateAlerts computes alert flags from the current counters
func (r *StockRecord) EvaluateAlerts() Alerts {
	return Alerts{
		LowStock:   r.CurrentStock <= r.LowStockThreshold,
		OutOfStock: r.CurrentStock <= 0,
		Reorder:    r.CurrentStock <= r.ReorderPoint,
	}
}

// derive recomputes the fields that follow from the counters
func (r *StockRecord) derive() {
	r.AvailableStock = r.CurrentStock - r.ReservedStock
	r.TotalValue = int64(r.CurrentStock) * r.CostPrice
	r.Alerts = r.EvaluateAlerts()
}

// Hooks

func (r *StockRecord) BeforeSave(tx *gorm.DB) error {
	r.derive()
	return nil
}

func (r *StockRecord) AfterFind(tx *gorm.DB) error {
	r.Alerts = r.EvaluateAlerts()
	return nil
}

func (e *StockLedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

func (e *StockLedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

// Metadata is a free-form JSON object attached to a ledger entry
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

// GormDataType implements schema.GormDataTypeInterface
func (Metadata) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect
func (Metadata) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
