// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&product.Product{},
		&inventory.StockRecord{},
		&inventory.StockLedgerEntry{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// IndexStatements are the indexes gorm tags cannot express
var IndexStatements = []string{
	// Product indexes
	"CREATE INDEX IF NOT EXISTS idx_products_active_category ON products(is_active, category)",
	"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

	// Alert lookups
	"CREATE INDEX IF NOT EXISTS idx_stock_records_out_of_stock ON stock_records(current_stock) WHERE current_stock <= 0",
	"CREATE INDEX IF NOT EXISTS idx_stock_records_low_stock ON stock_records(current_stock, low_stock_threshold) WHERE current_stock <= low_stock_threshold",
	"CREATE INDEX IF NOT EXISTS idx_stock_records_reorder ON stock_records(current_stock, reorder_point) WHERE current_stock <= reorder_point",

	// Ledger history
	"CREATE INDEX IF NOT EXISTS idx_ledger_record_created ON stock_ledger_entries(stock_record_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_ledger_type_created ON stock_ledger_entries(type, created_at DESC)",
}

// CreateIndexes creates additional indexes. Failures are logged and counted, not fatal.
func (m *Migration) CreateIndexes() (int, int) {
	m.logger.Info("Creating additional database indexes")

	successCount := 0
	failCount := 0

	for _, indexSQL := range IndexStatements {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": successCount,
		"failed":  failCount,
	}).Info("Index creation finished")
	return successCount, failCount
}

// seedProducts is the development catalog; quantities become opening stock on sync
var seedProducts = []product.Product{
	{SKU: "FIT-DB-20", Name: "Adjustable Dumbbell 20kg", Category: "strength", Price: 899900, CostPrice: 620000, Quantity: 40, LowStockThreshold: 8},
	{SKU: "FIT-KB-16", Name: "Cast Iron Kettlebell 16kg", Category: "strength", Price: 349900, CostPrice: 210000, Quantity: 25, LowStockThreshold: 5},
	{SKU: "FIT-YM-6", Name: "Yoga Mat 6mm", Category: "yoga", Price: 129900, CostPrice: 60000, Quantity: 120, LowStockThreshold: 20},
	{SKU: "FIT-RB-SET", Name: "Resistance Band Set", Category: "accessories", Price: 99900, CostPrice: 35000, Quantity: 6, LowStockThreshold: 10},
	{SKU: "FIT-WP-1KG", Name: "Whey Protein 1kg", Category: "nutrition", Price: 249900, CostPrice: 160000, Quantity: 0, LowStockThreshold: 15},
	{SKU: "FIT-JR-PRO", Name: "Speed Jump Rope", Category: "cardio", Price: 59900, CostPrice: 18000, Quantity: 60, LowStockThreshold: 10},
}

// SeedInitialData inserts the development catalog. Existing SKUs are skipped.
func (m *Migration) SeedInitialData() (int, error) {
	m.logger.Info("Seeding initial data")

	created := 0
	for _, seed := range seedProducts {
		var existing product.Product
		err := m.db.Unscoped().Where("sku = ?", seed.SKU).First(&existing).Error
		if err == nil {
			m.logger.WithField("sku", seed.SKU).Debug("Product already exists")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up product %s: %w", seed.SKU, err)
		}

		prod := seed
		prod.Slug = slug.Make(prod.Name)
		prod.IsActive = true
		if err := m.db.Create(&prod).Error; err != nil {
			return created, fmt.Errorf("failed to create product %s: %w", seed.SKU, err)
		}
		created++
		m.logger.WithField("sku", prod.SKU).Info("Created seed product")
	}

	m.logger.WithField("created", created).Info("Initial data seeded")
	return created, nil
}

// TableInfo is the row count of one table
type TableInfo struct {
	Name    string
	Records int64
}

// GetTableInfo logs and returns row counts for every table
func (m *Migration) GetTableInfo() ([]TableInfo, error) {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(tables)

	info := make([]TableInfo, 0, len(tables))
	var totalRecords int64
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		totalRecords += count
		info = append(info, TableInfo{Name: table, Records: count})

		m.logger.WithFields(logrus.Fields{"table": table, "records": count}).Info("Table")
	}

	m.logger.WithFields(logrus.Fields{
		"tables":  len(tables),
		"records": totalRecords,
	}).Info("Database tables information")

	return info, nil
}
