package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"github.com/your-org/fitness-inventory/internal/pkg/logger"
	"github.com/your-org/fitness-inventory/internal/testutil"
)

func TestMigration_MigrateIndexSeed(t *testing.T) {
	db := testutil.NewDB(t)
	m := NewMigration(db, logger.Discard())

	require.NoError(t, m.RunAutoMigrations())

	created, failed := m.CreateIndexes()
	assert.Equal(t, len(IndexStatements), created)
	assert.Zero(t, failed)

	// idempotent
	created, failed = m.CreateIndexes()
	assert.Equal(t, len(IndexStatements), created)
	assert.Zero(t, failed)

	seeded, err := m.SeedInitialData()
	require.NoError(t, err)
	assert.Equal(t, len(seedProducts), seeded)

	seeded, err = m.SeedInitialData()
	require.NoError(t, err)
	assert.Zero(t, seeded)

	var p product.Product
	require.NoError(t, db.Where("sku = ?", "FIT-YM-6").First(&p).Error)
	assert.Equal(t, "yoga-mat-6mm", p.Slug)
	assert.True(t, p.IsActive)
	assert.Equal(t, 120, p.Quantity)
}

func TestMigration_GetTableInfo(t *testing.T) {
	db := testutil.NewDB(t)
	m := NewMigration(db, logger.Discard())
	require.NoError(t, m.RunAutoMigrations())
	_, err := m.SeedInitialData()
	require.NoError(t, err)

	info, err := m.GetTableInfo()
	require.NoError(t, err)

	counts := map[string]int64{}
	for _, ti := range info {
		counts[ti.Name] = ti.Records
	}
	assert.Equal(t, int64(len(seedProducts)), counts[product.Product{}.TableName()])
	assert.Contains(t, counts, inventory.StockRecord{}.TableName())
	assert.Contains(t, counts, inventory.StockLedgerEntry{}.TableName())
}
