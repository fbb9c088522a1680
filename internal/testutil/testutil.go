// Package testutil builds in-memory stores for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/fitness-inventory/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config returns a configuration with the production defaults that
// services read at runtime.
func Config() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Fitness Store Inventory",
			Version:     "test",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Port:           "8080",
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 1000,
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Inventory: config.InventoryConfig{
			DefaultLowStockThreshold: 10,
			DefaultReorderPoint:      5,
			HistoryDefaultLimit:      20,
			HistoryMaxLimit:          100,
			BulkMaxItems:             200,
			AlertListLimit:           10,
			IdempotencyTTL:           time.Hour,
		},
		Report: config.ReportConfig{CompanyName: "FitStore"},
	}
}

// NewDB opens an in-memory SQLite database and migrates models into it.
// A single connection keeps the database alive and serializes transactions.
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	return db
}

// NewRedis starts a miniredis server and returns a client bound to it.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
