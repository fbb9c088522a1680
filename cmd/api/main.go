// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/infrastructure/database/postgres"
	"github.com/your-org/fitness-inventory/internal/infrastructure/database/redis"
	"github.com/your-org/fitness-inventory/internal/interfaces/http"
	"github.com/your-org/fitness-inventory/internal/pkg/logger"
	"github.com/your-org/fitness-inventory/internal/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg)
	log.WithField("environment", cfg.App.Environment).
		Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize telemetry")
	}

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	migration.CreateIndexes()

	// Seed the development catalog and open stock records for it
	if cfg.IsDevelopment() {
		if _, err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
		if _, err := migration.GetTableInfo(); err != nil {
			log.WithError(err).Warn("Could not read table info")
		}
	}

	synced, err := inventory.NewService(db.GetDB(), cfg, log).SyncWithProducts(ctx)
	if err != nil {
		log.WithError(err).Warn("Stock record sync failed")
	} else {
		log.WithField("created", synced.Created).Info("Stock records synced with products")
	}

	server := http.NewServer(cfg, db.GetDB(), redisClient, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush telemetry")
	}

	log.Info("Server shutdown completed")
}
