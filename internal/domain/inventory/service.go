// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const instrumentationName = "github.com/your-org/fitness-inventory/internal/domain/inventory"

// Service handles stock ledger business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	tracer trace.Tracer

	operations metric.Int64Counter
	rejections metric.Int64Counter
	units      metric.Int64Counter
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	meter := otel.Meter(instrumentationName)

	s := &Service{
		db:     db,
		config: cfg,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
	}

	var err error
	if s.operations, err = meter.Int64Counter("inventory.operations",
		metric.WithDescription("Stock operations applied"),
		metric.WithUnit("{operation}")); err != nil {
		logger.WithError(err).Warn("inventory.operations counter unavailable")
		s.operations = noop.Int64Counter{}
	}
	if s.rejections, err = meter.Int64Counter("inventory.rejections",
		metric.WithDescription("Stock operations refused by validation or stock rules"),
		metric.WithUnit("{operation}")); err != nil {
		logger.WithError(err).Warn("inventory.rejections counter unavailable")
		s.rejections = noop.Int64Counter{}
	}
	if s.units, err = meter.Int64Counter("inventory.units_moved",
		metric.WithDescription("Units moved by stock operations"),
		metric.WithUnit("{unit}")); err != nil {
		logger.WithError(err).Warn("inventory.units_moved counter unavailable")
		s.units = noop.Int64Counter{}
	}

	return s
}

// OperationResult is returned by every mutating stock operation
type OperationResult struct {
	Record        *StockRecord       `json:"record"`
	Related       *StockRecord       `json:"related_record,omitempty"`
	Entries       []StockLedgerEntry `json:"entries"`
	NoDiscrepancy bool               `json:"no_discrepancy,omitempty"`
	Message       string             `json:"message,omitempty"`
}

// ledgerTemplate carries the descriptive part of a ledger entry;
// the stock snapshot is filled in when the change is persisted
type ledgerTemplate struct {
	Type             LedgerType
	Reason           string
	Quantity         int
	Direction        Direction
	RelatedProductID *uint
	BatchID          *string
	PerformedBy      *uint
	Notes            string
	Metadata         Metadata
}

// recordQuery returns a fresh query over stock records, optionally row-locked
func recordQuery(tx *gorm.DB, lock bool) *gorm.DB {
	if lock {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// findRecord resolves id as a product ID first, then as a stock record ID
func findRecord(tx *gorm.DB, id uint, lock bool) (*StockRecord, error) {
	var rec StockRecord
	err := recordQuery(tx, lock).Where("product_id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = recordQuery(tx, lock).Where("id = ?", id).First(&rec).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrStockRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to load stock record: %w", err)
	}
	return &rec, nil
}

// lockByRecordID re-reads a record by primary key under a row lock
func lockByRecordID(tx *gorm.DB, recordID uint) (*StockRecord, error) {
	var rec StockRecord
	if err := recordQuery(tx, true).Where("id = ?", recordID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrStockRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to lock stock record: %w", err)
	}
	return &rec, nil
}

// apply persists next for before with a conditional update, mirrors the
// product quantity and appends one ledger entry, all on tx
func (s *Service) apply(tx *gorm.DB, before *StockRecord, next levels, touch func(*StockRecord), tmpl ledgerTemplate) (*StockRecord, *StockLedgerEntry, error) {
	after := *before
	after.CurrentStock = next.current
	after.ReservedStock = next.reserved
	if touch != nil {
		touch(&after)
	}
	after.derive()
	after.UpdatedAt = time.Now()

	result := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&StockRecord{}).
		Where("id = ? AND current_stock = ? AND reserved_stock = ?", before.ID, before.CurrentStock, before.ReservedStock).
		Updates(map[string]interface{}{
			"current_stock":       after.CurrentStock,
			"available_stock":     after.AvailableStock,
			"reserved_stock":      after.ReservedStock,
			"low_stock_threshold": after.LowStockThreshold,
			"reorder_point":       after.ReorderPoint,
			"cost_price":          after.CostPrice,
			"total_value":         after.TotalValue,
			"last_audited_at":     after.LastAuditedAt,
			"last_restocked_at":   after.LastRestockedAt,
			"updated_at":          after.UpdatedAt,
		})
	if result.Error != nil {
		return nil, nil, fmt.Errorf("failed to update stock record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil, ErrConcurrentUpdate
	}

	if after.CurrentStock != before.CurrentStock {
		if err := mirrorProductQuantity(tx, after.ProductID, after.CurrentStock); err != nil {
			return nil, nil, err
		}
	}

	entry, err := appendEntry(tx, &after, before.CurrentStock, tmpl)
	if err != nil {
		return nil, nil, err
	}

	return &after, entry, nil
}

func appendEntry(tx *gorm.DB, rec *StockRecord, previous int, tmpl ledgerTemplate) (*StockLedgerEntry, error) {
	entry := StockLedgerEntry{
		ProductID:        rec.ProductID,
		SKU:              rec.SKU,
		StockRecordID:    rec.ID,
		Type:             tmpl.Type,
		Reason:           tmpl.Reason,
		Quantity:         tmpl.Quantity,
		Direction:        tmpl.Direction,
		PreviousStock:    previous,
		NewStock:         rec.CurrentStock,
		Difference:       rec.CurrentStock - previous,
		RelatedProductID: tmpl.RelatedProductID,
		BatchID:          tmpl.BatchID,
		PerformedBy:      tmpl.PerformedBy,
		Notes:            tmpl.Notes,
		Metadata:         tmpl.Metadata,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to write ledger entry: %w", err)
	}
	return &entry, nil
}

func mirrorProductQuantity(tx *gorm.DB, productID uint, quantity int) error {
	err := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		Update("quantity", quantity).Error
	if err != nil {
		return fmt.Errorf("failed to sync product quantity: %w", err)
	}
	return nil
}

// startSpan opens a span for a stock operation
func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "inventory."+op, trace.WithAttributes(attrs...))
}

// observe records the outcome of a stock operation on the span, the
// counters and the log
func (s *Service) observe(ctx context.Context, span trace.Span, op string, fields logrus.Fields, quantity int, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	entry := s.logger.WithFields(fields).WithField("operation", op)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsRejection(err) {
			s.rejections.Add(ctx, 1, attrs)
			entry.WithError(err).Warn("Stock operation rejected")
			return
		}
		entry.WithError(err).Error("Stock operation failed")
		return
	}

	span.SetStatus(codes.Ok, "")
	s.operations.Add(ctx, 1, attrs)
	if quantity != 0 {
		s.units.Add(ctx, int64(abs(quantity)), attrs)
	}
	entry.Info("Stock operation applied")
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

func timePtr(t time.Time) *time.Time {
	return &t
}
