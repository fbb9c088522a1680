// internal/domain/inventory/operations.go
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// AdjustRequest represents a relative stock adjustment
type AdjustRequest struct {
	Adjustment int        `json:"adjustment" binding:"required"`
	Reason     string     `json:"reason" binding:"max=100"`
	Type       LedgerType `json:"type" binding:"omitempty,oneof=in out adjustment"`
	Notes      string     `json:"notes"`
}

// QuantityRequest is the body of reserve and release calls
type QuantityRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason" binding:"max=100"`
}

// TransferRequest moves available stock between two products
type TransferRequest struct {
	FromProductID uint   `json:"fromProductId"`
	ToProductID   uint   `json:"toProductId" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Reason        string `json:"reason" binding:"max=100"`
}

// AuditRequest reconciles the ledger with a physical count
type AuditRequest struct {
	ActualStock *int   `json:"actualStock" binding:"required,gte=0"`
	Notes       string `json:"notes"`
}

// UpdateStockRequest sets current stock directly
type UpdateStockRequest struct {
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Reason   string `json:"reason" binding:"max=100"`
	Notes    string `json:"notes"`
}

// SettingsRequest partially updates thresholds and cost
type SettingsRequest struct {
	LowStockThreshold *int   `json:"lowStockThreshold" binding:"omitempty,gte=0"`
	ReorderPoint      *int   `json:"reorderPoint" binding:"omitempty,gte=0"`
	CostPrice         *int64 `json:"costPrice" binding:"omitempty,gte=0"`
}

// BulkAdjustItem is one line of a bulk adjustment
type BulkAdjustItem struct {
	ProductID  uint   `json:"productId" binding:"required"`
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason" binding:"max=100"`
}

// BulkAdjustRequest represents a batch of independent adjustments
type BulkAdjustRequest struct {
	Adjustments []BulkAdjustItem `json:"adjustments" binding:"required,min=1,dive"`
}

// BulkItemResult reports the outcome of one bulk line
type BulkItemResult struct {
	ProductID uint              `json:"product_id"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Record    *StockRecord      `json:"record,omitempty"`
	Entry     *StockLedgerEntry `json:"entry,omitempty"`
}

// BulkAdjustResult summarizes a batch
type BulkAdjustResult struct {
	BatchID   string           `json:"batch_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

// Adjust applies a relative change to current stock, flooring at zero
func (s *Service) Adjust(ctx context.Context, id uint, req *AdjustRequest, actor *uint) (*OperationResult, error) {
	ledgerType := req.Type
	if ledgerType == "" {
		ledgerType = LedgerTypeAdjustment
	}
	return s.adjust(ctx, id, req.Adjustment, reasonOr(req.Reason, "manual_adjustment"), req.Notes, ledgerType, nil, actor)
}

func (s *Service) adjust(ctx context.Context, id uint, delta int, reason, notes string, ledgerType LedgerType, batchID *string, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "Adjust",
		attribute.Int64("inventory.id", int64(id)),
		attribute.Int("inventory.delta", delta),
		attribute.String("inventory.ledger_type", string(ledgerType)))
	defer span.End()
	defer func() {
		s.observe(ctx, span, "adjust", logrus.Fields{"product_id": id, "quantity": delta, "type": ledgerType}, delta, err)
	}()

	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment must be non-zero", ErrInvalidQuantity)
	}
	if !ledgerType.Valid() {
		return nil, fmt.Errorf("%w: unknown ledger type %q", ErrInvalidRequest, ledgerType)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		next, floored := levelsOf(rec).adjust(delta)
		metadata := Metadata{"requested_delta": delta}
		if floored {
			metadata["floored"] = true
		}

		direction := DirectionOut
		if delta > 0 {
			direction = DirectionIn
		}

		after, entry, err := s.apply(tx, rec, next, func(r *StockRecord) {
			if delta > 0 {
				r.LastRestockedAt = timePtr(time.Now())
			}
		}, ledgerTemplate{
			Type:        ledgerType,
			Reason:      reason,
			Quantity:    abs(next.current - rec.CurrentStock), // moved, not requested
			Direction:   direction,
			BatchID:     batchID,
			PerformedBy: actor,
			Notes:       notes,
			Metadata:    metadata,
		})
		if err != nil {
			return err
		}

		result = &OperationResult{Record: after, Entries: []StockLedgerEntry{*entry}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Reserve earmarks available stock without changing current stock
func (s *Service) Reserve(ctx context.Context, id uint, req *QuantityRequest, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "Reserve",
		attribute.Int64("inventory.id", int64(id)),
		attribute.Int("inventory.quantity", req.Quantity))
	defer span.End()
	defer func() {
		s.observe(ctx, span, "reserve", logrus.Fields{"product_id": id, "quantity": req.Quantity}, req.Quantity, err)
	}()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		before := levelsOf(rec)
		next, err := before.reserve(req.Quantity)
		if err != nil {
			return err
		}

		after, entry, err := s.apply(tx, rec, next, nil, ledgerTemplate{
			Type:        LedgerTypeReservation,
			Reason:      reasonOr(req.Reason, "reservation"),
			Quantity:    req.Quantity,
			Direction:   DirectionNone,
			PerformedBy: actor,
			Metadata:    reservationMetadata(before, next),
		})
		if err != nil {
			return err
		}

		result = &OperationResult{Record: after, Entries: []StockLedgerEntry{*entry}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Release returns reserved stock to available
func (s *Service) Release(ctx context.Context, id uint, req *QuantityRequest, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "Release",
		attribute.Int64("inventory.id", int64(id)),
		attribute.Int("inventory.quantity", req.Quantity))
	defer span.End()
	defer func() {
		s.observe(ctx, span, "release", logrus.Fields{"product_id": id, "quantity": req.Quantity}, req.Quantity, err)
	}()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		before := levelsOf(rec)
		next, err := before.release(req.Quantity)
		if err != nil {
			return err
		}

		after, entry, err := s.apply(tx, rec, next, nil, ledgerTemplate{
			Type:        LedgerTypeRelease,
			Reason:      reasonOr(req.Reason, "release"),
			Quantity:    req.Quantity,
			Direction:   DirectionNone,
			PerformedBy: actor,
			Metadata:    reservationMetadata(before, next),
		})
		if err != nil {
			return err
		}

		result = &OperationResult{Record: after, Entries: []StockLedgerEntry{*entry}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func reservationMetadata(before, after levels) Metadata {
	return Metadata{
		"reserved_before":  before.reserved,
		"reserved_after":   after.reserved,
		"available_before": before.available(),
		"available_after":  after.available(),
	}
}

// Transfer moves available stock from one product to another in one transaction
func (s *Service) Transfer(ctx context.Context, req *TransferRequest, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "Transfer",
		attribute.Int64("inventory.from_id", int64(req.FromProductID)),
		attribute.Int64("inventory.to_id", int64(req.ToProductID)),
		attribute.Int("inventory.quantity", req.Quantity))
	defer span.End()
	defer func() {
		s.observe(ctx, span, "transfer", logrus.Fields{
			"product_id":    req.FromProductID,
			"to_product_id": req.ToProductID,
			"quantity":      req.Quantity,
		}, req.Quantity, err)
	}()

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidQuantity)
	}
	if req.FromProductID == req.ToProductID {
		return nil, ErrSameProductTransfer
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, err := findRecord(tx, req.FromProductID, false)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		to, err := findRecord(tx, req.ToProductID, false)
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		if from.ID == to.ID {
			return ErrSameProductTransfer
		}

		// Lock in ascending id order so opposing transfers cannot deadlock
		first, second := from.ID, to.ID
		if first > second {
			first, second = second, first
		}
		locked := make(map[uint]*StockRecord, 2)
		for _, recordID := range []uint{first, second} {
			rec, err := lockByRecordID(tx, recordID)
			if err != nil {
				return err
			}
			locked[recordID] = rec
		}
		from, to = locked[from.ID], locked[to.ID]

		fromNext, err := levelsOf(from).withdraw(req.Quantity)
		if err != nil {
			return err
		}
		toNext := levelsOf(to).deposit(req.Quantity)

		reason := reasonOr(req.Reason, "transfer")
		fromProductID, toProductID := from.ProductID, to.ProductID

		fromAfter, outEntry, err := s.apply(tx, from, fromNext, nil, ledgerTemplate{
			Type:             LedgerTypeTransfer,
			Reason:           reason,
			Quantity:         req.Quantity,
			Direction:        DirectionOut,
			RelatedProductID: &toProductID,
			PerformedBy:      actor,
		})
		if err != nil {
			return err
		}

		toAfter, inEntry, err := s.apply(tx, to, toNext, nil, ledgerTemplate{
			Type:             LedgerTypeTransfer,
			Reason:           reason,
			Quantity:         req.Quantity,
			Direction:        DirectionIn,
			RelatedProductID: &fromProductID,
			PerformedBy:      actor,
		})
		if err != nil {
			return err
		}

		result = &OperationResult{
			Record:  fromAfter,
			Related: toAfter,
			Entries: []StockLedgerEntry{*outEntry, *inEntry},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Audit reconciles current stock with a physical count
func (s *Service) Audit(ctx context.Context, id uint, req *AuditRequest, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "Audit", attribute.Int64("inventory.id", int64(id)))
	defer span.End()

	var discrepancy int
	defer func() {
		s.observe(ctx, span, "audit", logrus.Fields{"product_id": id, "discrepancy": discrepancy}, discrepancy, err)
	}()

	if req.ActualStock == nil || *req.ActualStock < 0 {
		return nil, fmt.Errorf("%w: actual stock must be zero or more", ErrInvalidQuantity)
	}
	actual := *req.ActualStock

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		discrepancy = actual - rec.CurrentStock
		if discrepancy == 0 {
			result = &OperationResult{
				Record:        rec,
				Entries:       []StockLedgerEntry{},
				NoDiscrepancy: true,
				Message:       "No discrepancy found",
			}
			return nil
		}

		after, entry, err := s.apply(tx, rec, levelsOf(rec).set(actual), func(r *StockRecord) {
			r.LastAuditedAt = timePtr(time.Now())
		}, ledgerTemplate{
			Type:        LedgerTypeAudit,
			Reason:      "audit",
			Quantity:    abs(discrepancy),
			Direction:   directionOf(discrepancy),
			PerformedBy: actor,
			Notes:       req.Notes,
			Metadata: Metadata{
				"discrepancy":    discrepancy,
				"expected_stock": rec.CurrentStock,
				"actual_stock":   actual,
			},
		})
		if err != nil {
			return err
		}

		result = &OperationResult{
			Record:  after,
			Entries: []StockLedgerEntry{*entry},
			Message: fmt.Sprintf("Stock corrected by %+d", discrepancy),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// BulkAdjust runs each adjustment in its own transaction under one batch id.
// Item failures are reported per item and never abort the batch.
func (s *Service) BulkAdjust(ctx context.Context, req *BulkAdjustRequest, actor *uint) (*BulkAdjustResult, error) {
	if len(req.Adjustments) == 0 {
		return nil, fmt.Errorf("%w: at least one adjustment is required", ErrInvalidRequest)
	}
	if len(req.Adjustments) > s.config.Inventory.BulkMaxItems {
		return nil, fmt.Errorf("%w: at most %d adjustments per batch", ErrInvalidRequest, s.config.Inventory.BulkMaxItems)
	}

	ctx, span := s.startSpan(ctx, "BulkAdjust", attribute.Int("inventory.items", len(req.Adjustments)))
	defer span.End()

	batchID := uuid.NewString()
	span.SetAttributes(attribute.String("inventory.batch_id", batchID))

	out := &BulkAdjustResult{
		BatchID: batchID,
		Total:   len(req.Adjustments),
		Results: make([]BulkItemResult, 0, len(req.Adjustments)),
	}

	for _, item := range req.Adjustments {
		res, err := s.adjust(ctx, item.ProductID, item.Adjustment,
			reasonOr(item.Reason, "bulk_adjustment"), "", LedgerTypeBulkAdjustment, &batchID, actor)
		if err != nil {
			out.Failed++
			out.Results = append(out.Results, BulkItemResult{
				ProductID: item.ProductID,
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}

		out.Succeeded++
		out.Results = append(out.Results, BulkItemResult{
			ProductID: item.ProductID,
			Success:   true,
			Record:    res.Record,
			Entry:     &res.Entries[0],
		})
	}

	s.logger.WithFields(logrus.Fields{
		"batch_id":  batchID,
		"total":     out.Total,
		"succeeded": out.Succeeded,
		"failed":    out.Failed,
	}).Info("Bulk adjustment finished")

	return out, nil
}

// UpdateStock sets current stock directly; available is recomputed
// against outstanding reservations
func (s *Service) UpdateStock(ctx context.Context, id uint, req *UpdateStockRequest, actor *uint) (result *OperationResult, err error) {
	ctx, span := s.startSpan(ctx, "UpdateStock", attribute.Int64("inventory.id", int64(id)))
	defer span.End()

	var diff int
	defer func() {
		s.observe(ctx, span, "update_stock", logrus.Fields{"product_id": id, "difference": diff}, diff, err)
	}()

	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be zero or more", ErrInvalidQuantity)
	}
	quantity := *req.Quantity

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		diff = quantity - rec.CurrentStock
		after, entry, err := s.apply(tx, rec, levelsOf(rec).set(quantity), func(r *StockRecord) {
			if diff > 0 {
				r.LastRestockedAt = timePtr(time.Now())
			}
		}, ledgerTemplate{
			Type:        LedgerTypeStockUpdate,
			Reason:      reasonOr(req.Reason, "manual_update"),
			Quantity:    abs(diff),
			Direction:   directionOf(diff),
			PerformedBy: actor,
			Notes:       req.Notes,
			Metadata:    Metadata{"set_to": quantity},
		})
		if err != nil {
			return err
		}

		result = &OperationResult{Record: after, Entries: []StockLedgerEntry{*entry}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateSettings changes thresholds and cost price. No ledger entry is
// written since stock does not move.
func (s *Service) UpdateSettings(ctx context.Context, id uint, req *SettingsRequest) (*StockRecord, error) {
	if req.LowStockThreshold == nil && req.ReorderPoint == nil && req.CostPrice == nil {
		return nil, fmt.Errorf("%w: no settings provided", ErrInvalidRequest)
	}
	if (req.LowStockThreshold != nil && *req.LowStockThreshold < 0) ||
		(req.ReorderPoint != nil && *req.ReorderPoint < 0) ||
		(req.CostPrice != nil && *req.CostPrice < 0) {
		return nil, fmt.Errorf("%w: settings cannot be negative", ErrInvalidRequest)
	}

	var updated *StockRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, id, true)
		if err != nil {
			return err
		}

		productUpdates := map[string]interface{}{}
		if req.LowStockThreshold != nil {
			rec.LowStockThreshold = *req.LowStockThreshold
			productUpdates["low_stock_threshold"] = *req.LowStockThreshold
		}
		if req.ReorderPoint != nil {
			rec.ReorderPoint = *req.ReorderPoint
		}
		if req.CostPrice != nil {
			rec.CostPrice = *req.CostPrice
			productUpdates["cost_price"] = *req.CostPrice
		}

		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("failed to update stock settings: %w", err)
		}

		if len(productUpdates) > 0 {
			err := tx.Model(&product.Product{}).Where("id = ?", rec.ProductID).Updates(productUpdates).Error
			if err != nil {
				return fmt.Errorf("failed to sync product settings: %w", err)
			}
		}

		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("product_id", updated.ProductID).Info("Stock settings updated")
	return updated, nil
}
