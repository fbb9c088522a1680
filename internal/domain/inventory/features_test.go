package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	"github.com/your-org/fitness-inventory/internal/pkg/logger"
	"github.com/your-org/fitness-inventory/internal/testutil"
)

const missingProductID = 999999

type ledgerTestContext struct {
	t        *testing.T
	svc      *Service
	products *product.Service
	ids      map[string]uint
	result   *OperationResult
	bulk     *BulkAdjustResult
	err      error
}

func (c *ledgerTestContext) reset() {
	db := testutil.NewDB(c.t, &product.Product{}, &StockRecord{}, &StockLedgerEntry{})
	cfg := testutil.Config()

	c.svc = NewService(db, cfg, logger.Discard())
	c.products = product.NewService(db, cfg)
	c.products.SetStockHooks(c.svc)
	c.ids = map[string]uint{}
	c.result = nil
	c.bulk = nil
	c.err = nil
}

func (c *ledgerTestContext) idOf(sku string) (uint, error) {
	id, ok := c.ids[sku]
	if !ok {
		return 0, fmt.Errorf("unknown product %q", sku)
	}
	return id, nil
}

func (c *ledgerTestContext) anEmptyCatalog() error {
	return nil
}

func (c *ledgerTestContext) aProductWithUnitsInStock(sku string, quantity int) error {
	p, err := c.products.CreateProduct(context.Background(), &product.ProductCreateRequest{
		SKU:       sku,
		Name:      "Product " + sku,
		Price:     1000,
		CostPrice: 500,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}
	c.ids[sku] = p.ID
	return nil
}

func (c *ledgerTestContext) iReserveUnitsOf(quantity int, sku string) error {
	id, err := c.idOf(sku)
	if err != nil {
		return err
	}
	c.result, c.err = c.svc.Reserve(context.Background(), id, &QuantityRequest{Quantity: quantity}, nil)
	return nil
}

func (c *ledgerTestContext) iReleaseUnitsOf(quantity int, sku string) error {
	id, err := c.idOf(sku)
	if err != nil {
		return err
	}
	c.result, c.err = c.svc.Release(context.Background(), id, &QuantityRequest{Quantity: quantity}, nil)
	return nil
}

func (c *ledgerTestContext) iAdjustBy(sku string, delta int) error {
	id, err := c.idOf(sku)
	if err != nil {
		return err
	}
	c.result, c.err = c.svc.Adjust(context.Background(), id, &AdjustRequest{Adjustment: delta}, nil)
	return nil
}

func (c *ledgerTestContext) iTransferUnitsFromTo(quantity int, from, to string) error {
	fromID, err := c.idOf(from)
	if err != nil {
		return err
	}
	toID, err := c.idOf(to)
	if err != nil {
		return err
	}
	c.result, c.err = c.svc.Transfer(context.Background(), &TransferRequest{
		FromProductID: fromID,
		ToProductID:   toID,
		Quantity:      quantity,
	}, nil)
	return nil
}

func (c *ledgerTestContext) iAuditWithAnActualCountOf(sku string, actual int) error {
	id, err := c.idOf(sku)
	if err != nil {
		return err
	}
	c.result, c.err = c.svc.Audit(context.Background(), id, &AuditRequest{ActualStock: &actual}, nil)
	return nil
}

func (c *ledgerTestContext) iBulkAdjust(table *godog.Table) error {
	req := &BulkAdjustRequest{}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		sku := row.Cells[0].Value
		delta, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}

		id, ok := c.ids[sku]
		if !ok {
			id = missingProductID
		}
		req.Adjustments = append(req.Adjustments, BulkAdjustItem{ProductID: id, Adjustment: delta})
	}

	c.bulk, c.err = c.svc.BulkAdjust(context.Background(), req, nil)
	return nil
}

func (c *ledgerTestContext) hasCurrentAvailableAndReserved(sku string, current, available, reserved int) error {
	id, err := c.idOf(sku)
	if err != nil {
		return err
	}
	rec, err := c.svc.GetRecord(context.Background(), id)
	if err != nil {
		return err
	}
	if rec.CurrentStock != current || rec.AvailableStock != available || rec.ReservedStock != reserved {
		return fmt.Errorf("expected current %d, available %d, reserved %d; got %d, %d, %d",
			current, available, reserved, rec.CurrentStock, rec.AvailableStock, rec.ReservedStock)
	}
	return nil
}

func (c *ledgerTestContext) theOperationFailsWith(message string) error {
	if c.err == nil {
		return fmt.Errorf("expected error containing %q but operation succeeded", message)
	}
	if !strings.Contains(c.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *ledgerTestContext) entries(sku string) ([]StockLedgerEntry, error) {
	id, err := c.idOf(sku)
	if err != nil {
		return nil, err
	}
	history, err := c.svc.History(context.Background(), id, &HistoryRequest{Limit: 100})
	if err != nil {
		return nil, err
	}
	return history.Entries, nil
}

func (c *ledgerTestContext) lastEntry(sku string) (*StockLedgerEntry, error) {
	entries, err := c.entries(sku)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no ledger entries for %q", sku)
	}
	return &entries[0], nil
}

func (c *ledgerTestContext) hasLedgerEntries(sku string, count int) error {
	entries, err := c.entries(sku)
	if err != nil {
		return err
	}
	if len(entries) != count {
		return fmt.Errorf("expected %d ledger entries, got %d", count, len(entries))
	}
	return nil
}

func (c *ledgerTestContext) theLastLedgerEntryHasNewStock(sku string, newStock int) error {
	entry, err := c.lastEntry(sku)
	if err != nil {
		return err
	}
	if entry.NewStock != newStock {
		return fmt.Errorf("expected new stock %d, got %d", newStock, entry.NewStock)
	}
	return nil
}

func (c *ledgerTestContext) theLastLedgerEntryHasDirectionAndRelatedProduct(sku, direction, related string) error {
	entry, err := c.lastEntry(sku)
	if err != nil {
		return err
	}
	relatedID, err := c.idOf(related)
	if err != nil {
		return err
	}
	if string(entry.Direction) != direction {
		return fmt.Errorf("expected direction %q, got %q", direction, entry.Direction)
	}
	if entry.RelatedProductID == nil || *entry.RelatedProductID != relatedID {
		return fmt.Errorf("expected related product %d, got %v", relatedID, entry.RelatedProductID)
	}
	return nil
}

func (c *ledgerTestContext) theLastLedgerEntryHasDirectionAndType(sku, direction, ledgerType string) error {
	entry, err := c.lastEntry(sku)
	if err != nil {
		return err
	}
	if string(entry.Direction) != direction || string(entry.Type) != ledgerType {
		return fmt.Errorf("expected %s/%s, got %s/%s", direction, ledgerType, entry.Direction, entry.Type)
	}
	return nil
}

func (c *ledgerTestContext) theResultReportsNoDiscrepancy() error {
	if c.err != nil {
		return fmt.Errorf("expected result but got error: %v", c.err)
	}
	if !c.result.NoDiscrepancy {
		return fmt.Errorf("expected no discrepancy, got entries %v", c.result.Entries)
	}
	return nil
}

func (c *ledgerTestContext) theBatchHasSuccessesAndFailures(succeeded, failed int) error {
	if c.err != nil {
		return fmt.Errorf("expected batch result but got error: %v", c.err)
	}
	if c.bulk.Succeeded != succeeded || c.bulk.Failed != failed {
		return fmt.Errorf("expected %d/%d, got %d/%d", succeeded, failed, c.bulk.Succeeded, c.bulk.Failed)
	}
	return nil
}

func initializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		tc := &ledgerTestContext{t: t}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			tc.reset()
			return ctx, nil
		})

		// Given steps
		ctx.Step(`^an empty catalog$`, tc.anEmptyCatalog)
		ctx.Step(`^a product "([^"]*)" with (\d+) units in stock$`, tc.aProductWithUnitsInStock)

		// When steps
		ctx.Step(`^I reserve (\d+) units of "([^"]*)"$`, tc.iReserveUnitsOf)
		ctx.Step(`^I release (\d+) units of "([^"]*)"$`, tc.iReleaseUnitsOf)
		ctx.Step(`^I adjust "([^"]*)" by (-?\d+)$`, tc.iAdjustBy)
		ctx.Step(`^I transfer (\d+) units from "([^"]*)" to "([^"]*)"$`, tc.iTransferUnitsFromTo)
		ctx.Step(`^I audit "([^"]*)" with an actual count of (\d+)$`, tc.iAuditWithAnActualCountOf)
		ctx.Step(`^I bulk adjust:$`, tc.iBulkAdjust)

		// Then steps
		ctx.Step(`^"([^"]*)" has current (-?\d+), available (-?\d+) and reserved (\d+)$`, tc.hasCurrentAvailableAndReserved)
		ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
		ctx.Step(`^"([^"]*)" has (\d+) ledger entries$`, tc.hasLedgerEntries)
		ctx.Step(`^the last ledger entry for "([^"]*)" has new stock (-?\d+)$`, tc.theLastLedgerEntryHasNewStock)
		ctx.Step(`^the last ledger entry for "([^"]*)" has direction "([^"]*)" and related product "([^"]*)"$`, tc.theLastLedgerEntryHasDirectionAndRelatedProduct)
		ctx.Step(`^the last ledger entry for "([^"]*)" has direction "([^"]*)" and type "([^"]*)"$`, tc.theLastLedgerEntryHasDirectionAndType)
		ctx.Step(`^the result reports no discrepancy$`, tc.theResultReportsNoDiscrepancy)
		ctx.Step(`^the batch has (\d+) successes and (\d+) failures$`, tc.theBatchHasSuccessesAndFailures)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/stock_ledger.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
