package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsAdjust(t *testing.T) {
	tests := []struct {
		name        string
		start       levels
		delta       int
		wantCurrent int
		wantFloored bool
	}{
		{"increase", levels{current: 10}, 5, 15, false},
		{"decrease", levels{current: 10}, -4, 6, false},
		{"exactly to zero", levels{current: 10}, -10, 0, false},
		{"floors at zero", levels{current: 10}, -20, 0, true},
		{"keeps reservations when flooring", levels{current: 3, reserved: 2}, -9, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, floored := tt.start.adjust(tt.delta)

			assert.Equal(t, tt.wantCurrent, next.current)
			assert.Equal(t, tt.start.reserved, next.reserved)
			assert.Equal(t, tt.wantFloored, floored)
		})
	}
}

func TestLevelsAdjust_NegativeAvailableAfterFloor(t *testing.T) {
	next, _ := levels{current: 3, reserved: 2}.adjust(-9)

	assert.Equal(t, -2, next.available())
}

func TestLevelsReserve(t *testing.T) {
	start := levels{current: 10, reserved: 4}

	next, err := start.reserve(6)
	require.NoError(t, err)
	assert.Equal(t, 10, next.current)
	assert.Equal(t, 10, next.reserved)
	assert.Equal(t, 0, next.available())

	_, err = start.reserve(7)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available 6, requested 7")

	_, err = start.reserve(0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLevelsRelease(t *testing.T) {
	start := levels{current: 10, reserved: 4}

	next, err := start.release(4)
	require.NoError(t, err)
	assert.Equal(t, 0, next.reserved)
	assert.Equal(t, 10, next.available())

	_, err = start.release(5)
	assert.ErrorIs(t, err, ErrInvalidRelease)

	_, err = start.release(-1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLevelsWithdrawDeposit(t *testing.T) {
	from := levels{current: 5, reserved: 1}

	_, err := from.withdraw(5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	next, err := from.withdraw(4)
	require.NoError(t, err)
	assert.Equal(t, 1, next.current)
	assert.Equal(t, 0, next.available())

	to := levels{current: 0}.deposit(4)
	assert.Equal(t, 4, to.current)
	assert.Equal(t, 4, to.available())
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, DirectionIn, directionOf(3))
	assert.Equal(t, DirectionOut, directionOf(-1))
	assert.Equal(t, DirectionNone, directionOf(0))
}

func TestEvaluateAlerts(t *testing.T) {
	rec := StockRecord{CurrentStock: 5, LowStockThreshold: 10, ReorderPoint: 5}
	assert.Equal(t, Alerts{LowStock: true, Reorder: true}, rec.EvaluateAlerts())

	rec.CurrentStock = 0
	assert.Equal(t, Alerts{LowStock: true, OutOfStock: true, Reorder: true}, rec.EvaluateAlerts())

	rec.CurrentStock = 11
	assert.False(t, rec.EvaluateAlerts().Any())
}

func TestStockRecordDerive(t *testing.T) {
	rec := StockRecord{CurrentStock: 8, ReservedStock: 3, CostPrice: 250, LowStockThreshold: 10}
	rec.derive()

	assert.Equal(t, 5, rec.AvailableStock)
	assert.Equal(t, int64(2000), rec.TotalValue)
	assert.True(t, rec.Alerts.LowStock)
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassValidation, ClassOf(ErrInvalidQuantity))
	assert.Equal(t, ClassNotFound, ClassOf(ErrStockRecordNotFound))
	assert.Equal(t, ClassNotFound, ClassOf(ErrProductNotFound))
	assert.Equal(t, ClassRuleViolation, ClassOf(ErrInsufficientStock))
	assert.Equal(t, ClassRuleViolation, ClassOf(ErrInvalidRelease))
	assert.Equal(t, ClassConflict, ClassOf(ErrConcurrentUpdate))
	assert.Equal(t, ClassInternal, ClassOf(assert.AnError))
	assert.False(t, IsRejection(nil))
}
