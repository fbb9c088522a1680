// internal/domain/inventory/stock.go
package inventory

import "fmt"

// levels is the mutable part of a stock record; available is always derived
type levels struct {
	current  int
	reserved int
}

func levelsOf(r *StockRecord) levels {
	return levels{current: r.CurrentStock, reserved: r.ReservedStock}
}

func (l levels) available() int {
	return l.current - l.reserved
}

// adjust applies delta and floors the result at zero.
// Reservations are left untouched, so available may go negative.
func (l levels) adjust(delta int) (levels, bool) {
	next := l.current + delta
	if next < 0 {
		return levels{current: 0, reserved: l.reserved}, true
	}
	return levels{current: next, reserved: l.reserved}, false
}

func (l levels) reserve(quantity int) (levels, error) {
	if quantity <= 0 {
		return l, fmt.Errorf("%w: reserve quantity must be positive", ErrInvalidQuantity)
	}
	if quantity > l.available() {
		return l, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, l.available(), quantity)
	}
	return levels{current: l.current, reserved: l.reserved + quantity}, nil
}

func (l levels) release(quantity int) (levels, error) {
	if quantity <= 0 {
		return l, fmt.Errorf("%w: release quantity must be positive", ErrInvalidQuantity)
	}
	if quantity > l.reserved {
		return l, fmt.Errorf("%w: reserved %d, requested %d", ErrInvalidRelease, l.reserved, quantity)
	}
	return levels{current: l.current, reserved: l.reserved - quantity}, nil
}

// withdraw removes stock that is not reserved, as the source side of a transfer
func (l levels) withdraw(quantity int) (levels, error) {
	if quantity <= 0 {
		return l, fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidQuantity)
	}
	if l.available() < quantity {
		return l, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, l.available(), quantity)
	}
	return levels{current: l.current - quantity, reserved: l.reserved}, nil
}

func (l levels) deposit(quantity int) levels {
	return levels{current: l.current + quantity, reserved: l.reserved}
}

func (l levels) set(quantity int) levels {
	return levels{current: quantity, reserved: l.reserved}
}

func directionOf(diff int) Direction {
	switch {
	case diff > 0:
		return DirectionIn
	case diff < 0:
		return DirectionOut
	default:
		return DirectionNone
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
