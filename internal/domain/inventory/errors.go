// internal/domain/inventory/errors.go
package inventory

import (
	"errors"

	"github.com/your-org/fitness-inventory/internal/domain/product"
)

var (
	// Not found
	ErrStockRecordNotFound = errors.New("stock record not found")
	ErrProductNotFound     = product.ErrNotFound

	// Domain rule violations
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidRelease      = errors.New("cannot release more than reserved")
	ErrSameProductTransfer = errors.New("cannot transfer stock to the same product")

	// Validation
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidRequest  = errors.New("invalid request")

	// The conditional update matched no row
	ErrConcurrentUpdate = errors.New("stock record was modified concurrently")

	ErrLedgerImmutable = errors.New("ledger entries are append-only")
)

// ErrorClass groups errors by how callers should react to them
type ErrorClass string

const (
	ClassValidation    ErrorClass = "validation"
	ClassNotFound      ErrorClass = "not_found"
	ClassRuleViolation ErrorClass = "rule_violation"
	ClassConflict      ErrorClass = "conflict"
	ClassInternal      ErrorClass = "internal"
)

// ClassOf classifies err
func ClassOf(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidRequest),
		errors.Is(err, product.ErrDuplicateSKU):
		return ClassValidation
	case errors.Is(err, ErrStockRecordNotFound), errors.Is(err, ErrProductNotFound):
		return ClassNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidRelease),
		errors.Is(err, ErrSameProductTransfer):
		return ClassRuleViolation
	case errors.Is(err, ErrConcurrentUpdate):
		return ClassConflict
	default:
		return ClassInternal
	}
}

// IsRejection reports whether err is an expected refusal rather than a fault
func IsRejection(err error) bool {
	return err != nil && ClassOf(err) != ClassInternal
}
