package stock

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("stock record not found")
	ErrInvalidTransfer     = errors.New("invalid transfer")
	ErrAlreadyPicked       = errors.New("order line already picked")
	ErrPartialPick         = errors.New("pick must release the full reserved quantity for the line")
	ErrConcurrencyConflict = errors.New("stock record was modified concurrently")
)

// InsufficientStockError reports how far short the stock falls so callers
// can show staff the exact deficit.
type InsufficientStockError struct {
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %.2f, available %.2f (short %.2f)",
		e.Requested, e.Available, e.Shortfall())
}

func (e *InsufficientStockError) Shortfall() float64 {
	return e.Requested - e.Available
}
