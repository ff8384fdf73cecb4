package dto

import (
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
)

type StockFilters struct {
	TenantID    string
	ProductID   string
	VariantID   *string
	WarehouseID string
	LocationID  *string
	LowStock    bool // available_quantity <= min_stock_level, min_stock_level > 0
	ActiveOnly  bool
	Page        int
	PageSize    int
}

type MovementFilters struct {
	TenantID     string
	ProductID    string
	WarehouseID  string
	LocationID   *string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

// ReservationAllocation is one record's share of a reservation, applied
// inside the reservation transaction. Backordered carries the part of the
// requirement this record could not cover out of available quantity.
type ReservationAllocation struct {
	RecordID    string
	Quantity    float64
	Backordered float64
}

// AllocationResult pairs a stock record with the quantity reserved from it,
// for order-line-to-location bindings on the caller's side.
type AllocationResult struct {
	Record   model.StockRecord
	Quantity float64
}

type ReservationResult struct {
	Allocations []AllocationResult
	// BackorderedQuantity is the part of the request not covered by
	// available stock; zero unless the backorder policy permitted it.
	BackorderedQuantity float64
}

type TransferResult struct {
	// TransferGroupID links the paired ledger rows of one transfer.
	TransferGroupID    string
	Source             *model.StockRecord
	Destination        *model.StockRecord
	DestinationCreated bool
}

// PickingSuggestion is one line of a picking list: the best single location
// to pick the full line quantity from, or a warning when none covers it.
type PickingSuggestion struct {
	OrderLineID string
	ProductID   string
	VariantID   *string
	Quantity    float64
	Record      *model.StockRecord
	Warning     string
}
