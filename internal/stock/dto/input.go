package dto

import "time"

type AdjustStockInput struct {
	TenantID       string
	ProductID      string
	VariantID      *string
	WarehouseID    string
	LocationID     *string
	QuantityChange float64
	Reason         string
	ReferenceID    string
	ReferenceType  string // 'manual_adjustment', 'stock_in', 'cycle_count'
	UserID         string

	// Lot identity and allocation policy for the record a first stock-in
	// creates; ignored once the record exists.
	LotNumber        *string
	ExpiryDate       *time.Time
	ManufactureDate  *time.Time
	AllocationMethod string // fifo (default), lifo, fefo
}

type ReserveStockInput struct {
	TenantID       string
	ProductID      string
	VariantID      *string
	Quantity       float64
	OrderReference string
	OrderLineID    string
	AllowBackorder bool // the product's backorder policy, resolved by the caller
	UserID         string
}

type PickStockInput struct {
	TenantID      string
	OrderLineID   string
	StockRecordID string
	Quantity      float64
	PickedBy      string
}

type TransferStockInput struct {
	TenantID       string
	ProductID      string
	VariantID      *string
	FromWarehouse  string
	FromLocationID *string
	ToWarehouse    string
	ToLocationID   *string
	Quantity       float64
	Reason         string
	UserID         string
}

type PickingListLine struct {
	OrderLineID string
	ProductID   string
	VariantID   *string
	Quantity    float64
}

type PickingListInput struct {
	TenantID string
	Lines    []PickingListLine
}
