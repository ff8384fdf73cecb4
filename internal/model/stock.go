package model

import "time"

// Allocation methods carried per stock lot, not globally per product.
const (
	AllocationFIFO = "fifo"
	AllocationLIFO = "lifo"
	AllocationFEFO = "fefo"
)

// Movement types written to the stock_movements ledger.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementTransfer   = "transfer"
	MovementAdjustment = "adjustment"
	MovementReserved   = "reserved"
)

// Reservation line status.
const (
	ReservationStatusReserved = "reserved"
	ReservationStatusPicked   = "picked"
)

type StockRecord struct {
	ID                  string     `db:"id" json:"id"`
	TenantID            string     `db:"tenant_id" json:"tenant_id"`
	ProductID           string     `db:"product_id" json:"product_id"`
	VariantID           *string    `db:"variant_id" json:"variant_id"`
	WarehouseID         string     `db:"warehouse_id" json:"warehouse_id"`
	LocationID          *string    `db:"location_id" json:"location_id"`
	LotNumber           *string    `db:"lot_number" json:"lot_number"`
	ExpiryDate          *time.Time `db:"expiry_date" json:"expiry_date"`
	ManufactureDate     *time.Time `db:"manufacture_date" json:"manufacture_date"`
	Quantity            float64    `db:"quantity" json:"quantity"`
	ReservedQuantity    float64    `db:"reserved_quantity" json:"reserved_quantity"`
	AvailableQuantity   float64    `db:"available_quantity" json:"available_quantity"` // Generated column
	BackorderedQuantity float64    `db:"backordered_quantity" json:"backordered_quantity"`
	AllocationMethod    string     `db:"allocation_method" json:"allocation_method"`
	MinStockLevel       float64    `db:"min_stock_level" json:"min_stock_level"`
	MaxStockLevel       float64    `db:"max_stock_level" json:"max_stock_level"`
	UnitCost            *float64   `db:"unit_cost" json:"unit_cost"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// StockMovement rows are append-only; they are never updated or deleted.
// Corrections are written as new adjustment rows.
//
// quantity_before/quantity_after always snapshot the record's physical
// quantity. For "reserved" rows the physical quantity is untouched, so both
// snapshots are equal and quantity_change records the change of available
// capacity instead; replaying the physical quantity therefore folds every
// movement type except "reserved".
type StockMovement struct {
	ID              string    `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	ProductID       string    `db:"product_id" json:"product_id"`
	VariantID       *string   `db:"variant_id" json:"variant_id"`
	WarehouseID     string    `db:"warehouse_id" json:"warehouse_id"`
	LocationID      *string   `db:"location_id" json:"location_id"`
	MovementType    string    `db:"movement_type" json:"movement_type"`
	QuantityChange  float64   `db:"quantity_change" json:"quantity_change"`
	QuantityBefore  float64   `db:"quantity_before" json:"quantity_before"`
	QuantityAfter   float64   `db:"quantity_after" json:"quantity_after"`
	ReferenceType   *string   `db:"reference_type" json:"reference_type"`
	ReferenceID     *string   `db:"reference_id" json:"reference_id"`
	ReferenceNumber *string   `db:"reference_number" json:"reference_number"`
	Notes           string    `db:"notes" json:"notes"`
	UnitCost        *float64  `db:"unit_cost" json:"unit_cost"`
	TotalCost       *float64  `db:"total_cost" json:"total_cost"`
	CreatedBy       *string   `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// StockReservation binds an order line to the stock record(s) its quantity
// was reserved from. Picking flips status to "picked" exactly once.
type StockReservation struct {
	ID             string     `db:"id" json:"id"`
	TenantID       string     `db:"tenant_id" json:"tenant_id"`
	OrderReference string     `db:"order_reference" json:"order_reference"`
	OrderLineID    string     `db:"order_line_id" json:"order_line_id"`
	StockRecordID  string     `db:"stock_record_id" json:"stock_record_id"`
	Quantity       float64    `db:"quantity" json:"quantity"`
	Status         string     `db:"status" json:"status"`
	PickedBy       *string    `db:"picked_by" json:"picked_by"`
	PickedAt       *time.Time `db:"picked_at" json:"picked_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
