package stock

import (
	"context"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
)

type Repository interface {
	// Stock records
	GetRecord(ctx context.Context, tenantID, recordID string) (*model.StockRecord, error)
	FindRecord(ctx context.Context, tenantID, productID string, variantID *string, warehouseID string, locationID *string) (*model.StockRecord, error)
	FindCandidates(ctx context.Context, tenantID, productID string, variantID *string) ([]model.StockRecord, error)
	FindAll(ctx context.Context, filters *dto.StockFilters) ([]model.StockRecord, int, error)
	CreateRecord(ctx context.Context, rec *model.StockRecord) error
	DeactivateRecord(ctx context.Context, tenantID, recordID string) error

	// Reservations
	FindReservationByLine(ctx context.Context, tenantID, orderLineID, stockRecordID string) (*model.StockReservation, error)
	FindReservationsByReference(ctx context.Context, tenantID, orderReference string) ([]model.StockReservation, error)

	// Movements / audit
	LogMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Composite transactional operations; each commits or rolls back as a
	// unit and returns ErrConcurrencyConflict when a guarded update loses a
	// race.
	AdjustStockWithMovement(ctx context.Context, rec *model.StockRecord, isNew bool, movement *model.StockMovement) error
	ReserveWithMovements(ctx context.Context, tenantID string, allocations []dto.ReservationAllocation, movements []*model.StockMovement, reservations []*model.StockReservation) error
	PickWithMovement(ctx context.Context, res *model.StockReservation, movement *model.StockMovement) error
	TransferWithMovements(ctx context.Context, tenantID, sourceID string, quantity float64, dest *model.StockRecord, destIsNew bool, movements []*model.StockMovement) error
}
