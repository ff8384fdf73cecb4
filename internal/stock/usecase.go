package stock

import (
	"context"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
)

type UseCase interface {
	GetStock(ctx context.Context, tenantID, productID string, variantID *string, warehouseID string, locationID *string) (*model.StockRecord, error)
	ListStock(ctx context.Context, filters *dto.StockFilters) ([]model.StockRecord, int, error)
	ListLowStock(ctx context.Context, tenantID, warehouseID string, page, pageSize int) ([]model.StockRecord, int, error)

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockRecord, error)
	ReserveStock(ctx context.Context, input *dto.ReserveStockInput) (*dto.ReservationResult, error)
	PickStock(ctx context.Context, input *dto.PickStockInput) (*model.StockReservation, error)
	TransferStock(ctx context.Context, input *dto.TransferStockInput) (*dto.TransferResult, error)

	PickingList(ctx context.Context, input *dto.PickingListInput) ([]dto.PickingSuggestion, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
