package location

import (
	"context"

	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, loc *model.StockLocation) error
	FindByID(ctx context.Context, tenantID, id string) (*model.StockLocation, error)
	FindByCode(ctx context.Context, tenantID, warehouseID, code string) (*model.StockLocation, error)
	FindAll(ctx context.Context, filters *dto.LocationFilters) ([]model.StockLocation, int, error)
	Deactivate(ctx context.Context, tenantID, id string) error
}
