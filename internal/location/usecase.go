package location

import (
	"context"

	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/internal/model"
)

type UseCase interface {
	CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.StockLocation, error)
	GetLocation(ctx context.Context, tenantID, id string) (*model.StockLocation, error)
	ListLocations(ctx context.Context, filters *dto.LocationFilters) ([]model.StockLocation, int, error)
	DeactivateLocation(ctx context.Context, tenantID, id string) error
}
