package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/location"
	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"github.com/google/uuid"
)

type locationUseCase struct {
	repo   location.Repository
	logger logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, log logger.ZapLogger) location.UseCase {
	return &locationUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *locationUseCase) CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.StockLocation, error) {
	code := location.BuildCode(input.Zone, input.Aisle, input.Rack, input.Shelf, input.Level)

	existing, err := uc.repo.FindByCode(ctx, input.TenantID, input.WarehouseID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q in warehouse %s", location.ErrCodeExists, code, input.WarehouseID)
	}

	now := time.Now()
	loc := &model.StockLocation{
		ID:           uuid.New().String(),
		TenantID:     input.TenantID,
		WarehouseID:  input.WarehouseID,
		Zone:         input.Zone,
		Aisle:        input.Aisle,
		Rack:         input.Rack,
		Shelf:        input.Shelf,
		Level:        input.Level,
		LocationCode: code,
		Name:         input.Name,
		Description:  optional(input.Description),
		MaxWeight:    input.MaxWeight,
		MaxVolume:    input.MaxVolume,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (uc *locationUseCase) GetLocation(ctx context.Context, tenantID, id string) (*model.StockLocation, error) {
	return uc.repo.FindByID(ctx, tenantID, id)
}

func (uc *locationUseCase) ListLocations(ctx context.Context, filters *dto.LocationFilters) ([]model.StockLocation, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *locationUseCase) DeactivateLocation(ctx context.Context, tenantID, id string) error {
	return uc.repo.Deactivate(ctx, tenantID, id)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
