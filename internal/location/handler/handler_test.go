package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-warehouse-service/internal/location"
	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type stubUseCase struct {
	err error
}

func (s *stubUseCase) CreateLocation(_ context.Context, input *dto.CreateLocationInput) (*model.StockLocation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.StockLocation{
		ID:           "loc-1",
		TenantID:     input.TenantID,
		WarehouseID:  input.WarehouseID,
		LocationCode: location.BuildCode(input.Zone, input.Aisle, input.Rack, input.Shelf, input.Level),
	}, nil
}

func (s *stubUseCase) GetLocation(context.Context, string, string) (*model.StockLocation, error) {
	return nil, s.err
}

func (s *stubUseCase) ListLocations(context.Context, *dto.LocationFilters) ([]model.StockLocation, int, error) {
	return nil, 0, s.err
}

func (s *stubUseCase) DeactivateLocation(context.Context, string, string) error {
	return s.err
}

func doCreate(t *testing.T, uc location.UseCase) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewLocationHandler(uc, logger.NewNopLogger()).RegisterRoutes(r.Group("/api/v1"))

	body := `{"warehouse_id":"wh-a","zone":"A","aisle":"03"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "t1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLocationStatusMapping(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		w := doCreate(t, &stubUseCase{})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"A-03"`) {
			t.Fatalf("body %s missing derived code", w.Body.String())
		}
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		err := fmt.Errorf("%w: %q in warehouse wh-a", location.ErrCodeExists, "A-03")
		w := doCreate(t, &stubUseCase{err: err})
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})

	t.Run("other failures are internal", func(t *testing.T) {
		w := doCreate(t, &stubUseCase{err: errors.New("pq: connection refused")})
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
		if strings.Contains(w.Body.String(), "connection refused") {
			t.Fatalf("body %s must not leak the driver error", w.Body.String())
		}
	})
}
