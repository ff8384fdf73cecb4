package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-warehouse-service/internal/auth"
	"github.com/fekuna/omnipos-warehouse-service/internal/location"
	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loc := rg.Group("/locations")
	{
		loc.POST("", h.CreateLocation)
		loc.GET("", h.ListLocations)
		loc.GET("/:id", h.GetLocation)
		loc.DELETE("/:id", h.DeactivateLocation)
	}
}

func (h *LocationHandler) tenant(c *gin.Context) (string, bool) {
	tenantID := auth.GetTenantID(c)
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + auth.HeaderTenantID + " header"})
		return "", false
	}
	return tenantID, true
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		WarehouseID string   `json:"warehouse_id" binding:"required"`
		Zone        string   `json:"zone"`
		Aisle       string   `json:"aisle"`
		Rack        string   `json:"rack"`
		Shelf       string   `json:"shelf"`
		Level       string   `json:"level"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		MaxWeight   *float64 `json:"max_weight"`
		MaxVolume   *float64 `json:"max_volume"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := h.uc.CreateLocation(c.Request.Context(), &dto.CreateLocationInput{
		TenantID:    tenantID,
		WarehouseID: req.WarehouseID,
		Zone:        req.Zone,
		Aisle:       req.Aisle,
		Rack:        req.Rack,
		Shelf:       req.Shelf,
		Level:       req.Level,
		Name:        req.Name,
		Description: req.Description,
		MaxWeight:   req.MaxWeight,
		MaxVolume:   req.MaxVolume,
	})
	if err != nil {
		if errors.Is(err, location.ErrCodeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to create location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *LocationHandler) GetLocation(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	loc, err := h.uc.GetLocation(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.logger.Error("failed to get location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if loc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) ListLocations(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var q struct {
		WarehouseID string `form:"warehouse_id"`
		Zone        string `form:"zone"`
		ActiveOnly  bool   `form:"active_only"`
		Page        int    `form:"page,default=1"`
		PageSize    int    `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.uc.ListLocations(c.Request.Context(), &dto.LocationFilters{
		TenantID:    tenantID,
		WarehouseID: q.WarehouseID,
		Zone:        q.Zone,
		ActiveOnly:  q.ActiveOnly,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *LocationHandler) DeactivateLocation(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	if err := h.uc.DeactivateLocation(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
