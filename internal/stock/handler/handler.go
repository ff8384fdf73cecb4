package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/auth"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	st := rg.Group("/stock")
	{
		st.GET("", h.ListStock)
		st.GET("/low", h.ListLowStock)
		st.POST("/adjust", h.AdjustStock)
		st.POST("/reserve", h.ReserveStock)
		st.POST("/pick", h.PickStock)
		st.POST("/transfer", h.TransferStock)
		st.POST("/picking-list", h.PickingList)
		st.GET("/movements", h.ListMovements)
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses.
func (h *StockHandler) respondError(c *gin.Context, err error) {
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient stock",
			"requested": insufficient.Requested,
			"available": insufficient.Available,
			"shortfall": insufficient.Shortfall(),
		})
	case errors.Is(err, stock.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, stock.ErrInvalidTransfer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, stock.ErrAlreadyPicked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, stock.ErrPartialPick):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, stock.ErrConcurrencyConflict):
		// Transient; callers retry the whole operation.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true})
	default:
		h.logger.Error("stock operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *StockHandler) tenant(c *gin.Context) (string, bool) {
	tenantID := auth.GetTenantID(c)
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + auth.HeaderTenantID + " header"})
		return "", false
	}
	return tenantID, true
}

func (h *StockHandler) ListStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var q struct {
		ProductID   string  `form:"product_id"`
		VariantID   *string `form:"variant_id"`
		WarehouseID string  `form:"warehouse_id"`
		LocationID  *string `form:"location_id"`
		ActiveOnly  bool    `form:"active_only"`
		Page        int     `form:"page,default=1"`
		PageSize    int     `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.uc.ListStock(c.Request.Context(), &dto.StockFilters{
		TenantID:    tenantID,
		ProductID:   q.ProductID,
		VariantID:   q.VariantID,
		WarehouseID: q.WarehouseID,
		LocationID:  q.LocationID,
		ActiveOnly:  q.ActiveOnly,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *StockHandler) ListLowStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var q struct {
		WarehouseID string `form:"warehouse_id"`
		Page        int    `form:"page,default=1"`
		PageSize    int    `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.uc.ListLowStock(c.Request.Context(), tenantID, q.WarehouseID, q.Page, q.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *StockHandler) AdjustStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		ProductID        string     `json:"product_id" binding:"required"`
		VariantID        *string    `json:"variant_id"`
		WarehouseID      string     `json:"warehouse_id" binding:"required"`
		LocationID       *string    `json:"location_id"`
		QuantityChange   float64    `json:"quantity_change" binding:"required"`
		Reason           string     `json:"reason"`
		ReferenceID      string     `json:"reference_id"`
		ReferenceType    string     `json:"reference_type"`
		LotNumber        *string    `json:"lot_number"`
		ExpiryDate       *time.Time `json:"expiry_date"`
		ManufactureDate  *time.Time `json:"manufacture_date"`
		AllocationMethod string     `json:"allocation_method" binding:"omitempty,oneof=fifo lifo fefo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		TenantID:         tenantID,
		ProductID:        req.ProductID,
		VariantID:        req.VariantID,
		WarehouseID:      req.WarehouseID,
		LocationID:       req.LocationID,
		QuantityChange:   req.QuantityChange,
		Reason:           req.Reason,
		ReferenceID:      req.ReferenceID,
		ReferenceType:    req.ReferenceType,
		LotNumber:        req.LotNumber,
		ExpiryDate:       req.ExpiryDate,
		ManufactureDate:  req.ManufactureDate,
		AllocationMethod: req.AllocationMethod,
		UserID:           auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *StockHandler) ReserveStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		ProductID      string  `json:"product_id" binding:"required"`
		VariantID      *string `json:"variant_id"`
		Quantity       float64 `json:"quantity" binding:"required,gt=0"`
		OrderReference string  `json:"order_reference" binding:"required"`
		OrderLineID    string  `json:"order_line_id" binding:"required"`
		AllowBackorder bool    `json:"allow_backorder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.ReserveStock(c.Request.Context(), &dto.ReserveStockInput{
		TenantID:       tenantID,
		ProductID:      req.ProductID,
		VariantID:      req.VariantID,
		Quantity:       req.Quantity,
		OrderReference: req.OrderReference,
		OrderLineID:    req.OrderLineID,
		AllowBackorder: req.AllowBackorder,
		UserID:         auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	allocations := make([]gin.H, 0, len(result.Allocations))
	for _, a := range result.Allocations {
		allocations = append(allocations, gin.H{
			"stock_record_id": a.Record.ID,
			"warehouse_id":    a.Record.WarehouseID,
			"location_id":     a.Record.LocationID,
			"quantity":        a.Quantity,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"allocations":          allocations,
		"backordered_quantity": result.BackorderedQuantity,
	})
}

func (h *StockHandler) PickStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		OrderLineID   string  `json:"order_line_id" binding:"required"`
		StockRecordID string  `json:"stock_record_id" binding:"required"`
		Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.uc.PickStock(c.Request.Context(), &dto.PickStockInput{
		TenantID:      tenantID,
		OrderLineID:   req.OrderLineID,
		StockRecordID: req.StockRecordID,
		Quantity:      req.Quantity,
		PickedBy:      auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StockHandler) TransferStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		ProductID      string  `json:"product_id" binding:"required"`
		VariantID      *string `json:"variant_id"`
		FromWarehouse  string  `json:"from_warehouse" binding:"required"`
		FromLocationID *string `json:"from_location_id"`
		ToWarehouse    string  `json:"to_warehouse" binding:"required"`
		ToLocationID   *string `json:"to_location_id"`
		Quantity       float64 `json:"quantity" binding:"required,gt=0"`
		Reason         string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.TransferStock(c.Request.Context(), &dto.TransferStockInput{
		TenantID:       tenantID,
		ProductID:      req.ProductID,
		VariantID:      req.VariantID,
		FromWarehouse:  req.FromWarehouse,
		FromLocationID: req.FromLocationID,
		ToWarehouse:    req.ToWarehouse,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Reason:         req.Reason,
		UserID:         auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transfer_group_id":   result.TransferGroupID,
		"source":              result.Source,
		"destination":         result.Destination,
		"destination_created": result.DestinationCreated,
	})
}

func (h *StockHandler) PickingList(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req struct {
		Lines []struct {
			OrderLineID string  `json:"order_line_id" binding:"required"`
			ProductID   string  `json:"product_id" binding:"required"`
			VariantID   *string `json:"variant_id"`
			Quantity    float64 `json:"quantity" binding:"required,gt=0"`
		} `json:"lines" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.PickingListInput{TenantID: tenantID}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, dto.PickingListLine{
			OrderLineID: l.OrderLineID,
			ProductID:   l.ProductID,
			VariantID:   l.VariantID,
			Quantity:    l.Quantity,
		})
	}

	suggestions, err := h.uc.PickingList(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": suggestions})
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var q struct {
		ProductID    string  `form:"product_id"`
		WarehouseID  string  `form:"warehouse_id"`
		LocationID   *string `form:"location_id"`
		MovementType string  `form:"movement_type"`
		StartDate    string  `form:"start_date"`
		EndDate      string  `form:"end_date"`
		Page         int     `form:"page,default=1"`
		PageSize     int     `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters := &dto.MovementFilters{
		TenantID:     tenantID,
		ProductID:    q.ProductID,
		WarehouseID:  q.WarehouseID,
		LocationID:   q.LocationID,
		MovementType: q.MovementType,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	if q.StartDate != "" {
		t, err := time.Parse(time.RFC3339, q.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be RFC3339"})
			return
		}
		filters.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := time.Parse(time.RFC3339, q.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be RFC3339"})
			return
		}
		filters.EndDate = &t
	}

	items, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
