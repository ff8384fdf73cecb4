package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stockUseCase struct {
	repo   stock.Repository
	locker stock.Locker
	logger logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, locker stock.Locker, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		locker: locker,
		logger: log,
	}
}

// lockProduct serializes every mutation path of one product so the
// read-compute-write sequence sees a stable snapshot. The row guards in the
// repository remain the hard backstop for writers that bypass this lock.
func (uc *stockUseCase) lockProduct(ctx context.Context, tenantID, productID string, variantID *string) (func(), error) {
	lockKey := fmt.Sprintf("lock:stock:%s:%s", tenantID, productID)
	if variantID != nil {
		lockKey += ":" + *variantID
	}

	lockValue := uuid.New().String()
	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond) // wait before retry
	}

	if !acquired {
		return nil, stock.ErrConcurrencyConflict
	}

	release := func() {
		if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release stock lock", zap.String("key", lockKey), zap.Error(err))
		}
	}
	return release, nil
}

func (uc *stockUseCase) GetStock(ctx context.Context, tenantID, productID string, variantID *string, warehouseID string, locationID *string) (*model.StockRecord, error) {
	rec, err := uc.repo.FindRecord(ctx, tenantID, productID, variantID, warehouseID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Zero record for products never stocked here, so reporting callers
		// don't have to special-case absence.
		return &model.StockRecord{
			TenantID:         tenantID,
			ProductID:        productID,
			VariantID:        variantID,
			WarehouseID:      warehouseID,
			LocationID:       locationID,
			AllocationMethod: model.AllocationFIFO,
		}, nil
	}
	return rec, nil
}

func (uc *stockUseCase) ListStock(ctx context.Context, filters *dto.StockFilters) ([]model.StockRecord, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *stockUseCase) ListLowStock(ctx context.Context, tenantID, warehouseID string, page, pageSize int) ([]model.StockRecord, int, error) {
	return uc.repo.FindAll(ctx, &dto.StockFilters{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		LowStock:    true,
		ActiveOnly:  true,
		Page:        page,
		PageSize:    pageSize,
	})
}

func (uc *stockUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockRecord, error) {
	method, err := allocationMethod(input.AllocationMethod)
	if err != nil {
		return nil, err
	}

	release, err := uc.lockProduct(ctx, input.TenantID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := uc.repo.FindRecord(ctx, input.TenantID, input.ProductID, input.VariantID, input.WarehouseID, input.LocationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isNew := rec == nil
	if isNew {
		rec = &model.StockRecord{
			ID:               uuid.New().String(),
			TenantID:         input.TenantID,
			ProductID:        input.ProductID,
			VariantID:        input.VariantID,
			WarehouseID:      input.WarehouseID,
			LocationID:       input.LocationID,
			LotNumber:        input.LotNumber,
			ExpiryDate:       input.ExpiryDate,
			ManufactureDate:  input.ManufactureDate,
			AllocationMethod: method,
			IsActive:         true,
			CreatedAt:        now,
		}
	}

	quantityBefore := rec.Quantity
	rec.Quantity += input.QuantityChange
	rec.UpdatedAt = now

	if rec.Quantity < 0 {
		return nil, &stock.InsufficientStockError{
			Requested: -input.QuantityChange,
			Available: quantityBefore,
		}
	}

	movementType := model.MovementAdjustment
	if input.ReferenceType == "stock_in" {
		movementType = model.MovementIn
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       input.TenantID,
		ProductID:      input.ProductID,
		VariantID:      input.VariantID,
		WarehouseID:    input.WarehouseID,
		LocationID:     input.LocationID,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		QuantityBefore: quantityBefore,
		QuantityAfter:  rec.Quantity,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Reason,
		CreatedBy:      optionalUser(input.UserID),
		CreatedAt:      now,
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, rec, isNew, movement); err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *stockUseCase) ReserveStock(ctx context.Context, input *dto.ReserveStockInput) (*dto.ReservationResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("reserve quantity must be positive, got %.2f", input.Quantity)
	}

	release, err := uc.lockProduct(ctx, input.TenantID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := uc.repo.FindCandidates(ctx, input.TenantID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}

	ranked := stock.RankCandidates(records)

	totalAvailable := 0.0
	for _, r := range ranked {
		totalAvailable += r.AvailableQuantity
	}
	if totalAvailable < input.Quantity && !input.AllowBackorder {
		return nil, &stock.InsufficientStockError{
			Requested: input.Quantity,
			Available: totalAvailable,
		}
	}

	now := time.Now()
	remaining := input.Quantity
	result := &dto.ReservationResult{}

	var allocations []dto.ReservationAllocation
	var movements []*model.StockMovement
	var reservations []*model.StockReservation

	for i := range ranked {
		if remaining <= 0 {
			break
		}
		rec := &ranked[i]
		take := remaining
		if rec.AvailableQuantity < take {
			take = rec.AvailableQuantity
		}
		remaining -= take

		allocations = append(allocations, dto.ReservationAllocation{RecordID: rec.ID, Quantity: take})
		movements = append(movements, uc.reservedMovement(rec, -take, input, now, ""))
		reservations = append(reservations, &model.StockReservation{
			ID:             uuid.New().String(),
			TenantID:       input.TenantID,
			OrderReference: input.OrderReference,
			OrderLineID:    input.OrderLineID,
			StockRecordID:  rec.ID,
			Quantity:       take,
			Status:         model.ReservationStatusReserved,
			CreatedAt:      now,
		})
		result.Allocations = append(result.Allocations, dto.AllocationResult{Record: *rec, Quantity: take})
	}

	if remaining > 0 {
		// Backorder allowed: the uncovered remainder is carried on the last
		// record touched (or the product's first record when nothing was
		// reservable) so the deficit stays auditable.
		target := uc.backorderTarget(ranked, records, allocations)
		if target == nil {
			return nil, stock.ErrNotFound
		}
		if len(allocations) > 0 && allocations[len(allocations)-1].RecordID == target.ID {
			allocations[len(allocations)-1].Backordered = remaining
		} else {
			allocations = append(allocations, dto.ReservationAllocation{RecordID: target.ID, Backordered: remaining})
		}
		movements = append(movements, uc.reservedMovement(target, -remaining, input, now, "backorder"))
		result.BackorderedQuantity = remaining
	}

	if err := uc.repo.ReserveWithMovements(ctx, input.TenantID, allocations, movements, reservations); err != nil {
		return nil, err
	}

	uc.logger.Info("stock reserved",
		zap.String("tenant_id", input.TenantID),
		zap.String("product_id", input.ProductID),
		zap.String("order_reference", input.OrderReference),
		zap.Float64("quantity", input.Quantity),
		zap.Float64("backordered", result.BackorderedQuantity),
	)
	return result, nil
}

func (uc *stockUseCase) backorderTarget(ranked, all []model.StockRecord, allocations []dto.ReservationAllocation) *model.StockRecord {
	if len(allocations) > 0 {
		last := allocations[len(allocations)-1].RecordID
		for i := range ranked {
			if ranked[i].ID == last {
				return &ranked[i]
			}
		}
	}
	for i := range all {
		if all[i].IsActive {
			return &all[i]
		}
	}
	return nil
}

// reservedMovement writes the reservation convention: quantity_change is the
// available-capacity delta, before/after snapshot the untouched physical
// quantity. Replay of physical quantity skips these rows.
func (uc *stockUseCase) reservedMovement(rec *model.StockRecord, change float64, input *dto.ReserveStockInput, now time.Time, note string) *model.StockMovement {
	notes := "Reservation for " + input.OrderReference
	if note != "" {
		notes += " (" + note + ")"
	}
	return &model.StockMovement{
		ID:              uuid.New().String(),
		TenantID:        rec.TenantID,
		ProductID:       rec.ProductID,
		VariantID:       rec.VariantID,
		WarehouseID:     rec.WarehouseID,
		LocationID:      rec.LocationID,
		MovementType:    model.MovementReserved,
		QuantityChange:  change,
		QuantityBefore:  rec.Quantity,
		QuantityAfter:   rec.Quantity,
		ReferenceType:   optional("order"),
		ReferenceID:     optional(input.OrderLineID),
		ReferenceNumber: optional(input.OrderReference),
		Notes:           notes,
		CreatedBy:       optionalUser(input.UserID),
		CreatedAt:       now,
	}
}

func (uc *stockUseCase) PickStock(ctx context.Context, input *dto.PickStockInput) (*model.StockReservation, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("pick quantity must be positive, got %.2f", input.Quantity)
	}

	// The record is read once up front only to learn which product to lock;
	// everything the ledger row snapshots is re-read under the lock.
	rec, err := uc.repo.GetRecord(ctx, input.TenantID, input.StockRecordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, stock.ErrNotFound
	}

	release, err := uc.lockProduct(ctx, input.TenantID, rec.ProductID, rec.VariantID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := uc.repo.FindReservationByLine(ctx, input.TenantID, input.OrderLineID, input.StockRecordID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, stock.ErrNotFound
	}
	if res.Status == model.ReservationStatusPicked {
		return nil, stock.ErrAlreadyPicked
	}
	// A pick releases its whole line in one step. A smaller quantity would
	// strand the remainder in reserved_quantity with no open reservation row
	// left to release it.
	if input.Quantity != res.Quantity {
		if input.Quantity > res.Quantity {
			return nil, &stock.InsufficientStockError{
				Requested: input.Quantity,
				Available: res.Quantity,
			}
		}
		return nil, stock.ErrPartialPick
	}

	rec, err = uc.repo.GetRecord(ctx, input.TenantID, input.StockRecordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, stock.ErrNotFound
	}
	if rec.ReservedQuantity < res.Quantity {
		return nil, &stock.InsufficientStockError{
			Requested: res.Quantity,
			Available: rec.ReservedQuantity,
		}
	}

	now := time.Now()
	res.Status = model.ReservationStatusPicked
	res.PickedBy = optionalUser(input.PickedBy)
	res.PickedAt = &now

	movement := &model.StockMovement{
		ID:              uuid.New().String(),
		TenantID:        rec.TenantID,
		ProductID:       rec.ProductID,
		VariantID:       rec.VariantID,
		WarehouseID:     rec.WarehouseID,
		LocationID:      rec.LocationID,
		MovementType:    model.MovementOut,
		QuantityChange:  -res.Quantity,
		QuantityBefore:  rec.Quantity,
		QuantityAfter:   rec.Quantity - res.Quantity,
		ReferenceType:   optional("order_line"),
		ReferenceID:     optional(input.OrderLineID),
		ReferenceNumber: optional(res.OrderReference),
		Notes:           "Picked for " + res.OrderReference,
		CreatedBy:       optionalUser(input.PickedBy),
		CreatedAt:       now,
	}

	if err := uc.repo.PickWithMovement(ctx, res, movement); err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *stockUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) (*dto.TransferResult, error) {
	if input.Quantity <= 0 {
		return nil, stock.ErrInvalidTransfer
	}
	if input.FromWarehouse == input.ToWarehouse && equalOptional(input.FromLocationID, input.ToLocationID) {
		return nil, stock.ErrInvalidTransfer
	}

	release, err := uc.lockProduct(ctx, input.TenantID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer release()

	src, err := uc.repo.FindRecord(ctx, input.TenantID, input.ProductID, input.VariantID, input.FromWarehouse, input.FromLocationID)
	if err != nil {
		return nil, err
	}
	if src == nil || !src.IsActive {
		return nil, stock.ErrNotFound
	}
	if src.AvailableQuantity < input.Quantity {
		return nil, &stock.InsufficientStockError{
			Requested: input.Quantity,
			Available: src.AvailableQuantity,
		}
	}

	dst, err := uc.repo.FindRecord(ctx, input.TenantID, input.ProductID, input.VariantID, input.ToWarehouse, input.ToLocationID)
	if err != nil {
		return nil, err
	}
	if dst != nil && dst.ID == src.ID {
		return nil, stock.ErrInvalidTransfer
	}

	now := time.Now()
	destIsNew := dst == nil
	destBefore := 0.0
	if destIsNew {
		// Policy metadata travels with the stock to the new record.
		dst = &model.StockRecord{
			ID:               uuid.New().String(),
			TenantID:         input.TenantID,
			ProductID:        input.ProductID,
			VariantID:        input.VariantID,
			WarehouseID:      input.ToWarehouse,
			LocationID:       input.ToLocationID,
			LotNumber:        src.LotNumber,
			ExpiryDate:       src.ExpiryDate,
			ManufactureDate:  src.ManufactureDate,
			Quantity:         input.Quantity,
			// The database derives available_quantity; mirror it here so the
			// returned struct is coherent before any re-read.
			AvailableQuantity: input.Quantity,
			AllocationMethod:  src.AllocationMethod,
			UnitCost:          src.UnitCost,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	} else {
		destBefore = dst.Quantity
	}

	transferGroupID := uuid.New().String()
	movements := []*model.StockMovement{
		uc.transferMovement(src, -input.Quantity, src.Quantity, src.Quantity-input.Quantity, transferGroupID, input, now),
		uc.transferMovement(dst, input.Quantity, destBefore, destBefore+input.Quantity, transferGroupID, input, now),
	}

	if err := uc.repo.TransferWithMovements(ctx, input.TenantID, src.ID, input.Quantity, dst, destIsNew, movements); err != nil {
		return nil, err
	}

	src.Quantity -= input.Quantity
	src.AvailableQuantity -= input.Quantity
	if !destIsNew {
		dst.Quantity = destBefore + input.Quantity
		dst.AvailableQuantity += input.Quantity
	}

	uc.logger.Info("stock transferred",
		zap.String("tenant_id", input.TenantID),
		zap.String("product_id", input.ProductID),
		zap.String("from_warehouse", input.FromWarehouse),
		zap.String("to_warehouse", input.ToWarehouse),
		zap.Float64("quantity", input.Quantity),
		zap.String("transfer_group_id", transferGroupID),
	)

	return &dto.TransferResult{
		TransferGroupID:    transferGroupID,
		Source:             src,
		Destination:        dst,
		DestinationCreated: destIsNew,
	}, nil
}

func (uc *stockUseCase) transferMovement(rec *model.StockRecord, change, before, after float64, groupID string, input *dto.TransferStockInput, now time.Time) *model.StockMovement {
	return &model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       rec.TenantID,
		ProductID:      rec.ProductID,
		VariantID:      rec.VariantID,
		WarehouseID:    rec.WarehouseID,
		LocationID:     rec.LocationID,
		MovementType:   model.MovementTransfer,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  optional("transfer"),
		ReferenceID:    optional(groupID),
		Notes:          input.Reason,
		UnitCost:       rec.UnitCost,
		CreatedBy:      optionalUser(input.UserID),
		CreatedAt:      now,
	}
}

func (uc *stockUseCase) PickingList(ctx context.Context, input *dto.PickingListInput) ([]dto.PickingSuggestion, error) {
	suggestions := make([]dto.PickingSuggestion, 0, len(input.Lines))
	for _, line := range input.Lines {
		records, err := uc.repo.FindCandidates(ctx, input.TenantID, line.ProductID, line.VariantID)
		if err != nil {
			return nil, err
		}

		s := dto.PickingSuggestion{
			OrderLineID: line.OrderLineID,
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			Quantity:    line.Quantity,
		}
		if rec, ok := stock.SuggestPickLocation(records, line.Quantity); ok {
			s.Record = rec
		} else if len(stock.RankCandidates(records)) == 0 {
			s.Warning = "no available stock"
		} else {
			s.Warning = "no single location covers the full quantity"
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func allocationMethod(s string) (string, error) {
	switch s {
	case "":
		return model.AllocationFIFO, nil
	case model.AllocationFIFO, model.AllocationLIFO, model.AllocationFEFO:
		return s, nil
	default:
		return "", fmt.Errorf("unknown allocation method %q", s)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUser(userID string) *string {
	if userID == "" || userID == "unknown" {
		return nil
	}
	return &userID
}

func equalOptional(a, b *string) bool {
	if a == nil || *a == "" {
		return b == nil || *b == ""
	}
	if b == nil {
		return false
	}
	return *a == *b
}
