package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetRecord(ctx context.Context, tenantID, recordID string) (*model.StockRecord, error) {
	var rec model.StockRecord
	query := `SELECT * FROM stock_records WHERE tenant_id = $1 AND id = $2`
	err := r.DB.GetContext(ctx, &rec, query, tenantID, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Caller decides whether absence is an error
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) FindRecord(ctx context.Context, tenantID, productID string, variantID *string, warehouseID string, locationID *string) (*model.StockRecord, error) {
	query := `SELECT * FROM stock_records WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3`
	args := []interface{}{tenantID, productID, warehouseID}

	if variantID != nil && *variantID != "" {
		args = append(args, *variantID)
		query += fmt.Sprintf(` AND variant_id = $%d`, len(args))
	} else {
		query += ` AND variant_id IS NULL`
	}
	if locationID != nil && *locationID != "" {
		args = append(args, *locationID)
		query += fmt.Sprintf(` AND location_id = $%d`, len(args))
	} else {
		query += ` AND location_id IS NULL`
	}

	var rec model.StockRecord
	err := r.DB.GetContext(ctx, &rec, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindCandidates returns every record of the product across all warehouses
// of the tenant; the allocation selector ranks and filters them in memory.
func (r *PGRepository) FindCandidates(ctx context.Context, tenantID, productID string, variantID *string) ([]model.StockRecord, error) {
	query := `SELECT * FROM stock_records WHERE tenant_id = $1 AND product_id = $2`
	args := []interface{}{tenantID, productID}

	if variantID != nil && *variantID != "" {
		args = append(args, *variantID)
		query += fmt.Sprintf(` AND variant_id = $%d`, len(args))
	} else {
		query += ` AND variant_id IS NULL`
	}
	query += ` ORDER BY created_at ASC`

	var records []model.StockRecord
	err := r.DB.SelectContext(ctx, &records, query, args...)
	return records, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.StockFilters) ([]model.StockRecord, int, error) {
	var records []model.StockRecord
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.TenantID != "" {
		conditions = append(conditions, "tenant_id = :tenant_id")
		args["tenant_id"] = f.TenantID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.VariantID != nil {
		if *f.VariantID == "" {
			conditions = append(conditions, "variant_id IS NULL")
		} else {
			conditions = append(conditions, "variant_id = :variant_id")
			args["variant_id"] = *f.VariantID
		}
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.LocationID != nil {
		if *f.LocationID == "" {
			conditions = append(conditions, "location_id IS NULL")
		} else {
			conditions = append(conditions, "location_id = :location_id")
			args["location_id"] = *f.LocationID
		}
	}
	if f.LowStock {
		conditions = append(conditions, "available_quantity <= min_stock_level AND min_stock_level > 0")
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_records" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_records" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &records, args)
	return records, count, err
}

func (r *PGRepository) CreateRecord(ctx context.Context, rec *model.StockRecord) error {
	_, err := r.DB.NamedExecContext(ctx, insertRecordQuery, rec)
	return err
}

func (r *PGRepository) DeactivateRecord(ctx context.Context, tenantID, recordID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE stock_records SET is_active = false, updated_at = $1 WHERE tenant_id = $2 AND id = $3`,
		time.Now(), tenantID, recordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return stock.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindReservationByLine(ctx context.Context, tenantID, orderLineID, stockRecordID string) (*model.StockReservation, error) {
	var res model.StockReservation
	query := `
        SELECT * FROM stock_reservations
        WHERE tenant_id = $1 AND order_line_id = $2 AND stock_record_id = $3
    `
	err := r.DB.GetContext(ctx, &res, query, tenantID, orderLineID, stockRecordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) FindReservationsByReference(ctx context.Context, tenantID, orderReference string) ([]model.StockReservation, error) {
	var items []model.StockReservation
	query := `
        SELECT * FROM stock_reservations
        WHERE tenant_id = $1 AND order_reference = $2
        ORDER BY created_at ASC
    `
	err := r.DB.SelectContext(ctx, &items, query, tenantID, orderReference)
	return items, err
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	_, err := r.DB.NamedExecContext(ctx, insertMovementQuery, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.TenantID != "" {
		conditions = append(conditions, "tenant_id = :tenant_id")
		args["tenant_id"] = f.TenantID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.LocationID != nil && *f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = *f.LocationID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

const insertRecordQuery = `
    INSERT INTO stock_records (
        id, tenant_id, product_id, variant_id, warehouse_id, location_id,
        lot_number, expiry_date, manufacture_date,
        quantity, reserved_quantity, backordered_quantity,
        allocation_method, min_stock_level, max_stock_level, unit_cost,
        is_active, created_at, updated_at
    )
    VALUES (
        :id, :tenant_id, :product_id, :variant_id, :warehouse_id, :location_id,
        :lot_number, :expiry_date, :manufacture_date,
        :quantity, :reserved_quantity, :backordered_quantity,
        :allocation_method, :min_stock_level, :max_stock_level, :unit_cost,
        :is_active, :created_at, :updated_at
    )
`

// Note: available_quantity is a generated column, so it is never written.

const insertMovementQuery = `
    INSERT INTO stock_movements (
        id, tenant_id, product_id, variant_id, warehouse_id, location_id,
        movement_type, quantity_change, quantity_before, quantity_after,
        reference_type, reference_id, reference_number, notes,
        unit_cost, total_cost, created_by, created_at
    )
    VALUES (
        :id, :tenant_id, :product_id, :variant_id, :warehouse_id, :location_id,
        :movement_type, :quantity_change, :quantity_before, :quantity_after,
        :reference_type, :reference_id, :reference_number, :notes,
        :unit_cost, :total_cost, :created_by, :created_at
    )
`

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, rec *model.StockRecord, isNew bool, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if isNew {
		if _, err := tx.NamedExecContext(ctx, insertRecordQuery, rec); err != nil {
			return fmt.Errorf("failed to create stock record: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
            UPDATE stock_records 
            SET quantity = $1, updated_at = $2 
            WHERE tenant_id = $3 AND id = $4 AND quantity = $5
        `, rec.Quantity, rec.UpdatedAt, rec.TenantID, rec.ID, movement.QuantityBefore)
		if err != nil {
			return fmt.Errorf("failed to update stock record: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// The guard on the pre-read quantity lost a race with a
			// concurrent writer; the caller retries the whole adjustment.
			return stock.ErrConcurrencyConflict
		}
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ReserveWithMovements(ctx context.Context, tenantID string, allocations []dto.ReservationAllocation, movements []*model.StockMovement, reservations []*model.StockReservation) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Records are updated in ascending id order so two reservations
	// contending for overlapping record sets cannot deadlock.
	sorted := make([]dto.ReservationAllocation, len(allocations))
	copy(sorted, allocations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RecordID < sorted[j].RecordID })

	now := time.Now()
	for _, a := range sorted {
		res, err := tx.ExecContext(ctx, `
            UPDATE stock_records
            SET reserved_quantity = reserved_quantity + $1,
                backordered_quantity = backordered_quantity + $2,
                updated_at = $3
            WHERE tenant_id = $4 AND id = $5 AND is_active = true
              AND quantity - reserved_quantity >= $1
        `, a.Quantity, a.Backordered, now, tenantID, a.RecordID)
		if err != nil {
			return fmt.Errorf("failed to reserve on record %s: %w", a.RecordID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Availability changed between the ranked read and this write.
			return stock.ErrConcurrencyConflict
		}
	}

	for _, m := range movements {
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
			return fmt.Errorf("failed to log movement: %w", err)
		}
	}

	insertReservationQuery := `
        INSERT INTO stock_reservations (
            id, tenant_id, order_reference, order_line_id, stock_record_id,
            quantity, status, picked_by, picked_at, created_at
        )
        VALUES (
            :id, :tenant_id, :order_reference, :order_line_id, :stock_record_id,
            :quantity, :status, :picked_by, :picked_at, :created_at
        )
    `
	for _, rv := range reservations {
		if _, err := tx.NamedExecContext(ctx, insertReservationQuery, rv); err != nil {
			return fmt.Errorf("failed to persist reservation: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) PickWithMovement(ctx context.Context, res *model.StockReservation, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Flipping the status row first is the idempotency gate: a second pick
	// of the same line finds no 'reserved' row and aborts.
	flip, err := tx.ExecContext(ctx, `
        UPDATE stock_reservations
        SET status = $1, picked_by = $2, picked_at = $3
        WHERE tenant_id = $4 AND id = $5 AND status = $6
    `, model.ReservationStatusPicked, res.PickedBy, res.PickedAt, res.TenantID, res.ID, model.ReservationStatusReserved)
	if err != nil {
		return fmt.Errorf("failed to mark reservation picked: %w", err)
	}
	if n, _ := flip.RowsAffected(); n == 0 {
		return stock.ErrAlreadyPicked
	}

	// The guard on the pre-read quantity keeps the movement's before/after
	// snapshots honest: a writer slipping in between the read and this write
	// fails the pick instead of corrupting the ledger.
	upd, err := tx.ExecContext(ctx, `
        UPDATE stock_records
        SET quantity = quantity - $1,
            reserved_quantity = reserved_quantity - $1,
            updated_at = $2
        WHERE tenant_id = $3 AND id = $4
          AND quantity = $5 AND reserved_quantity >= $1
    `, res.Quantity, time.Now(), res.TenantID, res.StockRecordID, movement.QuantityBefore)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		return stock.ErrConcurrencyConflict
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) TransferWithMovements(ctx context.Context, tenantID, sourceID string, quantity float64, dest *model.StockRecord, destIsNew bool, movements []*model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	out, err := tx.ExecContext(ctx, `
        UPDATE stock_records
        SET quantity = quantity - $1, updated_at = $2
        WHERE tenant_id = $3 AND id = $4 AND is_active = true
          AND quantity - reserved_quantity >= $1
    `, quantity, now, tenantID, sourceID)
	if err != nil {
		return fmt.Errorf("failed to decrement source: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return stock.ErrConcurrencyConflict
	}

	if destIsNew {
		if _, err := tx.NamedExecContext(ctx, insertRecordQuery, dest); err != nil {
			return fmt.Errorf("failed to create destination record: %w", err)
		}
	} else {
		in, err := tx.ExecContext(ctx, `
            UPDATE stock_records
            SET quantity = quantity + $1, updated_at = $2
            WHERE tenant_id = $3 AND id = $4
        `, quantity, now, tenantID, dest.ID)
		if err != nil {
			return fmt.Errorf("failed to increment destination: %w", err)
		}
		if n, _ := in.RowsAffected(); n == 0 {
			return stock.ErrNotFound
		}
	}

	for _, m := range movements {
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
			return fmt.Errorf("failed to log movement: %w", err)
		}
	}

	return tx.Commit()
}
