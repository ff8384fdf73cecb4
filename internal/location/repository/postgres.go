package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/location/dto"
	"github.com/fekuna/omnipos-warehouse-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, loc *model.StockLocation) error {
	query := `
        INSERT INTO stock_locations (
            id, tenant_id, warehouse_id, zone, aisle, rack, shelf, level,
            location_code, name, description, max_weight, max_volume,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :warehouse_id, :zone, :aisle, :rack, :shelf, :level,
            :location_code, :name, :description, :max_weight, :max_volume,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, loc)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.StockLocation, error) {
	var loc model.StockLocation
	query := `SELECT * FROM stock_locations WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &loc, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindByCode(ctx context.Context, tenantID, warehouseID, code string) (*model.StockLocation, error) {
	var loc model.StockLocation
	query := `
        SELECT * FROM stock_locations
        WHERE tenant_id = $1 AND warehouse_id = $2 AND location_code = $3
        LIMIT 1
    `
	err := r.DB.GetContext(ctx, &loc, query, tenantID, warehouseID, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.LocationFilters) ([]model.StockLocation, int, error) {
	var items []model.StockLocation
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.TenantID != "" {
		conditions = append(conditions, "tenant_id = :tenant_id")
		args["tenant_id"] = f.TenantID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.Zone != "" {
		conditions = append(conditions, "zone = :zone")
		args["zone"] = f.Zone
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_locations" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_locations" + whereClause + " ORDER BY location_code ASC"
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

func (r *PGRepository) Deactivate(ctx context.Context, tenantID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE stock_locations SET is_active = false, updated_at = $1 WHERE tenant_id = $2 AND id = $3`,
		time.Now(), tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
