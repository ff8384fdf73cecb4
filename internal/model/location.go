package model

import "time"

type StockLocation struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	WarehouseID  string    `db:"warehouse_id" json:"warehouse_id"`
	Zone         string    `db:"zone" json:"zone"`
	Aisle        string    `db:"aisle" json:"aisle"`
	Rack         string    `db:"rack" json:"rack"`
	Shelf        string    `db:"shelf" json:"shelf"`
	Level        string    `db:"level" json:"level"`
	LocationCode string    `db:"location_code" json:"location_code"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description"`
	MaxWeight    *float64  `db:"max_weight" json:"max_weight"`
	MaxVolume    *float64  `db:"max_volume" json:"max_volume"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
