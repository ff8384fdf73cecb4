package dto

type CreateLocationInput struct {
	TenantID    string
	WarehouseID string
	Zone        string
	Aisle       string
	Rack        string
	Shelf       string
	Level       string
	Name        string
	Description string
	MaxWeight   *float64
	MaxVolume   *float64
}

type LocationFilters struct {
	TenantID    string
	WarehouseID string
	Zone        string
	ActiveOnly  bool
	Page        int
	PageSize    int
}
