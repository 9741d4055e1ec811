package models

import "time"

// Product represents a catalog entry. Quantity is only mutated through the
// inventory workflow (conditional updates); catalog edits touch everything else.
// Products are never hard-deleted, only deactivated.
type Product struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code" db:"code" binding:"required"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Category  string    `json:"category" db:"category"`
	Price     float64   `json:"price" db:"price" binding:"required,gt=0"`
	CostPrice float64   `json:"cost_price" db:"cost_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	MinStock  int       `json:"min_stock" db:"min_stock"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductFilters defines the available filters for querying the catalog.
type ProductFilters struct {
	Category *string `form:"category"`
	Active   *bool   `form:"active"`
	Search   *string `form:"search"` // matches code or name
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
