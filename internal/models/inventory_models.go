package models

import "time"

// Inventory action types. Sale and damaged are outflows, restock is an inflow,
// return is an inflow when it reverses a sale (cancellation) and an outflow
// when recorded as a loss, adjustment sets an absolute quantity.
const (
	ActionSale       = "sale"
	ActionRestock    = "restock"
	ActionAdjustment = "adjustment"
	ActionDamaged    = "damaged"
	ActionReturn     = "return"
)

// Reference types linking ledger entries back to their cause.
const (
	ReferenceSale             = "sale"
	ReferenceSaleCancellation = "sale_cancellation"
)

// InventoryLogEntry is one row of the append-only stock audit trail.
// new_quantity = previous_quantity + quantity_change always holds.
// Entries are never mutated or deleted after creation.
type InventoryLogEntry struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id" db:"product_id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	ActionType       string    `json:"action_type" db:"action_type"`
	QuantityChange   int       `json:"quantity_change" db:"quantity_change"`
	PreviousQuantity int       `json:"previous_quantity" db:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity" db:"new_quantity"`
	ReferenceID      *int64    `json:"reference_id,omitempty" db:"reference_id"`
	ReferenceType    *string   `json:"reference_type,omitempty" db:"reference_type"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	ProductCode      *string   `json:"product_code,omitempty"` // joined from products on list queries
	ProductName      *string   `json:"product_name,omitempty"`
	ActorName        *string   `json:"actor_name,omitempty"` // joined from users
}

// InventoryLogFilters defines the available filters for the ledger listing.
type InventoryLogFilters struct {
	ProductID  *int64  `form:"product_id"`
	UserID     *int64  `form:"user_id"`
	ActionType *string `form:"action_type"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
