package models

import "time"

// Sale statuses. The only allowed transition is completed -> cancelled.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// Accepted payment methods.
const (
	PaymentCash  = "cash"
	PaymentCard  = "card"
	PaymentGcash = "gcash"
	PaymentMaya  = "maya"
)

// Sale is the header record for one checkout transaction.
type Sale struct {
	ID            int64      `json:"id"`
	SaleNumber    string     `json:"sale_number" db:"sale_number"`
	UserID        int64      `json:"user_id" db:"user_id"`
	CustomerName  *string    `json:"customer_name,omitempty" db:"customer_name"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	Discount      float64    `json:"discount" db:"discount"`
	Tax           float64    `json:"tax" db:"tax"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	CashReceived  float64    `json:"cash_received" db:"cash_received"`
	ChangeAmount  float64    `json:"change_amount" db:"change_amount"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	Status        string     `json:"status" db:"status"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	Items         []SaleItem `json:"items,omitempty"`
	CashierName   *string    `json:"cashier_name,omitempty"` // joined from users on list queries
}

// SaleItem is one line of a sale. Product code, name and unit price are
// denormalized snapshots taken at checkout time; rows are immutable once created.
type SaleItem struct {
	ID          int64     `json:"id"`
	SaleID      int64     `json:"sale_id" db:"sale_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	ProductCode string    `json:"product_code" db:"product_code"`
	ProductName string    `json:"product_name" db:"product_name"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	TotalPrice  float64   `json:"total_price" db:"total_price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SaleFilters defines the available filters for querying sales history.
type SaleFilters struct {
	UserID   *int64  `form:"user_id"`
	Status   *string `form:"status"`
	Date     *string `form:"date"` // expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
