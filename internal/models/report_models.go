package models

// SalesSummary aggregates completed sales over a date range.
type SalesSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalTax      float64 `json:"total_tax"`
	TotalDiscount float64 `json:"total_discount"`
	SaleCount     int64   `json:"sale_count"`
}

// PaymentMethodTotal is the revenue breakdown for one payment method.
type PaymentMethodTotal struct {
	PaymentMethod string  `json:"payment_method"`
	Revenue       float64 `json:"revenue"`
	SaleCount     int64   `json:"sale_count"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID    int64   `json:"product_id"`
	ProductCode  string  `json:"product_code"`
	ProductName  string  `json:"product_name"`
	QuantitySold int64   `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// InventoryValuation summarizes the current stock position.
type InventoryValuation struct {
	ProductCount  int64   `json:"product_count"`
	TotalUnits    int64   `json:"total_units"`
	RetailValue   float64 `json:"retail_value"`
	CostValue     float64 `json:"cost_value"`
	LowStockCount int64   `json:"low_stock_count"`
}
