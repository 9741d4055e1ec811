package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"sari_pos_backend/internal/models"
)

// ReportRepository holds the read-only aggregate queries backing dashboards.
// Everything here reads from the same tables the workflows write; nothing is
// precomputed.
type ReportRepository interface {
	GetSalesSummary(start, end time.Time) (*models.SalesSummary, error)
	GetPaymentMethodBreakdown(start, end time.Time) ([]models.PaymentMethodTotal, error)
	GetTopProducts(start, end time.Time, limit int) ([]models.TopProduct, error)
	GetInventoryValuation() (*models.InventoryValuation, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetSalesSummary(start, end time.Time) (*models.SalesSummary, error) {
	summary := &models.SalesSummary{}
	// COALESCE ensures zeros instead of NULLs when no sales exist in the range.
	query := `SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(discount), 0), COUNT(*)
	          FROM sales
	          WHERE status = $1 AND created_at BETWEEN $2 AND $3`
	err := r.db.QueryRow(query, models.SaleStatusCompleted, start, end).Scan(
		&summary.TotalRevenue, &summary.TotalTax, &summary.TotalDiscount, &summary.SaleCount,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sales summary: %v", ErrDatabaseError, err)
	}
	return summary, nil
}

func (r *reportRepository) GetPaymentMethodBreakdown(start, end time.Time) ([]models.PaymentMethodTotal, error) {
	totals := []models.PaymentMethodTotal{}
	query := `SELECT payment_method, COALESCE(SUM(total_amount), 0), COUNT(*)
	          FROM sales
	          WHERE status = $1 AND created_at BETWEEN $2 AND $3
	          GROUP BY payment_method
	          ORDER BY SUM(total_amount) DESC`
	rows, err := r.db.Query(query, models.SaleStatusCompleted, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: getting payment method breakdown: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.PaymentMethodTotal
		if err := rows.Scan(&t.PaymentMethod, &t.Revenue, &t.SaleCount); err != nil {
			return nil, fmt.Errorf("%w: scanning payment method total: %v", ErrDatabaseError, err)
		}
		totals = append(totals, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment method totals: %v", ErrDatabaseError, err)
	}
	return totals, nil
}

func (r *reportRepository) GetTopProducts(start, end time.Time, limit int) ([]models.TopProduct, error) {
	products := []models.TopProduct{}
	query := `SELECT si.product_id, si.product_code, si.product_name,
	                 COALESCE(SUM(si.quantity), 0), COALESCE(SUM(si.total_price), 0)
	          FROM sale_items si
	          JOIN sales s ON si.sale_id = s.id
	          WHERE s.status = $1 AND s.created_at BETWEEN $2 AND $3
	          GROUP BY si.product_id, si.product_code, si.product_name
	          ORDER BY SUM(si.quantity) DESC
	          LIMIT $4`
	rows, err := r.db.Query(query, models.SaleStatusCompleted, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: getting top products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.TopProduct
		if err := rows.Scan(&p.ProductID, &p.ProductCode, &p.ProductName, &p.QuantitySold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning top product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating top products: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *reportRepository) GetInventoryValuation() (*models.InventoryValuation, error) {
	valuation := &models.InventoryValuation{}
	query := `SELECT COUNT(*), COALESCE(SUM(quantity), 0),
	                 COALESCE(SUM(quantity * price), 0), COALESCE(SUM(quantity * cost_price), 0),
	                 COUNT(*) FILTER (WHERE quantity <= min_stock)
	          FROM products
	          WHERE is_active = TRUE`
	err := r.db.QueryRow(query).Scan(
		&valuation.ProductCount, &valuation.TotalUnits,
		&valuation.RetailValue, &valuation.CostValue,
		&valuation.LowStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: getting inventory valuation: %v", ErrDatabaseError, err)
	}
	return valuation, nil
}
