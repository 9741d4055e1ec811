package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sari_pos_backend/internal/models"

	"github.com/lib/pq"
)

// SaleRepository defines the interface for sale-related database operations.
type SaleRepository interface {
	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItem(executor SQLExecutor, item *models.SaleItem) (int64, error)
	GetSaleByID(executor SQLExecutor, saleID int64) (*models.Sale, error)
	GetSaleItemsBySaleID(executor SQLExecutor, saleID int64) ([]models.SaleItem, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)

	// UpdateSaleStatus transitions a sale from one status to another and
	// reports how many rows matched, so callers can tell "not found" apart
	// from "wrong current status" without a prior read.
	UpdateSaleStatus(executor SQLExecutor, saleID int64, fromStatus, toStatus string) (int64, error)

	// LastSaleNumberForDate returns the highest sale_number with the given
	// date prefix, or ErrNotFound when no sale exists for that date yet.
	LastSaleNumberForDate(executor SQLExecutor, datePrefix string) (string, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales
	            (sale_number, user_id, customer_name, subtotal, discount, tax,
	             total_amount, cash_received, change_amount, payment_method, status, notes,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`

	currentTime := time.Now()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = currentTime
	}
	if sale.UpdatedAt.IsZero() {
		sale.UpdatedAt = currentTime
	}

	err := executor.QueryRow(query,
		sale.SaleNumber, sale.UserID, sale.CustomerName, sale.Subtotal, sale.Discount, sale.Tax,
		sale.TotalAmount, sale.CashReceived, sale.ChangeAmount, sale.PaymentMethod, sale.Status, sale.Notes,
		sale.CreatedAt, sale.UpdatedAt,
	).Scan(&sale.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: sale number '%s' already exists (constraint: %s)", ErrDuplicateKey, sale.SaleNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *saleRepository) CreateSaleItem(executor SQLExecutor, item *models.SaleItem) (int64, error) {
	query := `INSERT INTO sale_items
	            (sale_id, product_id, product_code, product_name, unit_price, quantity, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		item.SaleID, item.ProductID, item.ProductCode, item.ProductName,
		item.UnitPrice, item.Quantity, item.TotalPrice, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale item (product_id: %d): %v", ErrDatabaseError, item.ProductID, err)
	}
	return item.ID, nil
}

func (r *saleRepository) GetSaleByID(executor SQLExecutor, saleID int64) (*models.Sale, error) {
	if executor == nil {
		executor = r.db
	}
	sale := &models.Sale{}
	query := `SELECT id, sale_number, user_id, customer_name, subtotal, discount, tax,
	                 total_amount, cash_received, change_amount, payment_method, status, notes,
	                 created_at, updated_at
	          FROM sales
	          WHERE id = $1`
	err := executor.QueryRow(query, saleID).Scan(
		&sale.ID, &sale.SaleNumber, &sale.UserID, &sale.CustomerName, &sale.Subtotal, &sale.Discount, &sale.Tax,
		&sale.TotalAmount, &sale.CashReceived, &sale.ChangeAmount, &sale.PaymentMethod, &sale.Status, &sale.Notes,
		&sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale by ID %d: %v", ErrDatabaseError, saleID, err)
	}
	return sale, nil
}

func (r *saleRepository) GetSaleItemsBySaleID(executor SQLExecutor, saleID int64) ([]models.SaleItem, error) {
	if executor == nil {
		executor = r.db
	}
	items := []models.SaleItem{}
	query := `SELECT id, sale_id, product_id, product_code, product_name, unit_price, quantity, total_price, created_at
	          FROM sale_items
	          WHERE sale_id = $1
	          ORDER BY id`
	rows, err := executor.Query(query, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sale items for sale %d: %v", ErrDatabaseError, saleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductCode, &item.ProductName,
			&item.UnitPrice, &item.Quantity, &item.TotalPrice, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning sale item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *saleRepository) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            s.id, s.sale_number, s.user_id, s.customer_name, s.subtotal, s.discount, s.tax,
            s.total_amount, s.cash_received, s.change_amount, s.payment_method, s.status, s.notes,
            s.created_at, s.updated_at,
            u.username as cashier_name,
            COUNT(*) OVER() as total_count
        FROM sales s
        LEFT JOIN users u ON s.user_id = u.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", argCounter))
		args = append(args, *filters.UserID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("s.created_at BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY s.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Sale
		var cashierName sql.NullString
		if err := rows.Scan(
			&s.ID, &s.SaleNumber, &s.UserID, &s.CustomerName, &s.Subtotal, &s.Discount, &s.Tax,
			&s.TotalAmount, &s.CashReceived, &s.ChangeAmount, &s.PaymentMethod, &s.Status, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt,
			&cashierName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		if cashierName.Valid {
			name := cashierName.String
			s.CashierName = &name
		}
		sales = append(sales, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}
	return sales, totalCount, nil
}

func (r *saleRepository) UpdateSaleStatus(executor SQLExecutor, saleID int64, fromStatus, toStatus string) (int64, error) {
	query := `UPDATE sales SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := executor.Exec(query, toStatus, time.Now(), saleID, fromStatus)
	if err != nil {
		return 0, fmt.Errorf("%w: updating status for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading rows affected for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	return rowsAffected, nil
}

func (r *saleRepository) LastSaleNumberForDate(executor SQLExecutor, datePrefix string) (string, error) {
	if executor == nil {
		executor = r.db
	}
	var saleNumber string
	query := `SELECT sale_number FROM sales WHERE sale_number LIKE $1 ORDER BY sale_number DESC LIMIT 1`
	err := executor.QueryRow(query, datePrefix+"%").Scan(&saleNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting last sale number for prefix %s: %v", ErrDatabaseError, datePrefix, err)
	}
	return saleNumber, nil
}
