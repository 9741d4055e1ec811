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

// ProductRepository defines the interface for catalog database operations.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProductByCode(code string) (*models.Product, error)
	GetProducts(filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeactivateProduct(executor SQLExecutor, id int64) error
	GetLowStockProducts() ([]models.Product, error)

	// GetProductForUpdate fetches an active product inside a workflow transaction.
	GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error)

	// AdjustQuantity applies a signed delta with the negativity guard pushed
	// into the UPDATE itself, so concurrent sales serialize on the row instead
	// of racing an application-side read-then-write. Returns the previous and
	// new quantity, or ErrStockConflict when the delta would go negative.
	AdjustQuantity(executor SQLExecutor, productID int64, delta int) (previous int, current int, err error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, code, name, category, price, cost_price, quantity, min_stock, is_active, created_at, updated_at`

func scanProduct(row scanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Price, &p.CostPrice,
		&p.Quantity, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (code, name, category, price, cost_price, quantity, min_stock, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		product.Code, product.Name, product.Category, product.Price, product.CostPrice,
		product.Quantity, product.MinStock, product.IsActive, currentTime, currentTime,
	).Scan(&product.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: product code '%s' already exists (constraint: %s)", ErrDuplicateKey, product.Code, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	err := scanProduct(r.db.QueryRow(query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *productRepository) GetProductByCode(code string) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`
	err := scanProduct(r.db.QueryRow(query, code), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by code %s: %v", ErrDatabaseError, code, err)
	}
	return product, nil
}

func (r *productRepository) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count FROM products`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filters.Active)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY name")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Price, &p.CostPrice,
			&p.Quantity, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating products: %v", ErrDatabaseError, err)
	}
	return products, totalCount, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	// Quantity is deliberately excluded: stock only moves through AdjustQuantity.
	query := `UPDATE products SET code = $1, name = $2, category = $3, price = $4,
	            cost_price = $5, min_stock = $6, is_active = $7, updated_at = $8
	          WHERE id = $9`
	result, err := executor.Exec(query,
		product.Code, product.Name, product.Category, product.Price,
		product.CostPrice, product.MinStock, product.IsActive, time.Now(), product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: product code '%s' already exists (constraint: %s)", ErrDuplicateKey, product.Code, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeactivateProduct(executor SQLExecutor, id int64) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) GetLowStockProducts() ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE is_active = TRUE AND quantity <= min_stock
	          ORDER BY quantity ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting low stock products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("%w: scanning low stock product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock products: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = TRUE`
	err := scanProduct(executor.QueryRow(query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product %d for update: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *productRepository) AdjustQuantity(executor SQLExecutor, productID int64, delta int) (int, int, error) {
	var newQuantity int
	query := `UPDATE products
	          SET quantity = quantity + $1, updated_at = $2
	          WHERE id = $3 AND quantity + $1 >= 0
	          RETURNING quantity`
	err := executor.QueryRow(query, delta, time.Now(), productID).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing product from a would-go-negative update.
			var exists bool
			checkErr := executor.QueryRow("SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID).Scan(&exists)
			if checkErr != nil {
				return 0, 0, fmt.Errorf("%w: checking product %d existence: %v", ErrDatabaseError, productID, checkErr)
			}
			if !exists {
				return 0, 0, ErrNotFound
			}
			return 0, 0, fmt.Errorf("%w: product ID %d, delta %d", ErrStockConflict, productID, delta)
		}
		return 0, 0, fmt.Errorf("%w: adjusting quantity for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newQuantity - delta, newQuantity, nil
}
