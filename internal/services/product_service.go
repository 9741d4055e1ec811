package services

import (
	"errors"
	"fmt"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
)

// Custom errors for catalog management.
var (
	ErrProductCodeExists = errors.New("product code already exists")
)

// --- DTOs ---

type CreateProductRequest struct {
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Category  string  `json:"category"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	CostPrice float64 `json:"cost_price" binding:"gte=0"`
	Quantity  int     `json:"quantity" binding:"gte=0"`
	MinStock  int     `json:"min_stock" binding:"gte=0"`
}

type UpdateProductRequest struct {
	Code      *string  `json:"code"`
	Name      *string  `json:"name"`
	Category  *string  `json:"category"`
	Price     *float64 `json:"price"`
	CostPrice *float64 `json:"cost_price"`
	MinStock  *int     `json:"min_stock"`
	IsActive  *bool    `json:"is_active"`
}

// --- ProductService Interface ---

type ProductService interface {
	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProductByCode(code string) (*models.Product, error)
	GetProducts(filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error)
	DeactivateProduct(id int64) error
	GetLowStockProducts() ([]models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	tx          repositories.TxManager
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, tx repositories.TxManager) ProductService {
	return &productService{productRepo: pr, tx: tx}
}

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	product := models.Product{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		CostPrice: req.CostPrice,
		Quantity:  req.Quantity,
		MinStock:  req.MinStock,
		IsActive:  true,
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.productRepo.CreateProduct(tx, &product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductCodeExists, req.Code)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}
	return s.productRepo.GetProductByID(product.ID)
}

func (s *productService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) GetProductByCode(code string) (*models.Product, error) {
	product, err := s.productRepo.GetProductByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: code %s", ErrProductNotFound, code)
		}
		return nil, fmt.Errorf("failed to get product by code: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	products, totalCount, err := s.productRepo.GetProducts(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

func (s *productService) UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch product for update: %w", err)
	}

	if req.Code != nil {
		product.Code = *req.Code
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.CostPrice != nil {
		if *req.CostPrice < 0 {
			return nil, fmt.Errorf("%w: cost price must not be negative", ErrValidation)
		}
		product.CostPrice = *req.CostPrice
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, fmt.Errorf("%w: min stock must not be negative", ErrValidation)
		}
		product.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.productRepo.UpdateProduct(tx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductCodeExists, product.Code)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}
	return s.productRepo.GetProductByID(id)
}

// DeactivateProduct soft-deletes: the product stays for sale history and the
// ledger but disappears from checkout and active listings.
func (s *productService) DeactivateProduct(id int64) error {
	tx, err := s.tx.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.productRepo.DeactivateProduct(tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: product ID %d", ErrProductNotFound, id)
		}
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	return tx.Commit()
}

func (s *productService) GetLowStockProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetLowStockProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}
