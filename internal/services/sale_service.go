package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
)

// Custom errors surfaced by the sale workflow.
var (
	ErrProductNotFound      = errors.New("product not found or inactive")
	ErrInsufficientStock    = errors.New("insufficient stock for product")
	ErrSaleNotFound         = errors.New("sale not found")
	ErrInvalidSaleState     = errors.New("sale cannot be cancelled")
	ErrSaleNumberExhausted  = errors.New("failed to create unique sale number")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrValidation           = errors.New("validation error")
)

// TaxRate is the VAT applied to every sale. Fixed, not configurable.
const TaxRate = 0.12

// saleNumberMaxAttempts bounds the retry loop around sale-number collisions.
const saleNumberMaxAttempts = 10

// --- DTOs ---

// CreateSaleItemRequest is one cart line. The cart's price wins when set so a
// receipt matches what the operator saw on screen; otherwise the current
// catalog price is used.
type CreateSaleItemRequest struct {
	ProductID int64   `json:"id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price"`
}

// CreateSaleRequest is the checkout payload.
type CreateSaleRequest struct {
	CustomerName  *string                 `json:"customer_name"`
	PaymentMethod string                  `json:"payment_method" binding:"required"`
	CashReceived  float64                 `json:"cash_received"`
	Discount      float64                 `json:"discount"`
	Notes         *string                 `json:"notes"`
	SaleNumber    *string                 `json:"sale_number"`
	Items         []CreateSaleItemRequest `json:"items" binding:"required,dive"`
}

// --- SaleService Interface ---

type SaleService interface {
	CreateSale(actorID int64, req CreateSaleRequest) (*models.Sale, error)
	CancelSale(actorID int64, saleID int64) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetSaleByID(saleID int64) (*models.Sale, error)
}

// SaleServiceOptions tunes workflow behavior.
//
// DiscountBeforeTax selects the discount/tax ordering. The default (false)
// matches the historical behavior: tax is computed on the full subtotal and
// the discount only reduces the final total. Setting it to true computes tax
// on the discounted subtotal instead.
type SaleServiceOptions struct {
	DiscountBeforeTax bool
	Now               func() time.Time
}

type saleService struct {
	saleRepo    repositories.SaleRepository
	productRepo repositories.ProductRepository
	logRepo     repositories.InventoryLogRepository
	tx          repositories.TxManager
	opts        SaleServiceOptions
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	sr repositories.SaleRepository,
	pr repositories.ProductRepository,
	ilr repositories.InventoryLogRepository,
	tx repositories.TxManager,
	opts SaleServiceOptions,
) SaleService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &saleService{
		saleRepo:    sr,
		productRepo: pr,
		logRepo:     ilr,
		tx:          tx,
		opts:        opts,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isValidPaymentMethod(method string) bool {
	switch method {
	case models.PaymentCash, models.PaymentCard, models.PaymentGcash, models.PaymentMaya:
		return true
	default:
		return false
	}
}

// CreateSale runs the checkout workflow: validate every cart line, compute
// totals, allocate a sale number, persist the header plus line items, decrement
// stock and append one ledger entry per line — all inside one transaction, so
// any failure applies nothing. A unique-constraint collision on the sale number
// aborts the transaction and the whole attempt is retried with a fresh number.
func (s *saleService) CreateSale(actorID int64, req CreateSaleRequest) (*models.Sale, error) {
	if !isValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: sale must contain at least one item", ErrValidation)
	}
	if req.Discount < 0 || req.CashReceived < 0 {
		return nil, fmt.Errorf("%w: discount and cash received must not be negative", ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product ID %d must be positive", ErrValidation, item.ProductID)
		}
	}

	for attempt := 0; attempt < saleNumberMaxAttempts; attempt++ {
		sale, err := s.createSaleOnce(actorID, req, attempt)
		if err == nil {
			return sale, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, err
		}
	}
	return nil, ErrSaleNumberExhausted
}

func (s *saleService) createSaleOnce(actorID int64, req CreateSaleRequest, attempt int) (*models.Sale, error) {
	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.opts.Now()

	// Pass 1: validate every line and snapshot prices before touching anything.
	var subtotal float64
	itemsToCreate := make([]models.SaleItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		product, repoErr := s.productRepo.GetProductForUpdate(tx, itemReq.ProductID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", itemReq.ProductID, repoErr)
		}
		if product.Quantity < itemReq.Quantity {
			return nil, fmt.Errorf("%w %s. Requested: %d, Available: %d",
				ErrInsufficientStock, product.Code, itemReq.Quantity, product.Quantity)
		}

		unitPrice := itemReq.Price
		if unitPrice <= 0 {
			unitPrice = product.Price
		}
		lineTotal := round2(unitPrice * float64(itemReq.Quantity))
		subtotal += lineTotal

		itemsToCreate = append(itemsToCreate, models.SaleItem{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			UnitPrice:   unitPrice,
			Quantity:    itemReq.Quantity,
			TotalPrice:  lineTotal,
		})
	}

	subtotal = round2(subtotal)
	taxBase := subtotal
	if s.opts.DiscountBeforeTax {
		taxBase = subtotal - req.Discount
		if taxBase < 0 {
			taxBase = 0
		}
	}
	tax := round2(taxBase * TaxRate)
	totalAmount := round2(subtotal - req.Discount + tax)
	if totalAmount < 0 {
		totalAmount = 0
	}
	changeAmount := round2(req.CashReceived - totalAmount)

	saleNumber, err := s.allocateSaleNumber(tx, req.SaleNumber, attempt, now)
	if err != nil {
		return nil, err
	}

	sale := models.Sale{
		SaleNumber:    saleNumber,
		UserID:        actorID,
		CustomerName:  req.CustomerName,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Tax:           tax,
		TotalAmount:   totalAmount,
		CashReceived:  req.CashReceived,
		ChangeAmount:  changeAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.SaleStatusCompleted,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saleID, repoErr := s.saleRepo.CreateSale(tx, &sale)
	if repoErr != nil {
		// ErrDuplicateKey propagates so the caller can retry with a new number.
		return nil, fmt.Errorf("failed to create sale record: %w", repoErr)
	}

	// Pass 2: line items, stock decrement, ledger entry per line.
	for i := range itemsToCreate {
		item := &itemsToCreate[i]
		item.SaleID = saleID
		if _, repoErr = s.saleRepo.CreateSaleItem(tx, item); repoErr != nil {
			return nil, fmt.Errorf("failed to create sale item (product_id: %d): %w", item.ProductID, repoErr)
		}

		previous, current, repoErr := s.productRepo.AdjustQuantity(tx, item.ProductID, -item.Quantity)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrStockConflict) {
				// A concurrent sale won the race between validation and decrement.
				return nil, fmt.Errorf("%w %s. Requested: %d", ErrInsufficientStock, item.ProductCode, item.Quantity)
			}
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductCode, repoErr)
		}

		refID := saleID
		refType := models.ReferenceSale
		entry := models.InventoryLogEntry{
			ProductID:        item.ProductID,
			UserID:           actorID,
			ActionType:       models.ActionSale,
			QuantityChange:   -item.Quantity,
			PreviousQuantity: previous,
			NewQuantity:      current,
			ReferenceID:      &refID,
			ReferenceType:    &refType,
		}
		if _, repoErr = s.logRepo.CreateEntry(tx, &entry); repoErr != nil {
			return nil, fmt.Errorf("failed to record inventory log for product %s: %w", item.ProductCode, repoErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	sale.Items = itemsToCreate
	return &sale, nil
}

// allocateSaleNumber honors a caller-supplied number on the first attempt and
// derives the next date-scoped sequential number otherwise.
func (s *saleService) allocateSaleNumber(tx repositories.Tx, supplied *string, attempt int, now time.Time) (string, error) {
	if supplied != nil && *supplied != "" && attempt == 0 {
		return *supplied, nil
	}
	last, err := s.saleRepo.LastSaleNumberForDate(tx, saleNumberDatePrefix(now))
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return "", fmt.Errorf("failed to read last sale number: %w", err)
	}
	return nextSaleNumber(last, now), nil
}

// CancelSale reverses a completed sale: the status flip and every per-item
// stock restore happen in one transaction, so either the whole sale is
// cancelled and all stock returns, or nothing changes.
func (s *saleService) CancelSale(actorID int64, saleID int64) (*models.Sale, error) {
	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// Conditional transition: only a completed sale can be cancelled.
	rows, repoErr := s.saleRepo.UpdateSaleStatus(tx, saleID, models.SaleStatusCompleted, models.SaleStatusCancelled)
	if repoErr != nil {
		return nil, fmt.Errorf("failed to update sale status: %w", repoErr)
	}
	if rows == 0 {
		if _, getErr := s.saleRepo.GetSaleByID(tx, saleID); getErr != nil {
			if errors.Is(getErr, repositories.ErrNotFound) {
				return nil, ErrSaleNotFound
			}
			return nil, fmt.Errorf("failed to fetch sale %d: %w", saleID, getErr)
		}
		return nil, fmt.Errorf("%w: sale ID %d is not in completed status", ErrInvalidSaleState, saleID)
	}

	items, repoErr := s.saleRepo.GetSaleItemsBySaleID(tx, saleID)
	if repoErr != nil {
		return nil, fmt.Errorf("failed to fetch sale items for stock return: %w", repoErr)
	}

	for _, item := range items {
		previous, current, repoErr := s.productRepo.AdjustQuantity(tx, item.ProductID, item.Quantity)
		if repoErr != nil {
			return nil, fmt.Errorf("failed to return stock for product %s: %w", item.ProductCode, repoErr)
		}

		refID := saleID
		refType := models.ReferenceSaleCancellation
		notes := fmt.Sprintf("Sale %d cancelled", saleID)
		entry := models.InventoryLogEntry{
			ProductID:        item.ProductID,
			UserID:           actorID,
			ActionType:       models.ActionReturn,
			QuantityChange:   item.Quantity,
			PreviousQuantity: previous,
			NewQuantity:      current,
			ReferenceID:      &refID,
			ReferenceType:    &refType,
			Notes:            &notes,
		}
		if _, repoErr = s.logRepo.CreateEntry(tx, &entry); repoErr != nil {
			return nil, fmt.Errorf("failed to record inventory log for stock return (product %s): %w", item.ProductCode, repoErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}
	return s.GetSaleByID(saleID)
}

func (s *saleService) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales, totalCount, err := s.saleRepo.GetSales(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, totalCount, nil
}

func (s *saleService) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(nil, saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale by ID: %w", err)
	}
	items, err := s.saleRepo.GetSaleItemsBySaleID(nil, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale items: %w", err)
	}
	sale.Items = items
	return sale, nil
}
