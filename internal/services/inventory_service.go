package services

import (
	"errors"
	"fmt"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
)

// Custom errors for the inventory adjustment workflow.
var (
	ErrNegativeStock         = errors.New("adjustment would drive stock below zero")
	ErrInvalidAdjustmentType = errors.New("invalid adjustment type")
)

// AdjustStockRequest is the payload for a manual stock adjustment.
//
// Quantity is interpreted per adjustment type: an amount added for restock,
// an amount removed for damaged and return-as-loss, and the target absolute
// quantity for adjustment.
type AdjustStockRequest struct {
	ProductID      int64   `json:"product_id" binding:"required"`
	AdjustmentType string  `json:"adjustment_type" binding:"required"`
	Quantity       int     `json:"quantity" binding:"required,gte=0"`
	Notes          *string `json:"notes"`
}

// --- InventoryService Interface ---

type InventoryService interface {
	AdjustStock(actorID int64, req AdjustStockRequest) (*models.InventoryLogEntry, error)
	GetMovements(filters models.InventoryLogFilters) ([]models.InventoryLogEntry, int, error)
}

type inventoryService struct {
	productRepo repositories.ProductRepository
	logRepo     repositories.InventoryLogRepository
	tx          repositories.TxManager
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	pr repositories.ProductRepository,
	ilr repositories.InventoryLogRepository,
	tx repositories.TxManager,
) InventoryService {
	return &inventoryService{
		productRepo: pr,
		logRepo:     ilr,
		tx:          tx,
	}
}

// AdjustStock applies one signed quantity delta and appends the matching
// ledger entry inside a single transaction. This is the generic form of the
// commit discipline the sale workflow uses per line item; sales themselves are
// not accepted here.
func (s *inventoryService) AdjustStock(actorID int64, req AdjustStockRequest) (*models.InventoryLogEntry, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	product, repoErr := s.productRepo.GetProductForUpdate(tx, req.ProductID)
	if repoErr != nil {
		if errors.Is(repoErr, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", req.ProductID, repoErr)
	}

	var delta int
	switch req.AdjustmentType {
	case models.ActionRestock:
		delta = req.Quantity
	case models.ActionDamaged, models.ActionReturn:
		delta = -req.Quantity
	case models.ActionAdjustment:
		// Quantity is the target absolute stock level.
		delta = req.Quantity - product.Quantity
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidAdjustmentType, req.AdjustmentType)
	}

	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment changes nothing for product %s", ErrValidation, product.Code)
	}

	previous, current, repoErr := s.productRepo.AdjustQuantity(tx, req.ProductID, delta)
	if repoErr != nil {
		if errors.Is(repoErr, repositories.ErrStockConflict) {
			return nil, fmt.Errorf("%w: product %s has %d on hand, change is %d",
				ErrNegativeStock, product.Code, product.Quantity, delta)
		}
		return nil, fmt.Errorf("failed to adjust stock for product %s: %w", product.Code, repoErr)
	}

	entry := models.InventoryLogEntry{
		ProductID:        req.ProductID,
		UserID:           actorID,
		ActionType:       req.AdjustmentType,
		QuantityChange:   delta,
		PreviousQuantity: previous,
		NewQuantity:      current,
		Notes:            req.Notes,
	}
	if _, repoErr = s.logRepo.CreateEntry(tx, &entry); repoErr != nil {
		return nil, fmt.Errorf("failed to record inventory log for product %s: %w", product.Code, repoErr)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment transaction: %w", err)
	}
	return &entry, nil
}

func (s *inventoryService) GetMovements(filters models.InventoryLogFilters) ([]models.InventoryLogEntry, int, error) {
	entries, totalCount, err := s.logRepo.GetEntries(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventory movements: %w", err)
	}
	return entries, totalCount, nil
}
