package handlers

import (
	"errors"
	"net/http"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/services"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// AdjustStock handles POST /inventory/adjust. Admin only.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	entry, err := h.inventoryService.AdjustStock(actorID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found", err.Error()))
		case errors.Is(err, services.ErrNegativeStock):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Adjustment would drive stock below zero", err.Error()))
		case errors.Is(err, services.ErrInvalidAdjustmentType), errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.LogError(err, "Failed to adjust stock")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to adjust stock", ""))
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetMovements handles GET /inventory/movements, the ledger listing.
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var filters models.InventoryLogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}

	entries, totalCount, err := h.inventoryService.GetMovements(filters)
	if err != nil {
		utils.LogError(err, "Failed to fetch inventory movements")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch inventory movements", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        entries,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}
