package handlers

import (
	"errors"
	"net/http"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/services"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// CreateSale handles POST /sales, the checkout endpoint.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	sale, err := h.saleService.CreateSale(actorID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientStock):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Insufficient stock", err.Error()))
		case errors.Is(err, services.ErrProductNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found", err.Error()))
		case errors.Is(err, services.ErrInvalidPaymentMethod), errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		case errors.Is(err, services.ErrSaleNumberExhausted):
			utils.LogError(err, "Sale number allocation exhausted")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Could not allocate a sale number, please retry", ""))
		default:
			utils.LogError(err, "Failed to create sale")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create sale", ""))
		}
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales handles GET /sales, the sales history listing.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filters models.SaleFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	sales, totalCount, err := h.saleService.GetSales(filters)
	if err != nil {
		utils.LogError(err, "Failed to fetch sales")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        sales,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// GetSale handles GET /sales/:id.
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetSaleByID(id)
	if err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found", ""))
			return
		}
		utils.LogError(err, "Failed to fetch sale")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sale", ""))
		return
	}
	c.JSON(http.StatusOK, sale)
}

// CancelSale handles POST /sales/:id/cancel. Admin only.
func (h *SaleHandler) CancelSale(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.CancelSale(actorID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSaleNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found", ""))
		case errors.Is(err, services.ErrInvalidSaleState):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Only completed sales can be cancelled", err.Error()))
		default:
			utils.LogError(err, "Failed to cancel sale")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel sale", ""))
		}
		return
	}
	c.JSON(http.StatusOK, sale)
}
