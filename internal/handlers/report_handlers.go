package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sari_pos_backend/internal/services"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func (h *ReportHandler) parseRange(c *gin.Context) (services.ReportRange, bool) {
	r, err := services.ParseReportRange(c.Query("start"), c.Query("end"), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			utils.RespondValidationFailed(c, err.Error())
			return services.ReportRange{}, false
		}
		utils.LogError(err, "Failed to parse report range")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to parse report range", ""))
		return services.ReportRange{}, false
	}
	return r, true
}

// GetSalesSummary handles GET /reports/sales-summary.
func (h *ReportHandler) GetSalesSummary(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	summary, err := h.reportService.GetSalesSummary(r)
	if err != nil {
		utils.LogError(err, "Failed to build sales summary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build sales summary", ""))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetPaymentMethodBreakdown handles GET /reports/payment-methods.
func (h *ReportHandler) GetPaymentMethodBreakdown(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	totals, err := h.reportService.GetPaymentMethodBreakdown(r)
	if err != nil {
		utils.LogError(err, "Failed to build payment method breakdown")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build payment method breakdown", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// GetTopProducts handles GET /reports/top-products.
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	r, ok := h.parseRange(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := h.reportService.GetTopProducts(r, limit)
	if err != nil {
		utils.LogError(err, "Failed to build top products report")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build top products report", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// GetInventoryValuation handles GET /reports/inventory-valuation.
func (h *ReportHandler) GetInventoryValuation(c *gin.Context) {
	valuation, err := h.reportService.GetInventoryValuation()
	if err != nil {
		utils.LogError(err, "Failed to build inventory valuation")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build inventory valuation", ""))
		return
	}
	c.JSON(http.StatusOK, valuation)
}
