package handlers

import (
	"errors"
	"net/http"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/services"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// CreateProduct handles POST /products. Admin only.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.CreateProduct(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductCodeExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Product code already exists", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.LogError(err, "Failed to create product")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product", ""))
		}
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts handles GET /products.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filters models.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	products, totalCount, err := h.productService.GetProducts(filters)
	if err != nil {
		utils.LogError(err, "Failed to fetch products")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch products", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        products,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// GetProduct handles GET /products/:id. A numeric ID is looked up directly;
// anything else is treated as a product code, so barcode scans resolve too.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	idStr := c.Param("id")

	var product *models.Product
	var err error
	if id, convErr := utils.StrToInt64(idStr); convErr == nil {
		product, err = h.productService.GetProductByID(id)
	} else {
		product, err = h.productService.GetProductByCode(idStr)
	}
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found", ""))
			return
		}
		utils.LogError(err, "Failed to fetch product")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch product", ""))
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id. Admin only.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID format")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(id, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found", ""))
		case errors.Is(err, services.ErrProductCodeExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Product code already exists", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.LogError(err, "Failed to update product")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update product", ""))
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id. Admin only. Soft delete.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID format")
		return
	}

	if err := h.productService.DeactivateProduct(id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found", ""))
			return
		}
		utils.LogError(err, "Failed to deactivate product")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to deactivate product", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}

// GetLowStock handles GET /products/low-stock.
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts()
	if err != nil {
		utils.LogError(err, "Failed to fetch low stock products")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch low stock products", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}
