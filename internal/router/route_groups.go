package router

import (
	"sari_pos_backend/internal/handlers"
	"sari_pos_backend/internal/middleware"
	"sari_pos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, registrationEnabled bool) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}

	authed := api.Group("/auth", middleware.AuthMiddleware())
	{
		authed.GET("/me", h.Me)
		// Only admins can create accounts. There is no self sign-up.
		if registrationEnabled {
			authed.POST("/register", middleware.RoleAuthMiddleware(models.RoleAdmin), h.Register)
		}
	}
}

func registerProductRoutes(api *gin.RouterGroup, h *handlers.ProductHandler) {
	products := api.Group("/products", middleware.AuthMiddleware())
	{
		products.GET("", h.GetProducts)
		products.GET("/low-stock", h.GetLowStock)
		products.GET("/:id", h.GetProduct)

		admin := products.Group("", middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			admin.POST("", h.CreateProduct)
			admin.PUT("/:id", h.UpdateProduct)
			admin.DELETE("/:id", h.DeleteProduct)
		}
	}
}

func registerSaleRoutes(api *gin.RouterGroup, h *handlers.SaleHandler) {
	sales := api.Group("/sales", middleware.AuthMiddleware())
	{
		// Both roles sell; only admins cancel.
		sales.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier), h.CreateSale)
		sales.GET("", h.GetSales)
		sales.GET("/:id", h.GetSale)
		sales.POST("/:id/cancel", middleware.RoleAuthMiddleware(models.RoleAdmin), h.CancelSale)
	}
}

func registerInventoryRoutes(api *gin.RouterGroup, h *handlers.InventoryHandler) {
	inventory := api.Group("/inventory", middleware.AuthMiddleware())
	{
		inventory.POST("/adjust", middleware.RoleAuthMiddleware(models.RoleAdmin), h.AdjustStock)
		inventory.GET("/movements", h.GetMovements)
	}
}

func registerReportRoutes(api *gin.RouterGroup, h *handlers.ReportHandler) {
	reports := api.Group("/reports", middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		reports.GET("/sales-summary", h.GetSalesSummary)
		reports.GET("/payment-methods", h.GetPaymentMethodBreakdown)
		reports.GET("/top-products", h.GetTopProducts)
		reports.GET("/inventory-valuation", h.GetInventoryValuation)
	}
}

func registerChatRoutes(api *gin.RouterGroup, h *handlers.ChatHandler) {
	chat := api.Group("/chat", middleware.AuthMiddleware())
	{
		chat.POST("/messages", h.PostMessage)
		chat.GET("/messages", h.GetMessages)
	}
}
