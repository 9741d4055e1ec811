package router

import (
	"database/sql"

	"sari_pos_backend/internal/handlers"
	"sari_pos_backend/internal/repositories"
	"sari_pos_backend/internal/services"
	"sari_pos_backend/internal/sessions"

	"github.com/gin-gonic/gin"
)

// Config carries the feature toggles the router wires into services.
type Config struct {
	// DiscountBeforeTax switches the checkout tax base to the discounted
	// subtotal. Off by default.
	DiscountBeforeTax bool

	// RegistrationEnabled exposes the admin-only register endpoint. Off by
	// default so a deployment seeded with accounts keeps the surface closed.
	RegistrationEnabled bool
}

// Setup wires repositories, services and handlers onto the gin engine.
func Setup(r *gin.Engine, db *sql.DB, tokens sessions.TokenStore, cfg Config) {
	txManager := repositories.NewTxManager(db)

	authRepo := repositories.NewAuthRepository(db)
	productRepo := repositories.NewProductRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	inventoryLogRepo := repositories.NewInventoryLogRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	chatRepo := repositories.NewChatRepository(db)

	authService := services.NewAuthService(authRepo, tokens, txManager)
	productService := services.NewProductService(productRepo, txManager)
	saleService := services.NewSaleService(saleRepo, productRepo, inventoryLogRepo, txManager, services.SaleServiceOptions{
		DiscountBeforeTax: cfg.DiscountBeforeTax,
	})
	inventoryService := services.NewInventoryService(productRepo, inventoryLogRepo, txManager)
	reportService := services.NewReportService(reportRepo)
	chatService := services.NewChatService(chatRepo, txManager)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	saleHandler := handlers.NewSaleHandler(saleService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	reportHandler := handlers.NewReportHandler(reportService)
	chatHandler := handlers.NewChatHandler(chatService)

	api := r.Group("/api/v1")
	registerAuthRoutes(api, authHandler, cfg.RegistrationEnabled)
	registerProductRoutes(api, productHandler)
	registerSaleRoutes(api, saleHandler)
	registerInventoryRoutes(api, inventoryHandler)
	registerReportRoutes(api, reportHandler)
	registerChatRoutes(api, chatHandler)
}
