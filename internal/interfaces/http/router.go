package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pdv-api/internal/application/auth"
	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/internal/application/receipt"
	"github.com/jhoicas/pdv-api/internal/application/usecase"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	CommitSale *checkout.CommitSaleUseCase
	SaleQuery  *checkout.SaleQueryUseCase
	Financial  *financial.LedgerUseCase
	Carts      *cart.Service
	Receipts   *receipt.Service // opcional
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleGerente, entity.RoleVendedor)
	managers := RequireRole(entity.RoleAdmin, entity.RoleGerente)

	// Products
	products := protected.Group("/products", anyRole)
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)

	// Sales
	sales := protected.Group("/sales", anyRole)
	saleHandler := NewSaleHandler(deps.CommitSale, deps.SaleQuery, deps.Receipts, log)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/receipt", saleHandler.Receipt)
	sales.Get("/:id/ledger", managers, saleHandler.Ledger)

	// Cart de sesión
	carts := protected.Group("/cart", anyRole)
	cartHandler := NewCartHandler(deps.Carts, deps.CommitSale, log)
	carts.Get("/", cartHandler.Get)
	carts.Delete("/", cartHandler.Clear)
	carts.Post("/items", cartHandler.AddItem)
	carts.Patch("/items/:lineId", cartHandler.UpdateItem)
	carts.Delete("/items/:lineId", cartHandler.RemoveItem)
	carts.Put("/discount", cartHandler.SetDiscount)
	carts.Put("/customer", cartHandler.SetCustomer)
	carts.Post("/checkout", cartHandler.Checkout)

	// Financial
	fin := protected.Group("/financial", managers)
	financialHandler := NewFinancialHandler(deps.Financial, log)
	fin.Get("/transactions", financialHandler.List)
	fin.Post("/transactions", financialHandler.Create)
}
