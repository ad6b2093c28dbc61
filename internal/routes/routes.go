// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"veripay/internal/config"
	"veripay/internal/handlers"
	"veripay/internal/metrics"
	"veripay/internal/middleware"
	"veripay/internal/models"
	"veripay/internal/providers/husmodata"
	"veripay/internal/providers/monnify"
	"veripay/internal/providers/prembly"
	"veripay/internal/repositories"
	"veripay/internal/services/account"
	"veripay/internal/services/ledger"
	"veripay/internal/services/pricing"
	"veripay/internal/services/verification"
	"veripay/internal/services/vtu"
	"veripay/internal/services/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db)
	pricingRepo := repositories.NewPricingRepository(db)

	// Initialize provider clients
	monnifyClient := monnify.NewClient(
		config.GetEnv("MONNIFY_BASE_URL", "https://sandbox.monnify.com"),
		config.GetEnv("MONNIFY_API_KEY", ""),
		config.GetEnv("MONNIFY_SECRET_KEY", ""),
		config.GetEnv("MONNIFY_CONTRACT_CODE", ""),
	)
	husmodataClient := husmodata.NewClient(
		config.GetEnv("HUSMODATA_BASE_URL", "https://husmodata.com"),
		config.GetEnv("HUSMODATA_TOKEN", ""),
	)
	premblyClient := prembly.NewClient(
		config.GetEnv("PREMBLY_BASE_URL", "https://api.prembly.com"),
		config.GetEnv("PREMBLY_API_KEY", ""),
		config.GetEnv("PREMBLY_APP_ID", ""),
	)

	// Initialize services in correct order
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	ledgerService := ledger.NewService(ledgerRepo, repositories.CacheService, collector)
	pricingService := pricing.NewService(pricingRepo, repositories.CacheService)
	accountService := account.NewService(userRepo, ledgerRepo, monnifyClient)
	vtuService := vtu.NewService(ledgerService, pricingService, husmodataClient)
	verificationService := verification.NewService(ledgerService, pricingService, premblyClient)
	ingestor := webhook.NewIngestor(
		config.GetEnv("MONNIFY_SECRET_KEY", ""),
		ledgerRepo,
		ledgerService,
	)

	// Initialize handlers
	walletHandler := handlers.NewWalletHandler(ledgerService, accountService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	vtuHandler := handlers.NewVTUHandler(vtuService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	pricingHandler := handlers.NewPricingHandler(pricingService)
	webhookHandler := handlers.NewWebhookHandler(ingestor)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Get("/health", handlers.HealthCheck)
	api.Get("/services", pricingHandler.ListServices)
	api.Post("/webhook/monnify", webhookHandler.HandleMonnify)

	// Also add a root welcome route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to VeriPay API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Create middleware instance
	authMiddleware := middleware.NewAuthMiddleware()

	// Protected routes with auth middleware
	protected := api.Use(authMiddleware.Handler)

	setupWalletRoutes(protected, walletHandler, transactionHandler)
	setupPurchaseRoutes(protected, vtuHandler, verificationHandler)
	setupAdminRoutes(app, authMiddleware, pricingHandler)
}

func setupWalletRoutes(router fiber.Router, walletHandler *handlers.WalletHandler, transactionHandler *handlers.TransactionHandler) {
	wallet := router.Group("/wallet")
	wallet.Get("/", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetWallet)
	wallet.Post("/", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.CreateWallet)
	wallet.Post("/pin", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.SetPin)
	wallet.Put("/pin", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.ResetPin)

	router.Get("/transactions", middleware.HasPermission(models.PermissionTransactionRead), transactionHandler.GetHistory)
}

func setupPurchaseRoutes(router fiber.Router, vtuHandler *handlers.VTUHandler, verificationHandler *handlers.VerificationHandler) {
	purchase := router.Group("/purchase", middleware.HasPermission(models.PermissionPurchaseWrite))
	purchase.Post("/airtime", vtuHandler.BuyAirtime)
	purchase.Post("/data", vtuHandler.BuyData)

	verify := router.Group("/verify", middleware.HasPermission(models.PermissionPurchaseWrite))
	verify.Post("/nin", verificationHandler.VerifyNIN)
	verify.Post("/bvn", verificationHandler.VerifyBVN)
	verify.Post("/ipe", verificationHandler.CheckIPE)
	verify.Post("/personalization", verificationHandler.Personalize)
}

func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, pricingHandler *handlers.PricingHandler) {
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	admin.Put("/services/:service", middleware.HasPermission(models.PermissionPricingWrite), pricingHandler.UpdateService)
}
