// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/handlers"
	"github.com/ghanadude/backend/internal/middleware"
	"github.com/ghanadude/backend/internal/services"
)

// Setup wires services to handlers and lays out the versioned HTTP
// surface. Construction failures (such as a bad object store
// configuration) surface here rather than on first use.
func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	notificationService := services.NewNotificationService(db, cfg)
	catalogService := services.NewCatalogService(db, cfg, storageService)
	invoiceService := services.NewInvoiceService(cfg, storageService)
	rewardService := services.NewRewardService(db, cfg)
	authService := services.NewAuthService(db, cfg)
	checkoutService := services.NewCheckoutService(db, cfg, catalogService, invoiceService, notificationService)
	orderService := services.NewOrderService(db, cfg, rewardService, notificationService, storageService)
	paymentService := services.NewPaymentService(db, cfg, invoiceService, notificationService)
	reportService := services.NewReportService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, storageService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	reportHandler := handlers.NewReportHandler(reportService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.CreateProduct)
			products.POST("/:id/images", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.UploadProductImage)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(middleware.AuthRequired(), middleware.CheckoutRateLimit())
		{
			checkout.POST("", checkoutHandler.Checkout)
			checkout.POST("/artwork", checkoutHandler.UploadArtwork)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
			orders.PATCH("/:id/status", middleware.AdminRequired(), orderHandler.UpdateOrderStatus)
			orders.POST("/:id/dispatch", middleware.AdminRequired(), orderHandler.DispatchOrder)
		}

		bulkOrders := v1.Group("/bulk-orders")
		bulkOrders.Use(middleware.AuthRequired())
		{
			bulkOrders.GET("", orderHandler.GetMyBulkOrders)
			bulkOrders.GET("/:id", orderHandler.GetBulkOrder)
			bulkOrders.POST("/:id/cancel", orderHandler.CancelBulkOrder)
			bulkOrders.GET("/:id/invoice", orderHandler.DownloadBulkInvoice)
			bulkOrders.PATCH("/:id/status", middleware.AdminRequired(), orderHandler.UpdateBulkOrderStatus)
			bulkOrders.POST("/:id/dispatch", middleware.AdminRequired(), orderHandler.DispatchBulkOrder)
		}

		payments := v1.Group("/payments")
		{
			// The gateway posts here server-to-server; no auth.
			payments.POST("/notify", paymentHandler.Notify)
			payments.GET("/gateway", paymentHandler.GatewayConfig)
			payments.POST("/intent", middleware.AuthRequired(), paymentHandler.CreateIntent)
			payments.POST("/confirm", middleware.AuthRequired(), paymentHandler.ConfirmIntent)
			payments.POST("/refund", middleware.AuthRequired(), middleware.AdminRequired(), paymentHandler.Refund)
		}

		rewards := v1.Group("/rewards")
		rewards.Use(middleware.AuthRequired())
		{
			rewards.GET("", rewardHandler.GetEligibility)
			rewards.POST("/redeem", rewardHandler.Redeem)
			rewards.GET("/coupons", rewardHandler.ListCoupons)
		}

		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			reports.GET("/sales", reportHandler.Sales)
			reports.GET("/dev-earnings", reportHandler.DevEarnings)
		}
	}

	return r, nil
}
