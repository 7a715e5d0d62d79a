package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-viewer/internal/config"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/handler"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Receipt *handler.ReceiptHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg    *config.Config
	Logger *zap.Logger
	// Ctx bounds background work started by the router, such as the rate
	// limiter cleanup. Nil means it runs for the life of the process.
	Ctx context.Context
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := middleware.NewClientRateLimiter(rateLimiterConfig(deps.Cfg.RateLimit))
	if deps.Ctx != nil {
		context.AfterFunc(deps.Ctx, rateLimiter.Stop)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "ok",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"message":      "Receipt viewer API is running",
			"service":      deps.Cfg.App.Name,
			"rate_limiter": rateLimiter.Stats(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		v1.GET("/ping", h.Receipt.Ping)
		registerReceiptRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func rateLimiterConfig(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	return rl
}

func registerReceiptRoutes(rg *gin.RouterGroup, h *Handlers) {
	receipts := rg.Group("/receipts")
	{
		receipts.GET("/:refCode", h.Receipt.GetReceipt)
		receipts.GET("/:refCode/pdf", h.Receipt.GetReceiptPDF)
		receipts.GET("/:refCode/barcode.png", h.Receipt.GetReceiptBarcode)
		receipts.GET("/:refCode/escpos", h.Receipt.GetReceiptESCPOS)
		receipts.POST("/:refCode/print", h.Receipt.PrintReceipt)
	}
}

func registerPrinterRoutes(rg *gin.RouterGroup, h *Handlers) {
	printerGroup := rg.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
