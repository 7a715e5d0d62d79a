package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/application/service"
	"github.com/sangkips/receipt-viewer/internal/config"
	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/internal/infrastructure/receiptapi"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/handler"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/routes"
	"github.com/sangkips/receipt-viewer/pkg/barcode"
	"github.com/sangkips/receipt-viewer/pkg/logger"
	"github.com/sangkips/receipt-viewer/pkg/printer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logg, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logg.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
		loc = time.UTC
	}

	defaultLang := i18n.Match(language.Thai, cfg.App.Locale)

	// Receipt store client
	client, err := receiptapi.NewClient(receiptapi.Config{
		BaseURL: cfg.ReceiptAPI.BaseURL,
		Token:   cfg.ReceiptAPI.Token,
		Timeout: cfg.ReceiptAPI.Timeout,
	}, receiptapi.WithLogger(logg.Named("receiptapi")))
	if err != nil {
		logg.Fatal("failed to configure receipt store client", zap.Error(err))
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		logg.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}

	receiptService := service.NewReceiptService(client, thermalPrinter, service.ReceiptServiceConfig{
		PrinterType: cfg.Printer.Type,
		CharWidth:   cfg.Printer.CharWidth,
		CodePage:    cfg.Printer.CodePage,
		FontPath:    cfg.Document.FontPath,
		Barcode: barcode.RenderOptions{
			Scale:         cfg.Document.BarcodeScale,
			SecurityLevel: byte(cfg.Document.BarcodeSecurityLevel),
		},
		Location: loc,
	}, logg.Named("service"))

	// Initialize handlers
	handlers := &routes.Handlers{
		Receipt: handler.NewReceiptHandler(receiptService, defaultLang, loc, logg.Named("http")),
		Printer: handler.NewPrinterHandler(receiptService, defaultLang),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:    cfg,
		Logger: logg.Named("http"),
		Ctx:    ctx,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
	logg.Info("server stopped")
}
