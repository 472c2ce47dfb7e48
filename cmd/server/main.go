package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appdocument "github.com/erp/docflow/internal/application/document"
	appfinance "github.com/erp/docflow/internal/application/finance"
	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/finance"
	"github.com/erp/docflow/internal/infrastructure/cache"
	"github.com/erp/docflow/internal/infrastructure/config"
	"github.com/erp/docflow/internal/infrastructure/event"
	"github.com/erp/docflow/internal/infrastructure/logger"
	"github.com/erp/docflow/internal/infrastructure/persistence"
	"github.com/erp/docflow/internal/interfaces/http/handler"
	"github.com/erp/docflow/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting docflow",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(cfg, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	edgeRepo := persistence.NewGormEdgeRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentTermRepo := persistence.NewGormPaymentTermRepository(db.DB)
	taxRepo := persistence.NewGormTaxRepository(db.DB)
	itemPolicy := persistence.NewGormItemPolicy(db.DB)
	sequencer := persistence.NewGormSequencer(db.DB)
	periodResolver := persistence.NewGormPeriodResolver(db.DB)
	ledgerPoster := persistence.NewGormLedgerPoster(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Tax lookups go through a read-through cache; Redis when
	// configured, in-memory otherwise
	taxCache := cache.NewTaxCache(cfg.Redis, cfg.Documents.TaxCacheTTL, log)
	taxLookup := cache.NewCachedTaxLookup(taxRepo, taxCache)

	// Map document configuration onto the domain settings
	settings := document.DefaultSettings()
	settings.Decimals = int32(cfg.Documents.Decimals)
	settings.BaseCurrencyDecimals = int32(cfg.Documents.BaseCurrencyDecimals)
	settings.DefaultSeries = cfg.Documents.Series
	settings.DefaultCurrency = cfg.Documents.Currency
	settings.GenerationEnabled = cfg.Documents.GenerationEnabled
	if len(cfg.Documents.UnlockedFields) > 0 {
		unlocked := make([]document.TrackedField, 0, len(cfg.Documents.UnlockedFields))
		for _, name := range cfg.Documents.UnlockedFields {
			field, ok := document.ParseTrackedField(name)
			if !ok {
				log.Fatal("Unknown unlocked field in configuration", zap.String("field", name))
			}
			unlocked = append(unlocked, field)
		}
		settings.UnlockedFields = unlocked
	}

	statuses := document.DefaultStatusSet()

	// Initialize application services
	stockApplier := appdocument.NewStockApplier(stockRepo, itemPolicy)
	workflowService := appdocument.NewWorkflowService(
		documentRepo, edgeRepo, stockApplier, sequencer, periodResolver,
		uow, settings, statuses,
	)
	documentService := appdocument.NewDocumentService(
		documentRepo, stockApplier, sequencer, periodResolver, taxLookup,
		uow, settings, statuses, workflowService,
	)

	scheduleGenerator := finance.NewScheduleGenerator(
		paymentTermRepo, receiptRepo, settings.Decimals,
	)
	reconciliationService := appfinance.NewReconciliationService(
		documentRepo, receiptRepo, paymentRepo, scheduleGenerator,
		ledgerPoster, uow,
	)
	reconciliationService.Attach(documentService, workflowService)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	invoiceCreatedHandler := appfinance.NewInvoiceCreatedHandler(reconciliationService, log)
	eventBus.Subscribe(invoiceCreatedHandler)
	log.Info("Event handlers registered",
		zap.Strings("invoice_created_events", invoiceCreatedHandler.EventTypes()),
	)

	// Inject event bus into services that publish events
	documentService.SetEventPublisher(eventBus)
	workflowService.SetEventPublisher(eventBus)
	reconciliationService.SetEventPublisher(eventBus)

	// Audit trail goes to the structured log
	auditSink := logger.NewAuditSink(log)
	documentService.SetAuditSink(auditSink)
	workflowService.SetAuditSink(auditSink)

	// Initialize HTTP handlers
	documentHandler := handler.NewDocumentHandler(documentService, workflowService)
	receiptHandler := handler.NewReceiptHandler(reconciliationService)

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request IDs first so recovery and request logs
	// carry them
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Setup API routes
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthChecker("database", db.Ping),
	)
	r.Register(documentHandler).
		Register(receiptHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
