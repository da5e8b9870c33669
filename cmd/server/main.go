package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	dashboardapp "github.com/erp/backoffice/internal/application/dashboard"
	financeapp "github.com/erp/backoffice/internal/application/finance"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	salesapp "github.com/erp/backoffice/internal/application/sales"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/printing"
	"github.com/erp/backoffice/internal/infrastructure/storage"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, base *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		ExportLogs:        cfg.Telemetry.Enabled,
	}, base)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			base.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log := tp.WrapLogger(base)

	log.Info("Starting ERP backoffice",
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}

	if err := migrateSchema(db, log); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process cache and revocation list", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	var (
		revocations auth.RevocationList = auth.NewMemoryRevocationList()
		sharedStore cache.Store         = cache.NewMemoryStore()
	)
	if redisClient != nil {
		revocations = auth.NewRedisRevocationList(redisClient)
		sharedStore = cache.NewRedisStoreWithClient(redisClient, cache.WithStoreLogger(log))
	}

	bus := event.NewInMemoryEventBus(log, event.WithRegisterer(registry))

	images, err := newImageStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	// Repositories
	accounts := persistence.NewGormAccountRepository(db.DB)
	entries := persistence.NewGormJournalEntryRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	variations := persistence.NewGormVariationRepository(db.DB)
	attributes := persistence.NewGormAttributeRepository(db.DB)
	customers := persistence.NewGormCustomerRepository(db.DB)
	suppliers := persistence.NewGormSupplierRepository(db.DB)
	warehouses := persistence.NewGormWarehouseRepository(db.DB)
	stock := persistence.NewGormStockRepository(db.DB)
	movements := persistence.NewGormMovementRepository(db.DB)
	salesRepo := persistence.NewGormSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	accountService := financeapp.NewAccountService(accounts, entries)
	accountService.SetEventPublisher(bus)
	entryService := financeapp.NewJournalEntryService(entries, accounts, txScope)
	entryService.SetEventPublisher(bus)
	entryService.SetVoucherRenderer(printing.NewVoucherRenderer(printing.WithCompanyName(cfg.App.Name)))

	categoryService := catalogapp.NewCategoryService(categories, products, txScope)
	categoryService.SetEventPublisher(bus)
	productService := catalogapp.NewProductService(products, categories, variations, stock, txScope)
	productService.SetEventPublisher(bus)
	if images != nil {
		productService.SetImageStorage(images, catalogapp.ImageOptions{
			MaxSize:   cfg.Storage.MaxImageSize,
			URLExpiry: cfg.Storage.PresignExpiry,
		})
	}
	variationService := catalogapp.NewVariationService(products, variations, attributes, stock)
	variationService.SetEventPublisher(bus)
	attributeService := catalogapp.NewAttributeService(attributes)
	attributeService.SetEventPublisher(bus)

	customerService := partnerapp.NewCustomerService(customers, salesRepo)
	customerService.SetEventPublisher(bus)
	supplierService := partnerapp.NewSupplierService(suppliers)
	supplierService.SetEventPublisher(bus)
	warehouseService := partnerapp.NewWarehouseService(warehouses, stock, salesRepo, txScope)
	warehouseService.SetEventPublisher(bus)

	stockService := inventoryapp.NewStockService(products, variations, warehouses, stock, movements, txScope)
	stockService.SetEventPublisher(bus)

	saleService := salesapp.NewSaleService(salesRepo, products, variations, customers, warehouses, txScope,
		salesapp.AccountCodes{
			Cash:       cfg.Accounting.CashAccountCode,
			Receivable: cfg.Accounting.ReceivableAccountCode,
			Revenue:    cfg.Accounting.RevenueAccountCode,
		})
	saleService.SetEventPublisher(bus)

	cacheMetrics, err := cache.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register cache metrics: %w", err)
	}
	cellOpts := []cache.CellOption{
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithWaitTimeout(cfg.Cache.WaitTimeout),
		cache.WithStaleOnError(cfg.Cache.StaleOnError),
		cache.WithCellLogger(log),
		cache.WithMetrics(cacheMetrics),
	}
	if cfg.Cache.SharedStore {
		cellOpts = append(cellOpts, cache.WithSharedStore(sharedStore, "dashboard"))
	}
	dashboardService := dashboardapp.NewDashboardService(dashboardapp.Repositories{
		Accounts:   accounts,
		Entries:    entries,
		Products:   products,
		Customers:  customers,
		Suppliers:  suppliers,
		Warehouses: warehouses,
		Sales:      salesRepo,
	}, stockService, cellOpts...)

	// Event handlers
	lowStock := inventoryapp.NewLowStockAlertHandler(log, products, stock).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
	bus.Subscribe(lowStock, lowStock.EventTypes()...)
	invalidation := dashboardapp.NewInvalidationHandler(log, dashboardService)
	bus.Subscribe(invalidation, invalidation.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Warn("Event bus stop failed", zap.Error(err))
		}
	}()

	// Handlers
	system := handler.NewSystemHandler(cfg.App.Name, version)
	system.AddCheck("database", func(context.Context) error { return db.Ping() })
	if redisClient != nil {
		system.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
	}

	engine, err := router.NewEngine(router.Config{
		Logger:       log,
		HTTP:         cfg.HTTP,
		Metrics:      cfg.Metrics,
		ServiceName:  serviceName,
		Tracing:      tp.Enabled(),
		Registry:     registry,
		JWT:          auth.NewJWTService(cfg.JWT),
		Revocations:  revocations,
		RateLimiter:  limiter,
		MaxImageSize: cfg.Storage.MaxImageSize,
	}, router.Handlers{
		System:       system,
		Session:      handler.NewSessionHandler(revocations),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Account:      handler.NewAccountHandler(accountService),
		JournalEntry: handler.NewJournalEntryHandler(entryService),
		Category:     handler.NewCategoryHandler(categoryService),
		Product:      handler.NewProductHandler(productService, variationService, cfg.Storage.MaxImageSize),
		Attribute:    handler.NewAttributeHandler(attributeService),
		Customer:     handler.NewCustomerHandler(customerService),
		Supplier:     handler.NewSupplierHandler(supplierService),
		Warehouse:    handler.NewWarehouseHandler(warehouseService),
		Inventory:    handler.NewInventoryHandler(stockService),
		Sale:         handler.NewSaleHandler(saleService),
		Table:        handler.NewTableHandler(persistence.NewTableGateway(db.DB)),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// migrateSchema applies the embedded migrations
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared sql.DB.
	return m.Up()
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// newImageStore returns nil when object storage is disabled; image
// endpoints then answer ERR_NOT_CONFIGURED.
func newImageStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (catalogapp.ImageStorage, error) {
	if !cfg.Enabled {
		log.Info("Object storage disabled, product images unavailable")
		return nil, nil
	}
	store, err := storage.NewS3ImageStore(ctx, cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiry(cfg.PresignExpiry),
	)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", store.Bucket(), err)
	}
	log.Info("Object storage ready", zap.String("bucket", store.Bucket()))
	return store, nil
}
