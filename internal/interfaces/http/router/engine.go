package router

import (
	"fmt"
	"net/http"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// imageRoute is the upload route that gets the image body limit
const imageRoute = "/api/v1/catalog/products/:id/image"

// multipartOverhead leaves room for multipart boundaries and headers
const multipartOverhead = 64 << 10

// Config configures the HTTP engine
type Config struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	Metrics     config.MetricsConfig
	ServiceName string
	Tracing     bool

	// Registry serves /metrics and receives the HTTP collectors
	Registry *prometheus.Registry

	JWT         *auth.JWTService
	Revocations auth.RevocationList
	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *middleware.RateLimiter

	MaxImageSize int64
}

// Handlers bundles the endpoint handlers mounted by NewEngine
type Handlers struct {
	System       *handler.SystemHandler
	Session      *handler.SessionHandler
	Dashboard    *handler.DashboardHandler
	Account      *handler.AccountHandler
	JournalEntry *handler.JournalEntryHandler
	Category     *handler.CategoryHandler
	Product      *handler.ProductHandler
	Attribute    *handler.AttributeHandler
	Customer     *handler.CustomerHandler
	Supplier     *handler.SupplierHandler
	Warehouse    *handler.WarehouseHandler
	Inventory    *handler.InventoryHandler
	Sale         *handler.SaleHandler
	Table        *handler.TableHandler
}

// NewEngine builds the gin engine with the middleware chain, the
// operational endpoints and the authenticated /api/v1 routes
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.Tracing,
		}),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		bodyLimit(cfg),
	)

	if cfg.Metrics.Enabled && cfg.Registry != nil {
		httpMetrics, err := middleware.NewHTTPMetrics(cfg.Registry)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		engine.Use(httpMetrics.Middleware())

		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/version", h.System.GetSystemInfo)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	apiMiddleware := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:  cfg.JWT,
			Revocations: cfg.Revocations,
			Logger:      log,
		}),
		middleware.SpanEnricher(),
	}
	if cfg.RateLimiter != nil {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(cfg.RateLimiter))
	}

	NewRouter(engine, WithAPIVersion("v1"), WithMiddleware(apiMiddleware...)).
		Register(apiGroups(h)...).
		Setup()

	return engine, nil
}

func bodyLimit(cfg Config) gin.HandlerFunc {
	limit := cfg.HTTP.MaxBodySize
	if limit <= 0 {
		limit = 10 << 20
	}
	imageLimit := limit
	if cfg.MaxImageSize+multipartOverhead > imageLimit {
		imageLimit = cfg.MaxImageSize + multipartOverhead
	}
	return middleware.BodyLimitWithOverrides(limit, map[string]int64{imageRoute: imageLimit})
}

// apiGroups lays out the /api/v1 surface by domain
func apiGroups(h Handlers) []RouteRegistrar {
	session := NewDomainGroup("session", "/session").
		GET("", h.Session.Get).
		DELETE("", h.Session.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("", h.Dashboard.Get)

	finance := NewDomainGroup("finance", "/finance")
	finance.Group("accounts", "/accounts").
		GET("", h.Account.List).
		POST("", h.Account.Create).
		GET("/:id", h.Account.GetByID).
		PUT("/:id", h.Account.Update).
		DELETE("/:id", h.Account.Delete)
	finance.Group("journal-entries", "/journal-entries").
		GET("", h.JournalEntry.List).
		POST("", h.JournalEntry.Create).
		GET("/:id", h.JournalEntry.GetByID).
		PUT("/:id", h.JournalEntry.Update).
		DELETE("/:id", h.JournalEntry.Delete).
		POST("/:id/post", h.JournalEntry.Post).
		POST("/:id/void", h.JournalEntry.Void).
		GET("/:id/voucher", h.JournalEntry.Voucher)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.Group("categories", "/categories").
		GET("", h.Category.List).
		POST("", h.Category.Create).
		GET("/tree", h.Category.GetTree).
		GET("/:id", h.Category.GetByID).
		PUT("/:id", h.Category.Update).
		DELETE("/:id", h.Category.Delete)
	catalog.Group("products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/image", h.Product.UploadImage).
		GET("/:id/image", h.Product.Image).
		GET("/:id/variations", h.Product.ListVariations).
		POST("/:id/variations", h.Product.CreateVariation).
		PUT("/variations/:vid", h.Product.UpdateVariation).
		DELETE("/variations/:vid", h.Product.DeleteVariation)
	catalog.Group("attributes", "/attributes").
		GET("", h.Attribute.List).
		POST("", h.Attribute.Create).
		GET("/:id", h.Attribute.GetByID).
		PUT("/:id", h.Attribute.Update).
		DELETE("/:id", h.Attribute.Delete).
		POST("/:id/values", h.Attribute.AddValue).
		DELETE("/:id/values/:vid", h.Attribute.RemoveValue)

	partner := NewDomainGroup("partner", "/partner")
	partner.Group("customers", "/customers").
		GET("", h.Customer.List).
		POST("", h.Customer.Create).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", h.Customer.Delete)
	partner.Group("suppliers", "/suppliers").
		GET("", h.Supplier.List).
		POST("", h.Supplier.Create).
		GET("/:id", h.Supplier.GetByID).
		PUT("/:id", h.Supplier.Update).
		DELETE("/:id", h.Supplier.Delete)
	partner.Group("warehouses", "/warehouses").
		GET("", h.Warehouse.List).
		POST("", h.Warehouse.Create).
		GET("/default", h.Warehouse.GetDefault).
		GET("/:id", h.Warehouse.GetByID).
		PUT("/:id", h.Warehouse.Update).
		DELETE("/:id", h.Warehouse.Delete)

	inventory := NewDomainGroup("inventory", "/inventory").
		GET("/stock", h.Inventory.Stock).
		GET("/stock/low", h.Inventory.LowStock).
		POST("/stock/adjust", h.Inventory.Adjust).
		POST("/stock/transfer", h.Inventory.Transfer).
		GET("/stock/movements", h.Inventory.Movements)

	sales := NewDomainGroup("sales", "/sales").
		GET("", h.Sale.List).
		POST("", h.Sale.Create).
		GET("/:id", h.Sale.GetByID).
		POST("/:id/void", h.Sale.Void)

	tables := NewDomainGroup("tables", "/tables").
		GET("", h.Table.Tables).
		GET("/:table", h.Table.Select).
		POST("/:table", h.Table.Insert).
		PATCH("/:table/:id", h.Table.Update).
		DELETE("/:table/:id", h.Table.Delete)

	return []RouteRegistrar{session, dashboard, finance, catalog, partner, inventory, sales, tables}
}
