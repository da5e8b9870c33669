package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	dashboardapp "github.com/erp/backoffice/internal/application/dashboard"
	financeapp "github.com/erp/backoffice/internal/application/finance"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	salesapp "github.com/erp/backoffice/internal/application/sales"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/printing"
	"github.com/erp/backoffice/internal/infrastructure/storage"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testMaxImageSize = 1 << 20

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors dto.Response with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// apiFixture is a tenant session served by real services over an
// in-memory database
type apiFixture struct {
	t           *testing.T
	db          *gorm.DB
	engine      *gin.Engine
	session     *auth.Session
	images      *storage.MemoryImageStore
	revocations *auth.MemoryRevocationList
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db := newTestDB(t)

	f := &apiFixture{
		t:  t,
		db: db,
		session: &auth.Session{
			TokenID:   uuid.NewString(),
			TenantID:  uuid.New(),
			UserID:    uuid.New(),
			Username:  "clerk",
			ExpiresAt: time.Now().Add(time.Hour),
		},
		images:      storage.NewMemoryImageStore("https://images.test"),
		revocations: auth.NewMemoryRevocationList(),
	}

	accounts := persistence.NewGormAccountRepository(db)
	entries := persistence.NewGormJournalEntryRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	variations := persistence.NewGormVariationRepository(db)
	attributes := persistence.NewGormAttributeRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	suppliers := persistence.NewGormSupplierRepository(db)
	warehouses := persistence.NewGormWarehouseRepository(db)
	stock := persistence.NewGormStockRepository(db)
	movements := persistence.NewGormMovementRepository(db)
	salesRepo := persistence.NewGormSaleRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	entryService := financeapp.NewJournalEntryService(entries, accounts, txScope)
	entryService.SetVoucherRenderer(printing.NewVoucherRenderer(printing.WithCompanyName("Test Co")))
	productService := catalogapp.NewProductService(products, categories, variations, stock, txScope)
	productService.SetImageStorage(f.images, catalogapp.ImageOptions{MaxSize: testMaxImageSize, URLExpiry: time.Minute})
	stockService := inventoryapp.NewStockService(products, variations, warehouses, stock, movements, txScope)

	account := NewAccountHandler(financeapp.NewAccountService(accounts, entries))
	entry := NewJournalEntryHandler(entryService)
	category := NewCategoryHandler(catalogapp.NewCategoryService(categories, products, txScope))
	product := NewProductHandler(productService,
		catalogapp.NewVariationService(products, variations, attributes, stock), testMaxImageSize)
	attribute := NewAttributeHandler(catalogapp.NewAttributeService(attributes))
	customer := NewCustomerHandler(partnerapp.NewCustomerService(customers, salesRepo))
	supplier := NewSupplierHandler(partnerapp.NewSupplierService(suppliers))
	warehouse := NewWarehouseHandler(partnerapp.NewWarehouseService(warehouses, stock, salesRepo, txScope))
	inventory := NewInventoryHandler(stockService)
	sale := NewSaleHandler(salesapp.NewSaleService(salesRepo, products, variations, customers, warehouses,
		txScope, salesapp.AccountCodes{}))
	dashboard := NewDashboardHandler(dashboardapp.NewDashboardService(dashboardapp.Repositories{
		Accounts:   accounts,
		Entries:    entries,
		Products:   products,
		Customers:  customers,
		Suppliers:  suppliers,
		Warehouses: warehouses,
		Sales:      salesRepo,
	}, stockService))
	table := NewTableHandler(persistence.NewTableGateway(db))
	session := NewSessionHandler(f.revocations)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(middleware.SessionKey, f.session)
		}
		c.Next()
	})

	api.GET("/session", session.Get)
	api.DELETE("/session", session.Delete)
	api.GET("/dashboard", dashboard.Get)

	api.GET("/finance/accounts", account.List)
	api.POST("/finance/accounts", account.Create)
	api.GET("/finance/accounts/:id", account.GetByID)
	api.PUT("/finance/accounts/:id", account.Update)
	api.DELETE("/finance/accounts/:id", account.Delete)
	api.GET("/finance/journal-entries", entry.List)
	api.POST("/finance/journal-entries", entry.Create)
	api.GET("/finance/journal-entries/:id", entry.GetByID)
	api.PUT("/finance/journal-entries/:id", entry.Update)
	api.DELETE("/finance/journal-entries/:id", entry.Delete)
	api.POST("/finance/journal-entries/:id/post", entry.Post)
	api.POST("/finance/journal-entries/:id/void", entry.Void)
	api.GET("/finance/journal-entries/:id/voucher", entry.Voucher)

	api.GET("/catalog/categories", category.List)
	api.POST("/catalog/categories", category.Create)
	api.GET("/catalog/categories/tree", category.GetTree)
	api.GET("/catalog/categories/:id", category.GetByID)
	api.PUT("/catalog/categories/:id", category.Update)
	api.DELETE("/catalog/categories/:id", category.Delete)
	api.GET("/catalog/products", product.List)
	api.POST("/catalog/products", product.Create)
	api.GET("/catalog/products/:id", product.GetByID)
	api.PUT("/catalog/products/:id", product.Update)
	api.DELETE("/catalog/products/:id", product.Delete)
	api.POST("/catalog/products/:id/image", product.UploadImage)
	api.GET("/catalog/products/:id/image", product.Image)
	api.GET("/catalog/products/:id/variations", product.ListVariations)
	api.POST("/catalog/products/:id/variations", product.CreateVariation)
	api.PUT("/catalog/products/variations/:vid", product.UpdateVariation)
	api.DELETE("/catalog/products/variations/:vid", product.DeleteVariation)
	api.GET("/catalog/attributes", attribute.List)
	api.POST("/catalog/attributes", attribute.Create)
	api.GET("/catalog/attributes/:id", attribute.GetByID)
	api.PUT("/catalog/attributes/:id", attribute.Update)
	api.DELETE("/catalog/attributes/:id", attribute.Delete)
	api.POST("/catalog/attributes/:id/values", attribute.AddValue)
	api.DELETE("/catalog/attributes/:id/values/:vid", attribute.RemoveValue)

	api.GET("/partner/customers", customer.List)
	api.POST("/partner/customers", customer.Create)
	api.GET("/partner/customers/:id", customer.GetByID)
	api.PUT("/partner/customers/:id", customer.Update)
	api.DELETE("/partner/customers/:id", customer.Delete)
	api.GET("/partner/suppliers", supplier.List)
	api.POST("/partner/suppliers", supplier.Create)
	api.DELETE("/partner/suppliers/:id", supplier.Delete)
	api.GET("/partner/warehouses", warehouse.List)
	api.POST("/partner/warehouses", warehouse.Create)
	api.GET("/partner/warehouses/default", warehouse.GetDefault)
	api.GET("/partner/warehouses/:id", warehouse.GetByID)
	api.DELETE("/partner/warehouses/:id", warehouse.Delete)

	api.GET("/inventory/stock", inventory.Stock)
	api.GET("/inventory/stock/low", inventory.LowStock)
	api.POST("/inventory/stock/adjust", inventory.Adjust)
	api.POST("/inventory/stock/transfer", inventory.Transfer)
	api.GET("/inventory/stock/movements", inventory.Movements)

	api.GET("/sales", sale.List)
	api.POST("/sales", sale.Create)
	api.GET("/sales/:id", sale.GetByID)
	api.POST("/sales/:id/void", sale.Void)

	api.GET("/tables", table.Tables)
	api.GET("/tables/:table", table.Select)
	api.POST("/tables/:table", table.Insert)
	api.PATCH("/tables/:table/:id", table.Update)
	api.DELETE("/tables/:table/:id", table.Delete)

	f.engine = engine
	return f
}

// do sends a JSON request and returns the recorder
func (f *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(f.t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// ok sends a request, requires the given status and decodes data into out
func (f *apiFixture) ok(status int, method, path string, body, out any) *envelope {
	f.t.Helper()
	w := f.do(method, path, body)
	require.Equal(f.t, status, w.Code, w.Body.String())
	if status == http.StatusNoContent {
		return nil
	}
	return decodeEnvelope(f.t, w, out)
}

// fail sends a request and requires an error envelope with status and code
func (f *apiFixture) fail(status int, code, method, path string, body any) *envelope {
	f.t.Helper()
	w := f.do(method, path, body)
	require.Equal(f.t, status, w.Code, w.Body.String())
	resp := decodeEnvelope(f.t, w, nil)
	require.False(f.t, resp.Success)
	require.NotNil(f.t, resp.Error)
	require.Equal(f.t, code, resp.Error.Code, resp.Error.Message)
	return resp
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) *envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil {
		require.True(t, resp.Success, w.Body.String())
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return &resp
}

// seedChart creates the accounts sale entries post to
func (f *apiFixture) seedChart() map[string]financeapp.AccountResponse {
	f.t.Helper()
	chart := map[string]financeapp.AccountResponse{}
	for _, a := range []struct{ code, name, typ string }{
		{"1000", "Cash", "ASSET"},
		{"1100", "Accounts Receivable", "ASSET"},
		{"3000", "Owner Equity", "EQUITY"},
		{"4000", "Sales Revenue", "REVENUE"},
	} {
		var account financeapp.AccountResponse
		f.ok(http.StatusCreated, http.MethodPost, "/api/v1/finance/accounts",
			map[string]string{"code": a.code, "name": a.name, "type": a.typ}, &account)
		chart[a.code] = account
	}
	return chart
}

func (f *apiFixture) createWarehouse(code string) partnerapp.WarehouseResponse {
	f.t.Helper()
	var warehouse partnerapp.WarehouseResponse
	f.ok(http.StatusCreated, http.MethodPost, "/api/v1/partner/warehouses",
		map[string]string{"code": code, "name": "Warehouse " + code}, &warehouse)
	return warehouse
}

func (f *apiFixture) createProduct(sku, price string) catalogapp.ProductResponse {
	f.t.Helper()
	var product catalogapp.ProductResponse
	f.ok(http.StatusCreated, http.MethodPost, "/api/v1/catalog/products", map[string]any{
		"sku":           sku,
		"name":          "Product " + sku,
		"unit":          "pcs",
		"cost_price":    "1",
		"selling_price": price,
		"min_stock":     "2",
	}, &product)
	return product
}

func (f *apiFixture) adjustStock(warehouseID, productID uuid.UUID, qty string) inventoryapp.StockRowResponse {
	f.t.Helper()
	var row inventoryapp.StockRowResponse
	f.ok(http.StatusOK, http.MethodPost, "/api/v1/inventory/stock/adjust", map[string]any{
		"warehouse_id": warehouseID,
		"product_id":   productID,
		"quantity":     qty,
		"reason":       "RECEIPT",
	}, &row)
	return row
}
