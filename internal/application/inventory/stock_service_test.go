package inventory

import (
	"context"
	"testing"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	productRepo   *MockProductRepository
	variationRepo *MockVariationRepository
	warehouseRepo *MockWarehouseRepository
	stockRepo     *MockStockRepository
	movementRepo  *MockMovementRepository
	publisher     *MockEventPublisher
	service       *StockService
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		productRepo:   new(MockProductRepository),
		variationRepo: new(MockVariationRepository),
		warehouseRepo: new(MockWarehouseRepository),
		stockRepo:     new(MockStockRepository),
		movementRepo:  new(MockMovementRepository),
		publisher:     new(MockEventPublisher),
	}
	txScope := uow.NewNoOpTransactionScope(uow.RepositorySet{
		StockRepo:    f.stockRepo,
		MovementRepo: f.movementRepo,
	})
	f.service = NewStockService(f.productRepo, f.variationRepo, f.warehouseRepo, f.stockRepo, f.movementRepo, txScope)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func newTestProduct(t *testing.T, tenantID uuid.UUID, sku string, minStock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, sku, "Product "+sku, "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetMinStock(decimal.NewFromInt(minStock)))
	product.ClearDomainEvents()
	return product
}

func newTestWarehouse(t *testing.T, tenantID uuid.UUID, code string) *partner.Warehouse {
	t.Helper()
	warehouse, err := partner.NewWarehouse(tenantID, code, "Warehouse "+code, partner.Contact{})
	require.NoError(t, err)
	warehouse.ClearDomainEvents()
	return warehouse
}

func stockRow(t *testing.T, tenantID, warehouseID, productID uuid.UUID, qty int64) *inventory.WarehouseStock {
	t.Helper()
	row := inventory.NewWarehouseStock(tenantID, warehouseID, productID, nil)
	require.NoError(t, row.Apply(decimal.NewFromInt(qty)))
	return row
}

func TestStockService_Stock(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newStockFixture()
	product := newTestProduct(t, tenantID, "APPLE", 0)
	front := newTestWarehouse(t, tenantID, "MAIN")
	back := newTestWarehouse(t, tenantID, "BACK")

	f.stockRepo.On("FindRows", ctx, tenantID, inventory.StockQuery{}).Return([]inventory.WarehouseStock{
		*stockRow(t, tenantID, front.ID, product.ID, 5),
		*stockRow(t, tenantID, back.ID, product.ID, 2),
	}, nil)
	f.productRepo.On("FindByIDs", ctx, tenantID, []uuid.UUID{product.ID}).Return([]catalog.Product{*product}, nil)
	f.warehouseRepo.On("FindByIDs", ctx, tenantID, mock.Anything).Return([]partner.Warehouse{*front, *back}, nil)

	stock, err := f.service.Stock(ctx, tenantID, StockFilter{})

	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "APPLE", stock[0].SKU)
	assert.True(t, stock[0].Total.Equal(decimal.NewFromInt(7)))
	require.Len(t, stock[0].Warehouses, 2)
	codes := []string{stock[0].Warehouses[0].WarehouseCode, stock[0].Warehouses[1].WarehouseCode}
	assert.ElementsMatch(t, []string{"MAIN", "BACK"}, codes)
}

func TestStockService_Stock_Empty(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newStockFixture()
	warehouseID := uuid.New()

	f.stockRepo.On("FindRows", ctx, tenantID, inventory.StockQuery{WarehouseID: &warehouseID}).Return([]inventory.WarehouseStock{}, nil)

	stock, err := f.service.Stock(ctx, tenantID, StockFilter{WarehouseID: &warehouseID})

	require.NoError(t, err)
	assert.Empty(t, stock)
	f.productRepo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockService_LowStock(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newStockFixture()
	short := newTestProduct(t, tenantID, "PEAR", 10)
	empty := newTestProduct(t, tenantID, "PLUM", 4)
	plenty := newTestProduct(t, tenantID, "FIG", 5)
	untracked := newTestProduct(t, tenantID, "KIWI", 0)

	f.productRepo.On("FindAllForTenant", ctx, tenantID, shared.Filter{
		Page:     1,
		PageSize: productPageSize,
		OrderBy:  "sku",
		OrderDir: "asc",
		Filters:  map[string]any{"status": "active"},
	}).Return([]catalog.Product{*short, *empty, *plenty, *untracked}, nil)
	f.stockRepo.On("SumByProduct", ctx, tenantID, []uuid.UUID{short.ID, empty.ID, plenty.ID}).Return([]inventory.ProductTotal{
		{ProductID: short.ID, Quantity: decimal.NewFromInt(3)},
		{ProductID: plenty.ID, Quantity: decimal.NewFromInt(8)},
	}, nil)

	low, err := f.service.LowStock(ctx, tenantID)

	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "PEAR", low[0].SKU)
	assert.True(t, low[0].Shortage.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "PLUM", low[1].SKU)
	assert.True(t, low[1].Quantity.IsZero())
}

func TestStockService_Adjust(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates row on first receipt", func(t *testing.T) {
		f := newStockFixture()
		warehouse := newTestWarehouse(t, tenantID, "MAIN")
		product := newTestProduct(t, tenantID, "APPLE", 0)
		qty := decimal.NewFromInt(12)

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, warehouse.ID).Return(warehouse, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, warehouse.ID, product.ID, (*uuid.UUID)(nil)).Return(nil, shared.ErrNotFound)
		f.stockRepo.On("Save", mock.Anything, mock.AnythingOfType("*inventory.WarehouseStock")).Return(nil)
		f.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.Reason == inventory.ReasonReceipt && m.Quantity.Equal(qty) && m.BalanceAfter.Equal(qty) && m.Reference == "PO-1"
		})).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == inventory.EventTypeStockAdjusted
		})).Return(nil)

		row, err := f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: warehouse.ID,
			ProductID:   product.ID,
			Quantity:    qty,
			Reason:      "receipt",
			Reference:   "PO-1",
		})

		require.NoError(t, err)
		assert.True(t, row.Quantity.Equal(qty))
		f.movementRepo.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		f := newStockFixture()
		warehouse := newTestWarehouse(t, tenantID, "MAIN")
		product := newTestProduct(t, tenantID, "APPLE", 0)
		existing := stockRow(t, tenantID, warehouse.ID, product.ID, 2)

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, warehouse.ID).Return(warehouse, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, warehouse.ID, product.ID, (*uuid.UUID)(nil)).Return(existing, nil)

		_, err := f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: warehouse.ID,
			ProductID:   product.ID,
			Quantity:    decimal.NewFromInt(-3),
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.stockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("negative on missing row", func(t *testing.T) {
		f := newStockFixture()
		warehouse := newTestWarehouse(t, tenantID, "MAIN")
		product := newTestProduct(t, tenantID, "APPLE", 0)

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, warehouse.ID).Return(warehouse, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, warehouse.ID, product.ID, (*uuid.UUID)(nil)).Return(nil, shared.ErrNotFound)

		_, err := f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: warehouse.ID,
			ProductID:   product.ID,
			Quantity:    decimal.NewFromInt(-1),
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("system reason rejected", func(t *testing.T) {
		f := newStockFixture()

		_, err := f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: uuid.New(),
			ProductID:   uuid.New(),
			Quantity:    decimal.NewFromInt(1),
			Reason:      "SALE",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REASON", domainErr.Code)
	})

	t.Run("inactive warehouse", func(t *testing.T) {
		f := newStockFixture()
		warehouse := newTestWarehouse(t, tenantID, "OLD")
		require.NoError(t, warehouse.SetStatus(partner.StatusInactive))
		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, warehouse.ID).Return(warehouse, nil)

		_, err := f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: warehouse.ID,
			ProductID:   uuid.New(),
			Quantity:    decimal.NewFromInt(1),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_WAREHOUSE", domainErr.Code)
	})

	t.Run("variation of another product", func(t *testing.T) {
		f := newStockFixture()
		warehouse := newTestWarehouse(t, tenantID, "MAIN")
		product := newTestProduct(t, tenantID, "SHIRT", 0)
		other := newTestProduct(t, tenantID, "PANTS", 0)
		variation, err := catalog.NewProductVariation(other, "PANTS-L", "Large", catalog.Options{"SIZE": "L"})
		require.NoError(t, err)

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, warehouse.ID).Return(warehouse, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.variationRepo.On("FindByIDForTenant", mock.Anything, tenantID, variation.ID).Return(variation, nil)

		_, err = f.service.Adjust(context.Background(), tenantID, AdjustStockRequest{
			WarehouseID: warehouse.ID,
			ProductID:   product.ID,
			VariationID: &variation.ID,
			Quantity:    decimal.NewFromInt(1),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_VARIATION", domainErr.Code)
	})
}

func TestStockService_Transfer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("moves quantity between warehouses", func(t *testing.T) {
		f := newStockFixture()
		from := newTestWarehouse(t, tenantID, "MAIN")
		to := newTestWarehouse(t, tenantID, "BACK")
		product := newTestProduct(t, tenantID, "APPLE", 0)
		source := stockRow(t, tenantID, from.ID, product.ID, 10)
		var movements []*inventory.StockMovement

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, from.ID).Return(from, nil)
		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, to.ID).Return(to, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, from.ID, product.ID, (*uuid.UUID)(nil)).Return(source, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, to.ID, product.ID, (*uuid.UUID)(nil)).Return(nil, shared.ErrNotFound)
		f.stockRepo.On("Save", mock.Anything, mock.AnythingOfType("*inventory.WarehouseStock")).Return(nil)
		f.movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).
			Run(func(args mock.Arguments) {
				movements = append(movements, args.Get(1).(*inventory.StockMovement))
			}).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == inventory.EventTypeStockTransferred
		})).Return(nil)

		resp, err := f.service.Transfer(context.Background(), tenantID, TransferStockRequest{
			FromWarehouseID: from.ID,
			ToWarehouseID:   to.ID,
			ProductID:       product.ID,
			Quantity:        decimal.NewFromInt(4),
		})

		require.NoError(t, err)
		assert.True(t, resp.From.Quantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, resp.To.Quantity.Equal(decimal.NewFromInt(4)))
		require.Len(t, movements, 2)
		assert.Equal(t, inventory.ReasonTransferOut, movements[0].Reason)
		assert.Equal(t, inventory.ReasonTransferIn, movements[1].Reason)
		require.NotNil(t, movements[0].SourceID)
		assert.Equal(t, resp.TransferID, *movements[0].SourceID)
		assert.Equal(t, resp.TransferID, *movements[1].SourceID)
	})

	t.Run("same warehouse", func(t *testing.T) {
		f := newStockFixture()
		id := uuid.New()

		_, err := f.service.Transfer(context.Background(), tenantID, TransferStockRequest{
			FromWarehouseID: id,
			ToWarehouseID:   id,
			ProductID:       uuid.New(),
			Quantity:        decimal.NewFromInt(1),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSFER", domainErr.Code)
	})

	t.Run("not enough in source", func(t *testing.T) {
		f := newStockFixture()
		from := newTestWarehouse(t, tenantID, "MAIN")
		to := newTestWarehouse(t, tenantID, "BACK")
		product := newTestProduct(t, tenantID, "APPLE", 0)
		source := stockRow(t, tenantID, from.ID, product.ID, 1)

		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, from.ID).Return(from, nil)
		f.warehouseRepo.On("FindByIDForTenant", mock.Anything, tenantID, to.ID).Return(to, nil)
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("FindRow", mock.Anything, tenantID, from.ID, product.ID, (*uuid.UUID)(nil)).Return(source, nil)

		_, err := f.service.Transfer(context.Background(), tenantID, TransferStockRequest{
			FromWarehouseID: from.ID,
			ToWarehouseID:   to.ID,
			ProductID:       product.ID,
			Quantity:        decimal.NewFromInt(2),
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.movementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestStockService_Movements(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newStockFixture()
	productID := uuid.New()
	expected := shared.Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters: map[string]any{
			"product_id": productID,
			"reason":     "SALE",
		},
	}

	f.movementRepo.On("FindAllForTenant", ctx, tenantID, expected).Return([]inventory.StockMovement{{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(-2),
		Reason:    inventory.ReasonSale,
	}}, nil)
	f.movementRepo.On("CountForTenant", ctx, tenantID, expected).Return(int64(1), nil)

	movements, total, err := f.service.Movements(ctx, tenantID, MovementListFilter{ProductID: &productID, Reason: "SALE"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movements, 1)
	assert.Equal(t, "SALE", movements[0].Reason)
}
