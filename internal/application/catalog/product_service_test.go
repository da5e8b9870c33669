package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type productFixture struct {
	productRepo   *MockProductRepository
	categoryRepo  *MockCategoryRepository
	variationRepo *MockVariationRepository
	stockRepo     *MockStockRepository
	images        *MockImageStorage
	service       *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		productRepo:   new(MockProductRepository),
		categoryRepo:  new(MockCategoryRepository),
		variationRepo: new(MockVariationRepository),
		stockRepo:     new(MockStockRepository),
		images:        new(MockImageStorage),
	}
	txScope := uow.NewNoOpTransactionScope(uow.RepositorySet{
		ProductRepo:   f.productRepo,
		VariationRepo: f.variationRepo,
	})
	f.service = NewProductService(f.productRepo, f.categoryRepo, f.variationRepo, f.stockRepo, txScope)
	f.service.SetImageStorage(f.images, ImageOptions{MaxSize: 1024, URLExpiry: 10 * time.Minute})
	return f
}

func newTestProduct(t *testing.T, tenantID uuid.UUID, sku string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, sku, "Product "+sku, "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(decimal.NewFromInt(6), decimal.NewFromInt(10)))
	product.ClearDomainEvents()
	return product
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		f := newProductFixture()
		categoryID := uuid.New()
		cost := decimal.NewFromFloat(2.5)
		selling := decimal.NewFromInt(4)
		minStock := decimal.NewFromInt(10)

		f.productRepo.On("ExistsBySKU", ctx, tenantID, "apl-1").Return(false, nil)
		f.variationRepo.On("ExistsBySKU", ctx, tenantID, "apl-1").Return(false, nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, categoryID).Return(&catalog.Category{}, nil)
		f.productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.service.Create(ctx, tenantID, CreateProductRequest{
			SKU:          "apl-1",
			Name:         "Apple",
			Unit:         "kg",
			CategoryID:   &categoryID,
			CostPrice:    &cost,
			SellingPrice: &selling,
			MinStock:     &minStock,
		})

		require.NoError(t, err)
		assert.Equal(t, "APL-1", resp.SKU)
		assert.Equal(t, &categoryID, resp.CategoryID)
		assert.True(t, resp.CostPrice.Equal(cost))
		assert.True(t, resp.SellingPrice.Equal(selling))
		assert.True(t, resp.MinStock.Equal(minStock))
		assert.False(t, resp.HasImage)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("SKU taken by a variation", func(t *testing.T) {
		f := newProductFixture()
		f.productRepo.On("ExistsBySKU", ctx, tenantID, "TSHIRT-M").Return(false, nil)
		f.variationRepo.On("ExistsBySKU", ctx, tenantID, "TSHIRT-M").Return(true, nil)

		_, err := f.service.Create(ctx, tenantID, CreateProductRequest{SKU: "TSHIRT-M", Name: "Shirt", Unit: "pcs"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		f.productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture()
		categoryID := uuid.New()
		f.productRepo.On("ExistsBySKU", ctx, tenantID, "A").Return(false, nil)
		f.variationRepo.On("ExistsBySKU", ctx, tenantID, "A").Return(false, nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, categoryID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, tenantID, CreateProductRequest{SKU: "A", Name: "A", Unit: "pcs", CategoryID: &categoryID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})

	t.Run("negative price", func(t *testing.T) {
		f := newProductFixture()
		cost := decimal.NewFromInt(-1)
		f.productRepo.On("ExistsBySKU", ctx, tenantID, "A").Return(false, nil)
		f.variationRepo.On("ExistsBySKU", ctx, tenantID, "A").Return(false, nil)

		_, err := f.service.Create(ctx, tenantID, CreateProductRequest{SKU: "A", Name: "A", Unit: "pcs", CostPrice: &cost})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestProductService_Update(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	tenantID := uuid.New()
	product := newTestProduct(t, tenantID, "APL-1")
	categoryID := uuid.New()
	product.SetCategory(&categoryID)
	selling := decimal.NewFromInt(12)
	status := "inactive"

	f.productRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	f.productRepo.On("Save", ctx, product).Return(nil)

	resp, err := f.service.Update(ctx, tenantID, product.ID, UpdateProductRequest{
		SellingPrice:  &selling,
		ClearCategory: true,
		Status:        &status,
	})

	require.NoError(t, err)
	assert.True(t, resp.SellingPrice.Equal(selling))
	assert.True(t, resp.CostPrice.Equal(decimal.NewFromInt(6)))
	assert.Nil(t, resp.CategoryID)
	assert.Equal(t, "inactive", resp.Status)
	f.productRepo.AssertNotCalled(t, "ExistsBySKU", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_List_Defaults(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	tenantID := uuid.New()
	categoryID := uuid.New()
	expected := shared.Filter{
		Page:     2,
		PageSize: 20,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   "apple",
		Filters:  map[string]any{"category_id": categoryID},
	}

	f.productRepo.On("FindAllForTenant", ctx, tenantID, expected).Return([]catalog.Product{}, nil)
	f.productRepo.On("CountForTenant", ctx, tenantID, expected).Return(int64(21), nil)

	list, total, err := f.service.List(ctx, tenantID, ProductListFilter{Search: "apple", CategoryID: &categoryID, Page: 2})

	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(21), total)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("blocked by stock", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, tenantID, "APL-1")
		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("HasStockForProduct", mock.Anything, tenantID, product.ID).Return(true, nil)

		err := f.service.Delete(ctx, tenantID, product.ID)

		assert.ErrorIs(t, err, shared.ErrInUse)
		f.productRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removes variations and image", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, tenantID, "APL-1")
		product.SetImage("products/x/y/z.png")

		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.stockRepo.On("HasStockForProduct", mock.Anything, tenantID, product.ID).Return(false, nil)
		f.variationRepo.On("DeleteByProduct", mock.Anything, tenantID, product.ID).Return(nil)
		f.productRepo.On("DeleteForTenant", mock.Anything, tenantID, product.ID).Return(nil)
		f.images.On("DeleteObject", mock.Anything, "products/x/y/z.png").Return(errors.New("bucket unavailable"))

		require.NoError(t, f.service.Delete(ctx, tenantID, product.ID))
		f.variationRepo.AssertExpectations(t)
		f.productRepo.AssertExpectations(t)
		f.images.AssertExpectations(t)
	})
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("stores image and replaces previous", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, tenantID, "APL-1")
		product.SetImage("products/old.png")
		prefix := "products/" + tenantID.String() + "/" + product.ID.String() + "/"

		f.productRepo.On("FindByIDForTenant", mock.Anything, tenantID, product.ID).Return(product, nil)
		f.images.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".png")
		}), pngHeader, "image/png").Return(nil)
		f.productRepo.On("Save", mock.Anything, product).Return(nil)
		f.images.On("DeleteObject", mock.Anything, "products/old.png").Return(nil)

		resp, err := f.service.UploadImage(ctx, tenantID, product.ID, ImageUpload{Filename: "apple.png", Data: pngHeader})

		require.NoError(t, err)
		assert.True(t, resp.HasImage)
		assert.True(t, strings.HasPrefix(product.ImageKey, prefix))
		f.images.AssertExpectations(t)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		f := newProductFixture()

		_, err := f.service.UploadImage(ctx, tenantID, uuid.New(), ImageUpload{Data: []byte("plain text body")})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE", domainErr.Code)
		f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized image", func(t *testing.T) {
		f := newProductFixture()
		data := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)

		_, err := f.service.UploadImage(ctx, tenantID, uuid.New(), ImageUpload{Data: data})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IMAGE_TOO_LARGE", domainErr.Code)
	})

	t.Run("storage not configured", func(t *testing.T) {
		service := NewProductService(new(MockProductRepository), new(MockCategoryRepository), new(MockVariationRepository), new(MockStockRepository), nil)

		_, err := service.UploadImage(ctx, tenantID, uuid.New(), ImageUpload{Data: pngHeader})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_CONFIGURED", domainErr.Code)
	})
}

func TestProductService_ImageURL(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("presigned link", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, tenantID, "APL-1")
		product.SetImage("products/a.png")
		expires := time.Now().Add(10 * time.Minute)

		f.productRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		f.images.On("GenerateDownloadURL", ctx, "products/a.png", 10*time.Minute).Return("https://s3/a.png?sig", expires, nil)

		resp, err := f.service.ImageURL(ctx, tenantID, product.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://s3/a.png?sig", resp.URL)
		assert.Equal(t, expires, resp.ExpiresAt)
	})

	t.Run("no image", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, tenantID, "APL-1")
		f.productRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)

		_, err := f.service.ImageURL(ctx, tenantID, product.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
