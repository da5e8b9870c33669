package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImageStorage stores product images in an object store
type ImageStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// ImageOptions bounds product image uploads and download links
type ImageOptions struct {
	MaxSize   int64
	URLExpiry time.Duration
}

// imageExtensions lists the accepted image content types
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	variationRepo  catalog.VariationRepository
	stockRepo      inventory.StockRepository
	txScope        uow.TransactionScope
	images         ImageStorage
	imageOpts      ImageOptions
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	variationRepo catalog.VariationRepository,
	stockRepo inventory.StockRepository,
	txScope uow.TransactionScope,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		variationRepo: variationRepo,
		stockRepo:     stockRepo,
		txScope:       txScope,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetImageStorage enables product images
func (s *ProductService) SetImageStorage(storage ImageStorage, opts ImageOptions) {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 5 << 20
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}
	s.images = storage
	s.imageOpts = opts
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureSKUAvailable(ctx, tenantID, req.SKU); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	product.CategoryID = req.CategoryID

	cost := decimal.Zero
	selling := decimal.Zero
	if req.CostPrice != nil {
		cost = *req.CostPrice
	}
	if req.SellingPrice != nil {
		selling = *req.SellingPrice
	}
	if err := product.SetPrices(cost, selling); err != nil {
		return nil, err
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		product.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.Unit != "" {
		domainFilter.Filters["unit"] = filter.Unit
	}

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	sku := product.SKU
	name := product.Name
	description := product.Description
	unit := product.Unit
	if req.SKU != nil && !strings.EqualFold(strings.TrimSpace(*req.SKU), product.SKU) {
		if err := s.ensureSKUAvailable(ctx, tenantID, *req.SKU); err != nil {
			return nil, err
		}
		sku = *req.SKU
	}
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Unit != nil {
		unit = *req.Unit
	}
	if err := product.Update(sku, name, description, unit); err != nil {
		return nil, err
	}

	if req.CostPrice != nil || req.SellingPrice != nil {
		cost := product.CostPrice
		selling := product.SellingPrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(cost, selling); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.ensureCategory(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		categoryID := *req.CategoryID
		product.SetCategory(&categoryID)
	}

	if req.Status != nil {
		if err := product.SetStatus(catalog.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product and its variations. Products with stock on hand
// cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "delete",
		"tenant_id", tenantID,
		"product_id", productID,
	)
	defer span.End()

	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	inStock, err := s.stockRepo.HasStockForProduct(ctx, tenantID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if inStock {
		err := shared.NewDomainErrorf("IN_USE", "Product %s still has stock on hand", product.SKU)
		telemetry.RecordError(span, err)
		return err
	}

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Variations().DeleteByProduct(ctx, tenantID, productID); err != nil {
			return err
		}
		return repos.Products().DeleteForTenant(ctx, tenantID, productID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if product.ImageKey != "" && s.images != nil {
		if err := s.images.DeleteObject(ctx, product.ImageKey); err != nil {
			logger.L(ctx).Warn("Failed to delete product image",
				zap.String("product_id", productID.String()),
				zap.String("key", product.ImageKey),
				zap.Error(err),
			)
		}
	}

	product.AddDomainEvent(catalog.NewCatalogEvent(catalog.EventTypeProductDeleted, catalog.AggregateTypeProduct, product.ID, tenantID, product.SKU, product.Name))
	uow.PublishEvents(ctx, s.eventPublisher, product)
	return nil
}

// UploadImage stores a new product image and replaces the previous one
func (s *ProductService) UploadImage(ctx context.Context, tenantID, productID uuid.UUID, upload ImageUpload) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("NOT_CONFIGURED", "Image storage is not configured")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "upload_image",
		"tenant_id", tenantID,
		"product_id", productID,
		"size", len(upload.Data),
	)
	defer span.End()

	if len(upload.Data) == 0 {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image is empty")
	}
	if int64(len(upload.Data)) > s.imageOpts.MaxSize {
		return nil, shared.NewDomainErrorf("IMAGE_TOO_LARGE", "Image exceeds the maximum size of %d bytes", s.imageOpts.MaxSize)
	}
	contentType := http.DetectContentType(upload.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainErrorf("INVALID_IMAGE", "Unsupported image type: %s", contentType)
	}

	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s/%s%s", tenantID, productID, uuid.New(), ext)
	if err := s.images.Upload(ctx, key, upload.Data, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("upload product image: %w", err)
	}

	previous := product.ImageKey
	product.SetImage(key)
	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		if delErr := s.images.DeleteObject(ctx, key); delErr != nil {
			logger.L(ctx).Warn("Failed to remove orphaned product image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	if previous != "" {
		if err := s.images.DeleteObject(ctx, previous); err != nil {
			logger.L(ctx).Warn("Failed to delete replaced product image", zap.String("key", previous), zap.Error(err))
		}
	}

	telemetry.SetAttributes(span, "key", key)
	response := ToProductResponse(product)
	return &response, nil
}

// ImageURL returns a presigned download link for the product image
func (s *ProductService) ImageURL(ctx context.Context, tenantID, productID uuid.UUID) (*ImageURLResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("NOT_CONFIGURED", "Image storage is not configured")
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "Product has no image")
	}
	url, expiresAt, err := s.images.GenerateDownloadURL(ctx, product.ImageKey, s.imageOpts.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign product image: %w", err)
	}
	return &ImageURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// ensureSKUAvailable checks the SKU against both products and variations
func (s *ProductService) ensureSKUAvailable(ctx context.Context, tenantID uuid.UUID, sku string) error {
	return checkSKUAvailable(ctx, s.productRepo, s.variationRepo, tenantID, sku)
}

func (s *ProductService) ensureCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func checkSKUAvailable(ctx context.Context, products catalog.ProductRepository, variations catalog.VariationRepository, tenantID uuid.UUID, sku string) error {
	exists, err := products.ExistsBySKU(ctx, tenantID, sku)
	if err != nil {
		return err
	}
	if !exists {
		exists, err = variations.ExistsBySKU(ctx, tenantID, sku)
		if err != nil {
			return err
		}
	}
	if exists {
		return shared.NewDomainErrorf("ALREADY_EXISTS", "SKU %s is already in use", strings.ToUpper(strings.TrimSpace(sku)))
	}
	return nil
}
