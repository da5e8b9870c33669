package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariationService manages the variations of a product
type VariationService struct {
	productRepo    catalog.ProductRepository
	variationRepo  catalog.VariationRepository
	attributeRepo  catalog.AttributeRepository
	stockRepo      inventory.StockRepository
	eventPublisher shared.EventPublisher
}

// NewVariationService creates a new VariationService
func NewVariationService(
	productRepo catalog.ProductRepository,
	variationRepo catalog.VariationRepository,
	attributeRepo catalog.AttributeRepository,
	stockRepo inventory.StockRepository,
) *VariationService {
	return &VariationService{
		productRepo:   productRepo,
		variationRepo: variationRepo,
		attributeRepo: attributeRepo,
		stockRepo:     stockRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *VariationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListByProduct returns the variations of a product
func (s *VariationService) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]VariationResponse, error) {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	variations, err := s.variationRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]VariationResponse, len(variations))
	for i := range variations {
		responses[i] = ToVariationResponse(&variations[i])
	}
	return responses, nil
}

// Create adds a variation to a product
func (s *VariationService) Create(ctx context.Context, tenantID, productID uuid.UUID, req CreateVariationRequest) (*VariationResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := checkSKUAvailable(ctx, s.productRepo, s.variationRepo, tenantID, req.SKU); err != nil {
		return nil, err
	}
	if err := s.validateOptions(ctx, tenantID, req.Options); err != nil {
		return nil, err
	}

	variation, err := catalog.NewProductVariation(product, req.SKU, req.Name, catalog.Options(req.Options))
	if err != nil {
		return nil, err
	}
	if !req.PriceDelta.IsZero() {
		if err := variation.Update(variation.SKU, variation.Name, variation.Options, req.PriceDelta); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		variation.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.variationRepo.Save(ctx, variation); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, variation)

	response := ToVariationResponse(variation)
	return &response, nil
}

// Update updates a variation
func (s *VariationService) Update(ctx context.Context, tenantID, variationID uuid.UUID, req UpdateVariationRequest) (*VariationResponse, error) {
	variation, err := s.variationRepo.FindByIDForTenant(ctx, tenantID, variationID)
	if err != nil {
		return nil, err
	}

	sku := variation.SKU
	name := variation.Name
	options := variation.Options
	priceDelta := variation.PriceDelta
	if req.SKU != nil && !strings.EqualFold(strings.TrimSpace(*req.SKU), variation.SKU) {
		if err := checkSKUAvailable(ctx, s.productRepo, s.variationRepo, tenantID, *req.SKU); err != nil {
			return nil, err
		}
		sku = *req.SKU
	}
	if req.Name != nil {
		name = *req.Name
	}
	if req.Options != nil {
		if err := s.validateOptions(ctx, tenantID, req.Options); err != nil {
			return nil, err
		}
		options = catalog.Options(req.Options)
	}
	if req.PriceDelta != nil {
		priceDelta = *req.PriceDelta
	}
	if err := variation.Update(sku, name, options, priceDelta); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := variation.SetStatus(catalog.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.variationRepo.Save(ctx, variation); err != nil {
		return nil, err
	}
	response := ToVariationResponse(variation)
	return &response, nil
}

// Delete removes a variation that holds no stock in any warehouse
func (s *VariationService) Delete(ctx context.Context, tenantID, variationID uuid.UUID) error {
	variation, err := s.variationRepo.FindByIDForTenant(ctx, tenantID, variationID)
	if err != nil {
		return err
	}

	rows, err := s.stockRepo.FindRows(ctx, tenantID, inventory.StockQuery{ProductIDs: []uuid.UUID{variation.ProductID}})
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.VariationID != nil && *row.VariationID == variationID && row.Quantity.GreaterThan(decimal.Zero) {
			return shared.NewDomainErrorf("IN_USE", "Variation %s still has stock on hand", variation.SKU)
		}
	}

	return s.variationRepo.DeleteForTenant(ctx, tenantID, variationID)
}

// validateOptions checks that every option names a known attribute and one of its values
func (s *VariationService) validateOptions(ctx context.Context, tenantID uuid.UUID, options map[string]string) error {
	if len(options) == 0 {
		return nil
	}
	codes := make([]string, 0, len(options))
	for code := range options {
		codes = append(codes, strings.ToUpper(strings.TrimSpace(code)))
	}
	sort.Strings(codes)

	attributes, err := s.attributeRepo.FindByCodes(ctx, tenantID, codes)
	if err != nil {
		return err
	}
	byCode := make(map[string]*catalog.Attribute, len(attributes))
	for i := range attributes {
		byCode[attributes[i].Code] = &attributes[i]
	}

	for code, value := range options {
		attr, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			return shared.NewDomainErrorf("INVALID_OPTIONS", "Unknown attribute %s", code)
		}
		if !attr.HasValue(value) {
			return shared.NewDomainErrorf("INVALID_OPTIONS", "Attribute %s has no value %q", attr.Code, value)
		}
	}
	return nil
}
