package catalog

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AttributeService manages attributes and their allowed values
type AttributeService struct {
	attributeRepo  catalog.AttributeRepository
	eventPublisher shared.EventPublisher
}

// NewAttributeService creates a new AttributeService
func NewAttributeService(attributeRepo catalog.AttributeRepository) *AttributeService {
	return &AttributeService{attributeRepo: attributeRepo}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AttributeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates an attribute with its initial values
func (s *AttributeService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAttributeRequest) (*AttributeResponse, error) {
	exists, err := s.attributeRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Attribute with this code already exists")
	}

	attribute, err := catalog.NewAttribute(tenantID, req.Code, req.Name, req.Values...)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		attribute.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, attribute)

	response := ToAttributeResponse(attribute)
	return &response, nil
}

// GetByID retrieves an attribute with its values
func (s *AttributeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToAttributeResponse(attribute)
	return &response, nil
}

// List retrieves attributes with pagination
func (s *AttributeService) List(ctx context.Context, tenantID uuid.UUID, filter AttributeListFilter) ([]AttributeResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
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
	}

	attributes, err := s.attributeRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.attributeRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAttributeResponses(attributes), total, nil
}

// Update renames an attribute
func (s *AttributeService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateAttributeRequest) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	code := attribute.Code
	name := attribute.Name
	if req.Code != nil && !strings.EqualFold(strings.TrimSpace(*req.Code), attribute.Code) {
		exists, err := s.attributeRepo.ExistsByCode(ctx, tenantID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Attribute with this code already exists")
		}
		code = *req.Code
	}
	if req.Name != nil {
		name = *req.Name
	}
	if err := attribute.Rename(code, name); err != nil {
		return nil, err
	}

	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}
	response := ToAttributeResponse(attribute)
	return &response, nil
}

// Delete removes an attribute and its values
func (s *AttributeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.attributeRepo.DeleteForTenant(ctx, tenantID, id)
}

// AddValue appends an allowed value to an attribute
func (s *AttributeService) AddValue(ctx context.Context, tenantID, id uuid.UUID, req AddAttributeValueRequest) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if _, err := attribute.AddValue(req.Value); err != nil {
		return nil, err
	}
	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}
	response := ToAttributeResponse(attribute)
	return &response, nil
}

// RemoveValue deletes an allowed value from an attribute
func (s *AttributeService) RemoveValue(ctx context.Context, tenantID, id, valueID uuid.UUID) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := attribute.RemoveValue(valueID); err != nil {
		return nil, err
	}
	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}
	response := ToAttributeResponse(attribute)
	return &response, nil
}
