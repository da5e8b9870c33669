package catalog

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCategory  = "Category"
	AggregateTypeProduct   = "Product"
	AggregateTypeVariation = "ProductVariation"
	AggregateTypeAttribute = "Attribute"
)

// Event type constants
const (
	EventTypeCategoryCreated  = "CategoryCreated"
	EventTypeCategoryUpdated  = "CategoryUpdated"
	EventTypeCategoryDeleted  = "CategoryDeleted"
	EventTypeProductCreated   = "ProductCreated"
	EventTypeProductUpdated   = "ProductUpdated"
	EventTypeProductDeleted   = "ProductDeleted"
	EventTypeVariationCreated = "ProductVariationCreated"
	EventTypeAttributeCreated = "AttributeCreated"
)

// CatalogEvent is published for catalog record lifecycle changes
type CatalogEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCatalogEvent creates a new CatalogEvent
func NewCatalogEvent(eventType, aggType string, aggID, tenantID uuid.UUID, code, name string) *CatalogEvent {
	return &CatalogEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, aggID, tenantID),
		Code:            code,
		Name:            name,
	}
}
