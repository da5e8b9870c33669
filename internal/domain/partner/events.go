package partner

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCustomer  = "Customer"
	AggregateTypeSupplier  = "Supplier"
	AggregateTypeWarehouse = "Warehouse"
)

// Event type constants
const (
	EventTypeCustomerCreated  = "CustomerCreated"
	EventTypeCustomerUpdated  = "CustomerUpdated"
	EventTypeSupplierCreated  = "SupplierCreated"
	EventTypeWarehouseCreated = "WarehouseCreated"
	EventTypePartnerDeleted   = "PartnerDeleted"
)

// PartnerEvent is published for partner record lifecycle changes
type PartnerEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewPartnerEvent creates a new PartnerEvent
func NewPartnerEvent(eventType, aggType string, aggID, tenantID uuid.UUID, code, name string) *PartnerEvent {
	return &PartnerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, aggID, tenantID),
		Code:            code,
		Name:            name,
	}
}
