package partner

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Warehouse is a location that holds stock
type Warehouse struct {
	shared.TenantAggregateRoot
	Code      string `gorm:"type:varchar(50);not null;index"`
	Name      string `gorm:"type:varchar(200);not null"`
	Contact   `gorm:"embedded"`
	IsDefault bool   `gorm:"not null"`
	Status    Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates an active, non-default warehouse
func NewWarehouse(tenantID uuid.UUID, code, name string, contact Contact) (*Warehouse, error) {
	if err := validateCode("Warehouse", code); err != nil {
		return nil, err
	}
	if err := validateName("Warehouse", name); err != nil {
		return nil, err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	w := &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Contact:             contact,
		Status:              StatusActive,
	}
	w.AddDomainEvent(NewPartnerEvent(EventTypeWarehouseCreated, AggregateTypeWarehouse, w.ID, tenantID, w.Code, w.Name))
	return w, nil
}

// Update replaces the editable fields of the warehouse
func (w *Warehouse) Update(code, name string, contact Contact) error {
	if err := validateCode("Warehouse", code); err != nil {
		return err
	}
	if err := validateName("Warehouse", name); err != nil {
		return err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return err
	}
	w.Code = strings.ToUpper(strings.TrimSpace(code))
	w.Name = strings.TrimSpace(name)
	w.Contact = contact
	w.IncrementVersion()
	return nil
}

// SetDefault marks or unmarks the warehouse as the tenant default
func (w *Warehouse) SetDefault(isDefault bool) error {
	if isDefault && w.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Inactive warehouse cannot be the default")
	}
	if w.IsDefault != isDefault {
		w.IsDefault = isDefault
		w.IncrementVersion()
	}
	return nil
}

// SetStatus switches the warehouse between active and inactive
func (w *Warehouse) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid warehouse status: %s", status)
	}
	if status == StatusInactive && w.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Default warehouse cannot be deactivated")
	}
	if w.Status != status {
		w.Status = status
		w.IncrementVersion()
	}
	return nil
}

func (w *Warehouse) IsActive() bool { return w.Status == StatusActive }
