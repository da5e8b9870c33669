package partner

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Supplier is a party goods are purchased from
type Supplier struct {
	shared.TenantAggregateRoot
	Code         string `gorm:"type:varchar(50);not null;index"`
	Name         string `gorm:"type:varchar(200);not null"`
	Contact      `gorm:"embedded"`
	PaymentTerms int    `gorm:"not null;default:0"`
	Notes        string `gorm:"type:text"`
	Status       Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates an active supplier
func NewSupplier(tenantID uuid.UUID, code, name string, contact Contact) (*Supplier, error) {
	if err := validateCode("Supplier", code); err != nil {
		return nil, err
	}
	if err := validateName("Supplier", name); err != nil {
		return nil, err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	s := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Contact:             contact,
		Status:              StatusActive,
	}
	s.AddDomainEvent(NewPartnerEvent(EventTypeSupplierCreated, AggregateTypeSupplier, s.ID, tenantID, s.Code, s.Name))
	return s, nil
}

// Update replaces the editable fields of the supplier
func (s *Supplier) Update(code, name string, contact Contact, notes string) error {
	if err := validateCode("Supplier", code); err != nil {
		return err
	}
	if err := validateName("Supplier", name); err != nil {
		return err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return err
	}
	s.Code = strings.ToUpper(strings.TrimSpace(code))
	s.Name = strings.TrimSpace(name)
	s.Contact = contact
	s.Notes = notes
	s.IncrementVersion()
	return nil
}

// SetPaymentTerms sets the number of days allowed for payment
func (s *Supplier) SetPaymentTerms(days int) error {
	if days < 0 || days > 365 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 365 days")
	}
	s.PaymentTerms = days
	s.IncrementVersion()
	return nil
}

// SetStatus switches the supplier between active and inactive
func (s *Supplier) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid supplier status: %s", status)
	}
	if s.Status != status {
		s.Status = status
		s.IncrementVersion()
	}
	return nil
}
