package partner

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a party goods are sold to
type Customer struct {
	shared.TenantAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;index"`
	Name        string `gorm:"type:varchar(200);not null"`
	Contact     `gorm:"embedded"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `gorm:"type:text"`
	Status      Status          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates an active customer
func NewCustomer(tenantID uuid.UUID, code, name string, contact Contact) (*Customer, error) {
	if err := validateCode("Customer", code); err != nil {
		return nil, err
	}
	if err := validateName("Customer", name); err != nil {
		return nil, err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Contact:             contact,
		CreditLimit:         decimal.Zero,
		Status:              StatusActive,
	}
	c.AddDomainEvent(NewPartnerEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, tenantID, c.Code, c.Name))
	return c, nil
}

// Update replaces the editable fields of the customer
func (c *Customer) Update(code, name string, contact Contact, notes string) error {
	if err := validateCode("Customer", code); err != nil {
		return err
	}
	if err := validateName("Customer", name); err != nil {
		return err
	}
	contact = contact.trimmed()
	if err := contact.Validate(); err != nil {
		return err
	}
	c.Code = strings.ToUpper(strings.TrimSpace(code))
	c.Name = strings.TrimSpace(name)
	c.Contact = contact
	c.Notes = notes
	c.IncrementVersion()
	c.AddDomainEvent(NewPartnerEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, c.TenantID, c.Code, c.Name))
	return nil
}

// SetCreditLimit sets the maximum outstanding amount, zero meaning unlimited
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.IncrementVersion()
	return nil
}

// SetStatus switches the customer between active and inactive
func (c *Customer) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid customer status: %s", status)
	}
	if c.Status != status {
		c.Status = status
		c.IncrementVersion()
	}
	return nil
}

func (c *Customer) IsActive() bool { return c.Status == StatusActive }
