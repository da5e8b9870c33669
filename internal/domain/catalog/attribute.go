package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Attribute is a product dimension such as color or size with a fixed value list
type Attribute struct {
	shared.TenantAggregateRoot
	Code   string           `gorm:"type:varchar(50);not null;index"`
	Name   string           `gorm:"type:varchar(100);not null"`
	Values []AttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// AttributeValue is one allowed value of an attribute
type AttributeValue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Value       string    `gorm:"type:varchar(100);not null"`
	SortOrder   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// NewAttribute creates an attribute with the given initial values
func NewAttribute(tenantID uuid.UUID, code, name string, values ...string) (*Attribute, error) {
	if err := validateCode("Attribute code", code, 50); err != nil {
		return nil, err
	}
	if err := validateName("Attribute", name, 100); err != nil {
		return nil, err
	}
	a := &Attribute{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                normalizeCode(code),
		Name:                strings.TrimSpace(name),
	}
	for _, v := range values {
		if _, err := a.AddValue(v); err != nil {
			return nil, err
		}
	}
	a.AddDomainEvent(NewCatalogEvent(EventTypeAttributeCreated, AggregateTypeAttribute, a.ID, tenantID, a.Code, a.Name))
	return a, nil
}

// Rename changes code and name
func (a *Attribute) Rename(code, name string) error {
	if err := validateCode("Attribute code", code, 50); err != nil {
		return err
	}
	if err := validateName("Attribute", name, 100); err != nil {
		return err
	}
	a.Code = normalizeCode(code)
	a.Name = strings.TrimSpace(name)
	a.IncrementVersion()
	return nil
}

// AddValue appends a value; values are unique ignoring case
func (a *Attribute) AddValue(value string) (*AttributeValue, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, shared.NewDomainError("INVALID_VALUE", "Attribute value cannot be empty")
	}
	if len(value) > 100 {
		return nil, shared.NewDomainError("INVALID_VALUE", "Attribute value cannot exceed 100 characters")
	}
	if a.HasValue(value) {
		return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "Attribute %s already has value %q", a.Code, value)
	}
	v := AttributeValue{
		ID:          uuid.New(),
		AttributeID: a.ID,
		Value:       value,
		SortOrder:   len(a.Values),
	}
	a.Values = append(a.Values, v)
	a.IncrementVersion()
	return &a.Values[len(a.Values)-1], nil
}

// RemoveValue deletes a value by id
func (a *Attribute) RemoveValue(valueID uuid.UUID) error {
	for i, v := range a.Values {
		if v.ID == valueID {
			a.Values = append(a.Values[:i], a.Values[i+1:]...)
			for j := range a.Values {
				a.Values[j].SortOrder = j
			}
			a.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// HasValue reports whether value is allowed, ignoring case
func (a *Attribute) HasValue(value string) bool {
	for _, v := range a.Values {
		if strings.EqualFold(v.Value, strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// ValueStrings returns the values in sort order
func (a *Attribute) ValueStrings() []string {
	out := make([]string, len(a.Values))
	for i, v := range a.Values {
		out[i] = v.Value
	}
	return out
}
