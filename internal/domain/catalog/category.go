package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxCategoryDepth is the maximum depth of the category tree
const MaxCategoryDepth = 5

// Category groups products; categories form a tree with a materialized path
type Category struct {
	shared.TenantAggregateRoot
	Code        string     `gorm:"type:varchar(50);not null;index"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Path        string     `gorm:"type:varchar(500);not null;index"`
	Level       int        `gorm:"not null;default:0"`
	SortOrder   int        `gorm:"not null;default:0"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category, under parent when it is not nil
func NewCategory(tenantID uuid.UUID, code, name string, parent *Category) (*Category, error) {
	if err := validateCode("Category code", code, 50); err != nil {
		return nil, err
	}
	if err := validateName("Category", name, 100); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                normalizeCode(code),
		Name:                strings.TrimSpace(name),
		Status:              StatusActive,
	}
	category.Path = category.ID.String()
	if parent != nil {
		if err := category.attach(parent); err != nil {
			return nil, err
		}
	}

	category.AddDomainEvent(NewCatalogEvent(EventTypeCategoryCreated, AggregateTypeCategory, category.ID, tenantID, category.Code, category.Name))
	return category, nil
}

// Update changes the descriptive fields of the category
func (c *Category) Update(code, name, description string, sortOrder int) error {
	if err := validateCode("Category code", code, 50); err != nil {
		return err
	}
	if err := validateName("Category", name, 100); err != nil {
		return err
	}
	c.Code = normalizeCode(code)
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.SortOrder = sortOrder
	c.IncrementVersion()
	c.AddDomainEvent(NewCatalogEvent(EventTypeCategoryUpdated, AggregateTypeCategory, c.ID, c.TenantID, c.Code, c.Name))
	return nil
}

// MoveTo re-parents the category. Callers must rewrite descendant paths with
// the returned old path prefix.
func (c *Category) MoveTo(parent *Category) (oldPath string, err error) {
	oldPath = c.Path
	if parent == nil {
		c.ParentID = nil
		c.Level = 0
		c.Path = c.ID.String()
		c.IncrementVersion()
		return oldPath, nil
	}
	if parent.ID == c.ID || c.IsAncestorOf(parent) {
		return oldPath, shared.NewDomainError("INVALID_PARENT", "Category cannot be moved under itself or a descendant")
	}
	if err := c.attach(parent); err != nil {
		return oldPath, err
	}
	c.IncrementVersion()
	return oldPath, nil
}

func (c *Category) attach(parent *Category) error {
	if parent.TenantID != c.TenantID {
		return shared.NewDomainError("INVALID_PARENT", "Parent category belongs to another tenant")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return shared.NewDomainErrorf("MAX_DEPTH_EXCEEDED", "Category depth cannot exceed %d levels", MaxCategoryDepth)
	}
	id := parent.ID
	c.ParentID = &id
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.ID.String()
	return nil
}

// Activate activates the category
func (c *Category) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}
	c.Status = StatusActive
	c.IncrementVersion()
	return nil
}

// Deactivate deactivates the category
func (c *Category) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.Status = StatusInactive
	c.IncrementVersion()
	return nil
}

func (c *Category) IsActive() bool { return c.Status == StatusActive }
func (c *Category) IsRoot() bool   { return c.ParentID == nil }

// AncestorIDs returns the ids on the path from the root down to the parent
func (c *Category) AncestorIDs() []uuid.UUID {
	parts := strings.Split(c.Path, "/")
	if len(parts) <= 1 {
		return nil
	}
	ancestors := make([]uuid.UUID, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		if id, err := uuid.Parse(p); err == nil {
			ancestors = append(ancestors, id)
		}
	}
	return ancestors
}

// IsAncestorOf returns true if this category is an ancestor of other
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}
