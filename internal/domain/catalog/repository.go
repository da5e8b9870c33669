package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Category, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// RewritePaths replaces the oldPrefix of descendant paths with newPrefix and shifts their level
	RewritePaths(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string, levelDelta int) error
	Save(ctx context.Context, category *Category) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
	Save(ctx context.Context, product *Product) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// VariationRepository defines persistence for product variations
type VariationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductVariation, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductVariation, error)
	// ExistsBySKU checks variation SKUs, which share the namespace with product SKUs
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
	Save(ctx context.Context, variation *ProductVariation) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByProduct(ctx context.Context, tenantID, productID uuid.UUID) error
}

// AttributeRepository defines persistence for attributes with their values
type AttributeRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error)
	FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]Attribute, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Attribute, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// Save upserts the attribute and replaces its value set
	Save(ctx context.Context, attribute *Attribute) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
