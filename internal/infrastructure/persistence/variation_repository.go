package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVariationRepository implements catalog.VariationRepository using GORM
type GormVariationRepository struct {
	db *gorm.DB
}

// NewGormVariationRepository creates a new GormVariationRepository
func NewGormVariationRepository(db *gorm.DB) *GormVariationRepository {
	return &GormVariationRepository{db: db}
}

// FindByIDForTenant finds a variation by ID within a tenant
func (r *GormVariationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductVariation, error) {
	var v catalog.ProductVariation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&v).Error; err != nil {
		return nil, translateError(err)
	}
	return &v, nil
}

// FindByProduct lists the variations of a product by SKU
func (r *GormVariationRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductVariation, error) {
	var variations []catalog.ProductVariation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("sku ASC").
		Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

// ExistsBySKU checks if a variation SKU is taken within a tenant
func (r *GormVariationRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.ProductVariation{}).
		Where("tenant_id = ? AND sku = ?", tenantID, strings.ToUpper(strings.TrimSpace(sku))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a variation
func (r *GormVariationRepository) Save(ctx context.Context, v *catalog.ProductVariation) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// DeleteForTenant deletes a variation within a tenant
func (r *GormVariationRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductVariation{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByProduct removes every variation of a product
func (r *GormVariationRepository) DeleteByProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.ProductVariation{}, "tenant_id = ? AND product_id = ?", tenantID, productID).Error
}

// Ensure GormVariationRepository implements VariationRepository
var _ catalog.VariationRepository = (*GormVariationRepository)(nil)
