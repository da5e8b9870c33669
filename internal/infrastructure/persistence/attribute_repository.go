package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAttributeRepository implements catalog.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

func preloadValues(db *gorm.DB) *gorm.DB {
	return db.Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })
}

// FindByIDForTenant loads an attribute with its values
func (r *GormAttributeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Attribute, error) {
	var attr catalog.Attribute
	if err := r.db.WithContext(ctx).Scopes(preloadValues).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&attr).Error; err != nil {
		return nil, translateError(err)
	}
	return &attr, nil
}

// FindByCodes loads the attributes with the given codes
func (r *GormAttributeRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]catalog.Attribute, error) {
	if len(codes) == 0 {
		return []catalog.Attribute{}, nil
	}
	normalized := make([]string, len(codes))
	for i, c := range codes {
		normalized[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	var attrs []catalog.Attribute
	if err := r.db.WithContext(ctx).Scopes(preloadValues).
		Where("tenant_id = ? AND code IN ?", tenantID, normalized).
		Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// FindAllForTenant lists attributes with their values
func (r *GormAttributeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Attribute, error) {
	var attrs []catalog.Attribute
	err := r.filtered(ctx, tenantID, filter).
		Scopes(preloadValues, pageScope(filter, AttributeSortFields, "code")).
		Find(&attrs).Error
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// CountForTenant counts attributes matching filter
func (r *GormAttributeRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if an attribute code is taken within a tenant
func (r *GormAttributeRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Attribute{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts the attribute and replaces its value set
func (r *GormAttributeRepository) Save(ctx context.Context, attr *catalog.Attribute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(attr).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", attr.ID).Delete(&catalog.AttributeValue{}).Error; err != nil {
			return err
		}
		if len(attr.Values) == 0 {
			return nil
		}
		for i := range attr.Values {
			attr.Values[i].AttributeID = attr.ID
		}
		return tx.Create(&attr.Values).Error
	})
}

// DeleteForTenant deletes an attribute and its values
func (r *GormAttributeRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&catalog.Attribute{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("attribute_id = ?", id).Delete(&catalog.AttributeValue{}).Error
	})
}

func (r *GormAttributeRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&catalog.Attribute{}).
		Where("tenant_id = ?", tenantID).
		Scopes(searchScope(filter.Search, "code", "name"))
}

// Ensure GormAttributeRepository implements AttributeRepository
var _ catalog.AttributeRepository = (*GormAttributeRepository)(nil)
