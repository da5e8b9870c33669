package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var categoryFilterColumns = map[string]string{
	"status":    "status",
	"parent_id": "parent_id",
	"level":     "level",
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&category).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// FindAllForTenant lists categories, by default in tree order
func (r *GormCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.filtered(ctx, tenantID, filter)
	if filter.OrderBy == "" {
		f := filter.Normalize()
		query = query.Order("path ASC").Offset(f.Offset()).Limit(f.PageSize)
	} else {
		query = query.Scopes(pageScope(filter, CategorySortFields, "path"))
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountForTenant counts categories matching filter
func (r *GormCategoryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a category code is taken within a tenant
func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasChildren checks if the category has direct children
func (r *GormCategoryRepository) HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RewritePaths moves every descendant of oldPrefix under newPrefix
func (r *GormCategoryRepository) RewritePaths(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string, levelDelta int) error {
	if oldPrefix == newPrefix && levelDelta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("tenant_id = ? AND path LIKE ?", tenantID, oldPrefix+"/%").
		Updates(map[string]any{
			"path":    gorm.Expr("CAST(? AS TEXT) || SUBSTR(path, ?)", newPrefix, len(oldPrefix)+1),
			"level":   gorm.Expr("level + ?", levelDelta),
			"version": gorm.Expr("version + 1"),
		}).Error
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteForTenant deletes a category within a tenant
func (r *GormCategoryRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCategoryRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("tenant_id = ?", tenantID).
		Scopes(
			searchScope(filter.Search, "code", "name"),
			equalityScope(filter.Filters, categoryFilterColumns),
		)
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
