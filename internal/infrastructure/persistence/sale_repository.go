package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var saleFilterColumns = map[string]string{
	"status":         "status",
	"customer_id":    "customer_id",
	"warehouse_id":   "warehouse_id",
	"payment_method": "payment_method",
}

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForTenant loads a sale with its lines
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error; err != nil {
		return nil, translateError(err)
	}
	return &sale, nil
}

// FindAllForTenant lists sale headers. Supported filters: status, customer_id,
// warehouse_id, payment_method, date_from and date_to.
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var list []sales.Sale
	err := r.filtered(ctx, tenantID, filter).
		Scopes(pageScope(filter, SaleSortFields, "sale_date")).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CountForTenant counts sales matching filter
func (r *GormSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecent returns the latest sales by date
func (r *GormSaleRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]sales.Sale, error) {
	var list []sales.Sale
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sale_date DESC, created_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// TotalsBetween counts and sums completed sales dated in [from, to)
func (r *GormSaleRepository) TotalsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (sales.PeriodTotals, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("tenant_id = ? AND status = ? AND sale_date >= ? AND sale_date < ?",
			tenantID, sales.SaleStatusCompleted, from, to).
		Scan(&row).Error; err != nil {
		return sales.PeriodTotals{}, err
	}
	return sales.PeriodTotals{Count: row.Count, Total: row.Total}, nil
}

// CountByCustomer counts the sales of a customer
func (r *GormSaleRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the sale header and replaces its lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(sale).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&sales.SaleLine{}).Error; err != nil {
			return err
		}
		if len(sale.Lines) == 0 {
			return nil
		}
		for i := range sale.Lines {
			sale.Lines[i].SaleID = sale.ID
		}
		return tx.Create(&sale.Lines).Error
	})
}

func (r *GormSaleRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("tenant_id = ?", tenantID).
		Scopes(
			searchScope(filter.Search, "sale_number", "notes"),
			equalityScope(filter.Filters, saleFilterColumns),
		)
	if from, ok := filter.Filters["date_from"]; ok && from != nil {
		query = query.Where("sale_date >= ?", from)
	}
	if to, ok := filter.Filters["date_to"]; ok && to != nil {
		query = query.Where("sale_date <= ?", to)
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
