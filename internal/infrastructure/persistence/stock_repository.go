package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var movementFilterColumns = map[string]string{
	"warehouse_id": "warehouse_id",
	"product_id":   "product_id",
	"variation_id": "variation_id",
	"reason":       "reason",
	"source_id":    "source_id",
}

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindRow finds the stock row of a product, or one of its variations, in a warehouse
func (r *GormStockRepository) FindRow(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.WarehouseStock, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID)
	if variationID == nil {
		query = query.Where("variation_id IS NULL")
	} else {
		query = query.Where("variation_id = ?", *variationID)
	}

	var row inventory.WarehouseStock
	if err := query.First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return &row, nil
}

// FindRows lists stock rows narrowed by query, ordered by product and warehouse
func (r *GormStockRepository) FindRows(ctx context.Context, tenantID uuid.UUID, q inventory.StockQuery) ([]inventory.WarehouseStock, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if q.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *q.WarehouseID)
	}
	if len(q.ProductIDs) > 0 {
		query = query.Where("product_id IN ?", q.ProductIDs)
	}

	var rows []inventory.WarehouseStock
	if err := query.Order("product_id ASC, warehouse_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByProduct totals quantities per product over all warehouses and variations.
// An empty productIDs sums every product of the tenant.
func (r *GormStockRepository) SumByProduct(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]inventory.ProductTotal, error) {
	query := r.db.WithContext(ctx).Model(&inventory.WarehouseStock{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS quantity").
		Where("tenant_id = ?", tenantID)
	if len(productIDs) > 0 {
		query = query.Where("product_id IN ?", productIDs)
	}

	var rows []struct {
		ProductID uuid.UUID
		Quantity  decimal.Decimal
	}
	if err := query.Group("product_id").Order("product_id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]inventory.ProductTotal, len(rows))
	for i, row := range rows {
		totals[i] = inventory.ProductTotal{ProductID: row.ProductID, Quantity: row.Quantity}
	}
	return totals, nil
}

// HasStockInWarehouse reports whether any positive quantity is held in the warehouse
func (r *GormStockRepository) HasStockInWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (bool, error) {
	return r.exists(ctx, "tenant_id = ? AND warehouse_id = ? AND quantity > 0", tenantID, warehouseID)
}

// HasStockForProduct reports whether the product has a positive quantity anywhere
func (r *GormStockRepository) HasStockForProduct(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	return r.exists(ctx, "tenant_id = ? AND product_id = ? AND quantity > 0", tenantID, productID)
}

func (r *GormStockRepository) exists(ctx context.Context, where string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.WarehouseStock{}).
		Where(where, args...).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save writes row with an optimistic version check. The row is expected to carry
// the version it was loaded with plus one, as WarehouseStock.Apply leaves it.
func (r *GormStockRepository) Save(ctx context.Context, row *inventory.WarehouseStock) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&inventory.WarehouseStock{}).
		Where("id = ? AND version = ?", row.ID, row.Version-1).
		Updates(map[string]any{
			"quantity":   row.Quantity,
			"version":    row.Version,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&inventory.WarehouseStock{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return db.Create(row).Error
}

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create records a movement
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindAllForTenant lists movements, newest first by default
func (r *GormMovementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	err := r.filtered(ctx, tenantID, filter).
		Scopes(pageScope(filter, MovementSortFields, "created_at")).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// CountForTenant counts movements matching filter
func (r *GormMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMovementRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("tenant_id = ?", tenantID).
		Scopes(
			searchScope(filter.Search, "reference"),
			equalityScope(filter.Filters, movementFilterColumns),
		)
}

var (
	_ inventory.StockRepository    = (*GormStockRepository)(nil)
	_ inventory.MovementRepository = (*GormMovementRepository)(nil)
)
