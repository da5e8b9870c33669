package inventory

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// StockQuery narrows a stock row lookup; zero values mean no restriction
type StockQuery struct {
	WarehouseID *uuid.UUID
	ProductIDs  []uuid.UUID
}

// StockRepository defines persistence for warehouse stock rows
type StockRepository interface {
	// FindRow returns shared.ErrNotFound when the product has never been stocked in the warehouse
	FindRow(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, variationID *uuid.UUID) (*WarehouseStock, error)
	FindRows(ctx context.Context, tenantID uuid.UUID, query StockQuery) ([]WarehouseStock, error)
	SumByProduct(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]ProductTotal, error)
	HasStockInWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (bool, error)
	HasStockForProduct(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
	// Save inserts new rows and updates existing ones with an optimistic version check
	Save(ctx context.Context, row *WarehouseStock) error
}

// MovementRepository defines persistence for stock movements
type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
