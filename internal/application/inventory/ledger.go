package inventory

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockChange describes one signed change of a stock row
type StockChange struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Delta       decimal.Decimal
	Reason      inventory.MovementReason
	Reference   string
	SourceID    *uuid.UUID
	CreatedBy   *uuid.UUID
}

// ApplyStockChange updates the stock row and records the matching movement.
// It must run inside a transaction scope. Missing rows are created only for
// positive deltas.
func ApplyStockChange(ctx context.Context, repos uow.Repositories, change StockChange) (*inventory.WarehouseStock, error) {
	row, err := repos.Stock().FindRow(ctx, change.TenantID, change.WarehouseID, change.ProductID, change.VariationID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if !change.Delta.IsPositive() {
			return nil, shared.NewDomainErrorf("INSUFFICIENT_STOCK",
				"Insufficient stock: available 0, requested %s", change.Delta.Neg().String())
		}
		row = inventory.NewWarehouseStock(change.TenantID, change.WarehouseID, change.ProductID, change.VariationID)
	case err != nil:
		return nil, err
	}

	if err := row.Apply(change.Delta); err != nil {
		return nil, err
	}
	if err := repos.Stock().Save(ctx, row); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(row, change.Delta, change.Reason, change.Reference)
	if err != nil {
		return nil, err
	}
	movement.SourceID = change.SourceID
	movement.CreatedBy = change.CreatedBy
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, err
	}
	return row, nil
}
