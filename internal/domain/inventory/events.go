package inventory

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeWarehouseStock = "WarehouseStock"

// Event type constants
const (
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeStockTransferred = "StockTransferred"
)

// StockChangedEvent is published after a stock adjustment or transfer
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   *uuid.UUID      `json:"variation_id,omitempty"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ToWarehouseID *uuid.UUID      `json:"to_warehouse_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Reason        MovementReason  `json:"reason"`
}

// NewStockAdjustedEvent creates the event for a signed adjustment of row
func NewStockAdjustedEvent(row *WarehouseStock, delta decimal.Decimal, reason MovementReason) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeWarehouseStock, row.ID, row.TenantID),
		ProductID:       row.ProductID,
		VariationID:     row.VariationID,
		WarehouseID:     row.WarehouseID,
		Quantity:        delta,
		BalanceAfter:    row.Quantity,
		Reason:          reason,
	}
}

// NewStockTransferredEvent creates the event for quantity moved from one row to another
func NewStockTransferredEvent(from, to *WarehouseStock, quantity decimal.Decimal) *StockChangedEvent {
	toWarehouse := to.WarehouseID
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, AggregateTypeWarehouseStock, from.ID, from.TenantID),
		ProductID:       from.ProductID,
		VariationID:     from.VariationID,
		WarehouseID:     from.WarehouseID,
		ToWarehouseID:   &toWarehouse,
		Quantity:        quantity,
		BalanceAfter:    from.Quantity,
		Reason:          ReasonTransferOut,
	}
}
