package inventory

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseStock is the on-hand quantity of one product (or variation) in one warehouse
type WarehouseStock struct {
	shared.TenantAggregateRoot
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (WarehouseStock) TableName() string {
	return "warehouse_stocks"
}

// NewWarehouseStock creates an empty stock row
func NewWarehouseStock(tenantID, warehouseID, productID uuid.UUID, variationID *uuid.UUID) *WarehouseStock {
	return &WarehouseStock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		ProductID:           productID,
		VariationID:         variationID,
		Quantity:            decimal.Zero,
	}
}

// Apply adds a signed delta; the resulting quantity cannot be negative
func (s *WarehouseStock) Apply(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	next := s.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.NewDomainErrorf("INSUFFICIENT_STOCK",
			"Insufficient stock: available %s, requested %s", s.Quantity.String(), delta.Neg().String())
	}
	s.Quantity = next
	s.IncrementVersion()
	return nil
}

// CanFulfill reports whether quantity can be taken from this row
func (s *WarehouseStock) CanFulfill(quantity decimal.Decimal) bool {
	return s.Quantity.GreaterThanOrEqual(quantity)
}

// MovementReason explains why a stock quantity changed
type MovementReason string

const (
	ReasonInitial     MovementReason = "INITIAL"
	ReasonReceipt     MovementReason = "RECEIPT"
	ReasonAdjustment  MovementReason = "ADJUSTMENT"
	ReasonSale        MovementReason = "SALE"
	ReasonSaleVoid    MovementReason = "SALE_VOID"
	ReasonTransferIn  MovementReason = "TRANSFER_IN"
	ReasonTransferOut MovementReason = "TRANSFER_OUT"
)

// IsValid returns true if the reason is valid
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonInitial, ReasonReceipt, ReasonAdjustment, ReasonSale, ReasonSaleVoid, ReasonTransferIn, ReasonTransferOut:
		return true
	}
	return false
}

// StockMovement is the audit record of a single stock change
type StockMovement struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID  *uuid.UUID      `gorm:"type:uuid"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason       MovementReason  `gorm:"type:varchar(20);not null;index"`
	Reference    string          `gorm:"type:varchar(100)"`
	SourceID     *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records delta applied to row for reason
func NewStockMovement(row *WarehouseStock, delta decimal.Decimal, reason MovementReason, reference string) (*StockMovement, error) {
	if !reason.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_REASON", "Invalid movement reason: %s", reason)
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     row.TenantID,
		WarehouseID:  row.WarehouseID,
		ProductID:    row.ProductID,
		VariationID:  row.VariationID,
		Quantity:     delta,
		BalanceAfter: row.Quantity,
		Reason:       reason,
		Reference:    reference,
	}, nil
}
