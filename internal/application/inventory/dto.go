package inventory

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockFilter narrows the aggregated stock view
type StockFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
}

// AdjustStockRequest changes the quantity of one stock row by a signed delta
type AdjustStockRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariationID *uuid.UUID      `json:"variation_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason" binding:"omitempty,oneof=INITIAL RECEIPT ADJUSTMENT"`
	Reference   string          `json:"reference" binding:"max=100"`
	CreatedBy   *uuid.UUID      `json:"-"`
}

// TransferStockRequest moves a positive quantity between two warehouses
type TransferStockRequest struct {
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" binding:"required,nefield=FromWarehouseID"`
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	VariationID     *uuid.UUID      `json:"variation_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reference       string          `json:"reference" binding:"max=100"`
	CreatedBy       *uuid.UUID      `json:"-"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	VariationID *uuid.UUID `form:"variation_id"`
	SourceID    *uuid.UUID `form:"source_id"`
	Reason      string     `form:"reason" binding:"omitempty,oneof=INITIAL RECEIPT ADJUSTMENT SALE SALE_VOID TRANSFER_IN TRANSFER_OUT"`
	Search      string     `form:"search"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WarehouseQuantityResponse is the share of a product held by one warehouse
type WarehouseQuantityResponse struct {
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	WarehouseCode string          `json:"warehouse_code"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// StockResponse is the stock of a product or variation summed over warehouses
type StockResponse struct {
	ProductID   uuid.UUID                   `json:"product_id"`
	VariationID *uuid.UUID                  `json:"variation_id,omitempty"`
	SKU         string                      `json:"sku"`
	Name        string                      `json:"name"`
	Unit        string                      `json:"unit"`
	MinStock    decimal.Decimal             `json:"min_stock"`
	Total       decimal.Decimal             `json:"total"`
	Warehouses  []WarehouseQuantityResponse `json:"warehouses"`
}

// StockRowResponse is a single warehouse stock row
type StockRowResponse struct {
	ID          uuid.UUID       `json:"id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariationID *uuid.UUID      `json:"variation_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Version     int             `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToStockRowResponse converts a stock row
func ToStockRowResponse(row *inventory.WarehouseStock) StockRowResponse {
	return StockRowResponse{
		ID:          row.ID,
		WarehouseID: row.WarehouseID,
		ProductID:   row.ProductID,
		VariationID: row.VariationID,
		Quantity:    row.Quantity,
		Version:     row.Version,
		UpdatedAt:   row.UpdatedAt,
	}
}

// TransferResponse holds both rows touched by a transfer
type TransferResponse struct {
	TransferID uuid.UUID        `json:"transfer_id"`
	From       StockRowResponse `json:"from"`
	To         StockRowResponse `json:"to"`
}

// LowStockResponse is a product whose total stock is below its minimum
type LowStockResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Quantity  decimal.Decimal `json:"quantity"`
	Shortage  decimal.Decimal `json:"shortage"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariationID  *uuid.UUID      `json:"variation_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reason       string          `json:"reason"`
	Reference    string          `json:"reference,omitempty"`
	SourceID     *uuid.UUID      `json:"source_id,omitempty"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = MovementResponse{
			ID:           m.ID,
			WarehouseID:  m.WarehouseID,
			ProductID:    m.ProductID,
			VariationID:  m.VariationID,
			Quantity:     m.Quantity,
			BalanceAfter: m.BalanceAfter,
			Reason:       string(m.Reason),
			Reference:    m.Reference,
			SourceID:     m.SourceID,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt,
		}
	}
	return responses
}
