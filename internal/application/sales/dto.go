package sales

import (
	"time"

	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineRequest is one product to sell. UnitPrice defaults to the current
// selling price of the product or variation.
type SaleLineRequest struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	VariationID *uuid.UUID       `json:"variation_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest represents a request to record a sale. A missing
// warehouse means the tenant's default warehouse.
type CreateSaleRequest struct {
	WarehouseID   *uuid.UUID        `json:"warehouse_id"`
	CustomerID    *uuid.UUID        `json:"customer_id"`
	SaleDate      *time.Time        `json:"sale_date"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,oneof=CASH CREDIT"`
	Notes         string            `json:"notes" binding:"max=1000"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	CreatedBy     *uuid.UUID        `json:"-"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status" binding:"omitempty,oneof=COMPLETED VOID"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	WarehouseID   *uuid.UUID `form:"warehouse_id"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=CASH CREDIT"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	LineNo      int             `json:"line_no"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariationID *uuid.UUID      `json:"variation_id,omitempty"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	TenantID       uuid.UUID          `json:"tenant_id"`
	SaleNumber     string             `json:"sale_number"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	WarehouseID    uuid.UUID          `json:"warehouse_id"`
	SaleDate       time.Time          `json:"sale_date"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	Total          decimal.Decimal    `json:"total"`
	JournalEntryID *uuid.UUID         `json:"journal_entry_id,omitempty"`
	Notes          string             `json:"notes"`
	VoidedAt       *time.Time         `json:"voided_at,omitempty"`
	Lines          []SaleLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Version        int                `json:"version"`
}

// ToSaleResponse converts a sale with its lines
func ToSaleResponse(s *sales.Sale) SaleResponse {
	resp := toSaleHeader(s)
	resp.Lines = make([]SaleLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		resp.Lines[i] = SaleLineResponse{
			LineNo:      l.LineNo,
			ProductID:   l.ProductID,
			VariationID: l.VariationID,
			SKU:         l.SKU,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		}
	}
	return resp
}

// ToSaleListResponses converts sale headers for list views
func ToSaleListResponses(list []sales.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(list))
	for i := range list {
		responses[i] = toSaleHeader(&list[i])
	}
	return responses
}

func toSaleHeader(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:             s.ID,
		TenantID:       s.TenantID,
		SaleNumber:     s.SaleNumber,
		CustomerID:     s.CustomerID,
		WarehouseID:    s.WarehouseID,
		SaleDate:       s.SaleDate,
		PaymentMethod:  string(s.PaymentMethod),
		Status:         string(s.Status),
		Total:          s.Total,
		JournalEntryID: s.JournalEntryID,
		Notes:          s.Notes,
		VoidedAt:       s.VoidedAt,
		CreatedAt:      s.CreatedAt,
		Version:        s.Version,
	}
}
