package sales

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoid      SaleStatus = "VOID"
)

// PaymentMethod decides which account the sale is debited to
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCredit PaymentMethod = "CREDIT"
)

// IsValid returns true if the payment method is valid
func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentCredit
}

// Sale is a completed sale of goods from one warehouse
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber     string          `gorm:"type:varchar(40);not null;index"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleDate       time.Time       `gorm:"not null;index"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(10);not null"`
	Status         SaleStatus      `gorm:"type:varchar(10);not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	JournalEntryID *uuid.UUID      `gorm:"type:uuid"`
	Notes          string          `gorm:"type:text"`
	VoidedAt       *time.Time
	Lines          []SaleLine `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleLine is one product sold
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID *uuid.UUID      `gorm:"type:uuid"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// LineInput describes a product to sell
type LineInput struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	SKU         string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewSale creates a completed sale. Stock and ledger effects are applied by the caller.
func NewSale(tenantID, warehouseID uuid.UUID, customerID *uuid.UUID, saleDate time.Time, method PaymentMethod, lines []LineInput) (*Sale, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_PAYMENT_METHOD", "Invalid payment method: %s", method)
	}
	if method == PaymentCredit && customerID == nil {
		return nil, shared.NewDomainError("CUSTOMER_REQUIRED", "Credit sales require a customer")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Sale requires at least one line")
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		WarehouseID:         warehouseID,
		SaleDate:            saleDate,
		PaymentMethod:       method,
		Status:              SaleStatusCompleted,
		Total:               decimal.Zero,
	}
	sale.SaleNumber = "SO-" + saleDate.Format("20060102") + "-" + strings.ToUpper(sale.ID.String()[:8])

	for i, in := range lines {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewDomainErrorf("INVALID_PRODUCT", "Line %d: product is required", i+1)
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewDomainErrorf("INVALID_QUANTITY", "Line %d: quantity must be positive", i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewDomainErrorf("INVALID_PRICE", "Line %d: unit price cannot be negative", i+1)
		}
		amount := in.Quantity.Mul(in.UnitPrice).Round(4)
		sale.Lines = append(sale.Lines, SaleLine{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			LineNo:      i + 1,
			ProductID:   in.ProductID,
			VariationID: in.VariationID,
			SKU:         in.SKU,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Amount:      amount,
		})
		sale.Total = sale.Total.Add(amount)
	}

	sale.AddDomainEvent(NewSaleEvent(EventTypeSaleCompleted, sale))
	return sale, nil
}

// LinkJournalEntry records the ledger entry generated for the sale
func (s *Sale) LinkJournalEntry(entryID uuid.UUID) {
	s.JournalEntryID = &entryID
}

// Void cancels a completed sale
func (s *Sale) Void() error {
	if s.Status != SaleStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed sales can be voided")
	}
	now := time.Now()
	s.Status = SaleStatusVoid
	s.VoidedAt = &now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleEvent(EventTypeSaleVoided, s))
	return nil
}

// Quantities sums line quantities per product and variation
func (s *Sale) Quantities() []LineInput {
	type key struct{ p, v uuid.UUID }
	idx := map[key]int{}
	var out []LineInput
	for _, l := range s.Lines {
		k := key{p: l.ProductID}
		if l.VariationID != nil {
			k.v = *l.VariationID
		}
		if i, ok := idx[k]; ok {
			out[i].Quantity = out[i].Quantity.Add(l.Quantity)
			continue
		}
		idx[k] = len(out)
		out = append(out, LineInput{ProductID: l.ProductID, VariationID: l.VariationID, SKU: l.SKU, ProductName: l.ProductName, Quantity: l.Quantity})
	}
	return out
}
