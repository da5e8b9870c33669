package sales

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
	EventTypeSaleVoided    = "SaleVoided"
)

// SaleEvent is published when a sale is completed or voided
type SaleEvent struct {
	shared.BaseDomainEvent
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
}

// NewSaleEvent creates a new SaleEvent
func NewSaleEvent(eventType string, s *Sale) *SaleEvent {
	return &SaleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSale, s.ID, s.TenantID),
		SaleNumber:      s.SaleNumber,
		Total:           s.Total,
	}
}
