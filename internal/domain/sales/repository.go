package sales

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodTotals summarizes completed sales in a date range
type PeriodTotals struct {
	Count int64
	Total decimal.Decimal
}

// SaleRepository defines persistence for sales
type SaleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Sale, error)
	TotalsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (PeriodTotals, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, sale *Sale) error
}
