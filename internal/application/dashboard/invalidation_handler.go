package dashboard

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invalidator drops cached summaries
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// InvalidationHandler drops a tenant's cached summary whenever an event
// changes one of its figures. The next read fetches again.
type InvalidationHandler struct {
	logger *zap.Logger
	target Invalidator
}

// NewInvalidationHandler creates a new InvalidationHandler
func NewInvalidationHandler(logger *zap.Logger, target Invalidator) *InvalidationHandler {
	return &InvalidationHandler{logger: logger, target: target}
}

// EventTypes returns the event types this handler is interested in
func (h *InvalidationHandler) EventTypes() []string {
	return []string{
		finance.EventTypeAccountCreated,
		finance.EventTypeAccountUpdated,
		finance.EventTypeAccountDeleted,
		finance.EventTypeJournalEntryCreated,
		finance.EventTypeJournalEntryUpdated,
		finance.EventTypeJournalEntryDeleted,
		finance.EventTypeJournalEntryPosted,
		finance.EventTypeJournalEntryVoided,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
		partner.EventTypeCustomerCreated,
		partner.EventTypeSupplierCreated,
		partner.EventTypeWarehouseCreated,
		partner.EventTypePartnerDeleted,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeStockTransferred,
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleVoided,
	}
}

// Handle invalidates the summary of the event's tenant
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.target.Invalidate(ctx, event.TenantID())
	h.logger.Debug("dashboard invalidated",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
