package inventory

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LowStockAlertHandler listens to stock decreases and raises an alert when a
// product drops below its minimum stock over all warehouses.
type LowStockAlertHandler struct {
	logger      *zap.Logger
	productRepo catalog.ProductRepository
	stockRepo   inventory.StockRepository
	notifier    StockAlertNotifier
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	TenantID    string `json:"tenant_id"`
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    string `json:"quantity"`
	MinStock    string `json:"min_stock"`
	AlertType   string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewLowStockAlertHandler creates a new handler for stock decrease events
func NewLowStockAlertHandler(logger *zap.Logger, productRepo catalog.ProductRepository, stockRepo inventory.StockRepository) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger:      logger,
		productRepo: productRepo,
		stockRepo:   stockRepo,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in.
// Transfers keep the product total unchanged and are ignored.
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockAdjusted}
}

// Handle processes a StockChangedEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*inventory.StockChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockAdjusted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockAdjusted, event.EventType())
	}
	if !changed.Quantity.IsNegative() {
		return nil
	}

	product, err := h.productRepo.FindByIDForTenant(ctx, event.TenantID(), changed.ProductID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", changed.ProductID, err)
	}
	if !product.MinStock.IsPositive() {
		return nil
	}

	totals, err := h.stockRepo.SumByProduct(ctx, event.TenantID(), []uuid.UUID{product.ID})
	if err != nil {
		return fmt.Errorf("sum stock for product %s: %w", product.ID, err)
	}
	quantity := decimal.Zero
	if len(totals) > 0 {
		quantity = totals[0].Quantity
	}
	if !quantity.LessThan(product.MinStock) {
		return nil
	}

	alertType := "low_stock"
	if !quantity.IsPositive() {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		TenantID:    event.TenantID().String(),
		ProductID:   product.ID.String(),
		SKU:         product.SKU,
		WarehouseID: changed.WarehouseID.String(),
		Quantity:    quantity.String(),
		MinStock:    product.MinStock.String(),
		AlertType:   alertType,
	}

	h.logger.Warn("stock below minimum detected",
		zap.String("tenant_id", alert.TenantID),
		zap.String("product_id", alert.ProductID),
		zap.String("sku", alert.SKU),
		zap.String("quantity", alert.Quantity),
		zap.String("min_stock", alert.MinStock),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure does not fail event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a notifier that writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("sku", alert.SKU),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.String("quantity", alert.Quantity),
		zap.String("min_stock", alert.MinStock),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
