package inventory

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productPageSize = 100

// StockService handles warehouse stock queries and manual stock changes
type StockService struct {
	productRepo    catalog.ProductRepository
	variationRepo  catalog.VariationRepository
	warehouseRepo  partner.WarehouseRepository
	stockRepo      inventory.StockRepository
	movementRepo   inventory.MovementRepository
	txScope        uow.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo catalog.ProductRepository,
	variationRepo catalog.VariationRepository,
	warehouseRepo partner.WarehouseRepository,
	stockRepo inventory.StockRepository,
	movementRepo inventory.MovementRepository,
	txScope uow.TransactionScope,
) *StockService {
	return &StockService{
		productRepo:   productRepo,
		variationRepo: variationRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		txScope:       txScope,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Stock returns stock aggregated per product and variation with the
// per-warehouse breakdown.
func (s *StockService) Stock(ctx context.Context, tenantID uuid.UUID, filter StockFilter) ([]StockResponse, error) {
	query := inventory.StockQuery{WarehouseID: filter.WarehouseID}
	if filter.ProductID != nil {
		query.ProductIDs = []uuid.UUID{*filter.ProductID}
	}

	rows, err := s.stockRepo.FindRows(ctx, tenantID, query)
	if err != nil {
		return nil, err
	}
	aggregated := inventory.Aggregate(rows)
	if len(aggregated) == 0 {
		return []StockResponse{}, nil
	}

	productIDs := make([]uuid.UUID, 0, len(aggregated))
	warehouseIDs := make([]uuid.UUID, 0)
	seenProduct := make(map[uuid.UUID]bool)
	seenWarehouse := make(map[uuid.UUID]bool)
	for _, ps := range aggregated {
		if !seenProduct[ps.ProductID] {
			seenProduct[ps.ProductID] = true
			productIDs = append(productIDs, ps.ProductID)
		}
		for _, wq := range ps.Warehouses {
			if !seenWarehouse[wq.WarehouseID] {
				seenWarehouse[wq.WarehouseID] = true
				warehouseIDs = append(warehouseIDs, wq.WarehouseID)
			}
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	warehouses, err := s.warehouseRepo.FindByIDs(ctx, tenantID, warehouseIDs)
	if err != nil {
		return nil, err
	}
	warehousesByID := make(map[uuid.UUID]partner.Warehouse, len(warehouses))
	for _, w := range warehouses {
		warehousesByID[w.ID] = w
	}

	responses := make([]StockResponse, len(aggregated))
	for i, ps := range aggregated {
		product := productsByID[ps.ProductID]
		resp := StockResponse{
			ProductID:   ps.ProductID,
			VariationID: ps.VariationID,
			SKU:         product.SKU,
			Name:        product.Name,
			Unit:        product.Unit,
			MinStock:    product.MinStock,
			Total:       ps.Total,
			Warehouses:  make([]WarehouseQuantityResponse, len(ps.Warehouses)),
		}
		for j, wq := range ps.Warehouses {
			warehouse := warehousesByID[wq.WarehouseID]
			resp.Warehouses[j] = WarehouseQuantityResponse{
				WarehouseID:   wq.WarehouseID,
				WarehouseCode: warehouse.Code,
				WarehouseName: warehouse.Name,
				Quantity:      wq.Quantity,
			}
		}
		responses[i] = resp
	}
	return responses, nil
}

// LowStock lists active products whose stock over all warehouses is below
// their minimum. Products without a minimum are never low.
func (s *StockService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]LowStockResponse, error) {
	tracked, err := s.trackedProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(tracked) == 0 {
		return []LowStockResponse{}, nil
	}

	ids := make([]uuid.UUID, len(tracked))
	for i, p := range tracked {
		ids[i] = p.ID
	}
	totals, err := s.stockRepo.SumByProduct(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	onHand := make(map[uuid.UUID]decimal.Decimal, len(totals))
	for _, t := range totals {
		onHand[t.ProductID] = t.Quantity
	}

	low := make([]LowStockResponse, 0)
	for _, p := range tracked {
		qty := onHand[p.ID]
		if qty.LessThan(p.MinStock) {
			low = append(low, LowStockResponse{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Unit:      p.Unit,
				MinStock:  p.MinStock,
				Quantity:  qty,
				Shortage:  p.MinStock.Sub(qty),
			})
		}
	}
	return low, nil
}

func (s *StockService) trackedProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var tracked []catalog.Product
	for page := 1; ; page++ {
		batch, err := s.productRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Page:     page,
			PageSize: productPageSize,
			OrderBy:  "sku",
			OrderDir: "asc",
			Filters:  map[string]any{"status": string(catalog.StatusActive)},
		})
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			if p.MinStock.IsPositive() {
				tracked = append(tracked, p)
			}
		}
		if len(batch) < productPageSize {
			return tracked, nil
		}
	}
}

// Adjust applies a signed quantity change to one warehouse row and records
// the movement in the same transaction.
func (s *StockService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*StockRowResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust",
		"tenant_id", tenantID,
		"warehouse_id", req.WarehouseID,
		"product_id", req.ProductID,
	)
	defer span.End()

	reason := inventory.ReasonAdjustment
	if req.Reason != "" {
		reason = inventory.MovementReason(strings.ToUpper(req.Reason))
	}
	if !isManualReason(reason) {
		err := shared.NewDomainErrorf("INVALID_REASON", "Reason %s cannot be used for manual adjustments", reason)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Quantity.IsZero() {
		err := shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.checkTarget(ctx, tenantID, req.WarehouseID, req.ProductID, req.VariationID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var row *inventory.WarehouseStock
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		row, err = ApplyStockChange(ctx, repos, StockChange{
			TenantID:    tenantID,
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Delta:       req.Quantity,
			Reason:      reason,
			Reference:   req.Reference,
			CreatedBy:   req.CreatedBy,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "balance_after", row.Quantity.String())

	row.AddDomainEvent(inventory.NewStockAdjustedEvent(row, req.Quantity, reason))
	uow.PublishEvents(ctx, s.eventPublisher, row)

	response := ToStockRowResponse(row)
	return &response, nil
}

// Transfer moves stock from one warehouse to another. Both rows and both
// movements are written in one transaction.
func (s *StockService) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferStockRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "transfer",
		"tenant_id", tenantID,
		"from_warehouse_id", req.FromWarehouseID,
		"to_warehouse_id", req.ToWarehouseID,
		"product_id", req.ProductID,
	)
	defer span.End()

	if req.FromWarehouseID == req.ToWarehouseID {
		err := shared.NewDomainError("INVALID_TRANSFER", "Source and destination warehouse must differ")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.Quantity.IsPositive() {
		err := shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := s.activeWarehouse(ctx, tenantID, req.FromWarehouseID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.checkTarget(ctx, tenantID, req.ToWarehouseID, req.ProductID, req.VariationID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	transferID := uuid.New()
	var from, to *inventory.WarehouseStock
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		from, err = ApplyStockChange(ctx, repos, StockChange{
			TenantID:    tenantID,
			WarehouseID: req.FromWarehouseID,
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Delta:       req.Quantity.Neg(),
			Reason:      inventory.ReasonTransferOut,
			Reference:   req.Reference,
			SourceID:    &transferID,
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return err
		}
		to, err = ApplyStockChange(ctx, repos, StockChange{
			TenantID:    tenantID,
			WarehouseID: req.ToWarehouseID,
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Delta:       req.Quantity,
			Reason:      inventory.ReasonTransferIn,
			Reference:   req.Reference,
			SourceID:    &transferID,
			CreatedBy:   req.CreatedBy,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	from.AddDomainEvent(inventory.NewStockTransferredEvent(from, to, req.Quantity))
	uow.PublishEvents(ctx, s.eventPublisher, from)

	return &TransferResponse{
		TransferID: transferID,
		From:       ToStockRowResponse(from),
		To:         ToStockRowResponse(to),
	}, nil
}

// Movements lists stock movements, newest first by default
func (s *StockService) Movements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.VariationID != nil {
		domainFilter.Filters["variation_id"] = *filter.VariationID
	}
	if filter.SourceID != nil {
		domainFilter.Filters["source_id"] = *filter.SourceID
	}
	if filter.Reason != "" {
		domainFilter.Filters["reason"] = filter.Reason
	}

	movements, err := s.movementRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// checkTarget verifies that stock can be booked for the product (or one of
// its variations) in the warehouse.
func (s *StockService) checkTarget(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, variationID *uuid.UUID) error {
	if _, err := s.activeWarehouse(ctx, tenantID, warehouseID); err != nil {
		return err
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}
	if variationID == nil {
		return nil
	}
	variation, err := s.variationRepo.FindByIDForTenant(ctx, tenantID, *variationID)
	if err != nil {
		return err
	}
	if variation.ProductID != productID {
		return shared.NewDomainError("INVALID_VARIATION", "Variation does not belong to the product")
	}
	return nil
}

func (s *StockService) activeWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (*partner.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !warehouse.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_WAREHOUSE", "Warehouse %s is inactive", warehouse.Code)
	}
	return warehouse, nil
}

func isManualReason(reason inventory.MovementReason) bool {
	switch reason {
	case inventory.ReasonInitial, inventory.ReasonReceipt, inventory.ReasonAdjustment:
		return true
	}
	return false
}
