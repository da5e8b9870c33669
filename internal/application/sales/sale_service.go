package sales

import (
	"context"
	"errors"
	"time"

	financeapp "github.com/erp/backoffice/internal/application/finance"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountCodes names the accounts debited and credited by sale entries
type AccountCodes struct {
	Cash       string
	Receivable string
	Revenue    string
}

// DefaultAccountCodes matches the seeded chart of accounts
var DefaultAccountCodes = AccountCodes{Cash: "1000", Receivable: "1100", Revenue: "4000"}

// SaleService records sales together with their stock and ledger effects
type SaleService struct {
	saleRepo       sales.SaleRepository
	productRepo    catalog.ProductRepository
	variationRepo  catalog.VariationRepository
	customerRepo   partner.CustomerRepository
	warehouseRepo  partner.WarehouseRepository
	txScope        uow.TransactionScope
	accounts       AccountCodes
	eventPublisher shared.EventPublisher
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	variationRepo catalog.VariationRepository,
	customerRepo partner.CustomerRepository,
	warehouseRepo partner.WarehouseRepository,
	txScope uow.TransactionScope,
	accounts AccountCodes,
) *SaleService {
	if accounts.Cash == "" {
		accounts.Cash = DefaultAccountCodes.Cash
	}
	if accounts.Receivable == "" {
		accounts.Receivable = DefaultAccountCodes.Receivable
	}
	if accounts.Revenue == "" {
		accounts.Revenue = DefaultAccountCodes.Revenue
	}
	return &SaleService{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		variationRepo: variationRepo,
		customerRepo:  customerRepo,
		warehouseRepo: warehouseRepo,
		txScope:       txScope,
		accounts:      accounts,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a completed sale. Stock deduction, movements, the sale and
// its posted journal entry are written in one transaction.
func (s *SaleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create",
		"tenant_id", tenantID,
		"lines", len(req.Lines),
	)
	defer span.End()

	sale, err := s.buildSale(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		entry *finance.JournalEntry
		rows  []*inventory.WarehouseStock
	)
	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		rows, err = s.deductStock(ctx, repos, sale, req.CreatedBy)
		if err != nil {
			return err
		}
		entry, err = s.postSaleEntry(ctx, repos, sale)
		if err != nil {
			return err
		}
		if entry != nil {
			sale.LinkJournalEntry(entry.ID)
		}
		return repos.Sales().Save(ctx, sale)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "sale_number", sale.SaleNumber, "total", sale.Total.String())

	sources := []uow.EventSource{sale}
	if entry != nil {
		sources = append(sources, entry)
	}
	for _, row := range rows {
		sources = append(sources, row)
	}
	uow.PublishEvents(ctx, s.eventPublisher, sources...)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sale headers with filtering and pagination
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sale_date"
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.PaymentMethod != "" {
		domainFilter.Filters["payment_method"] = filter.PaymentMethod
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	list, err := s.saleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleListResponses(list), total, nil
}

// Void cancels a completed sale, returns its stock and voids its journal
// entry in one transaction.
func (s *SaleService) Void(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "void",
		"tenant_id", tenantID,
		"sale_id", saleID,
	)
	defer span.End()

	var (
		sale  *sales.Sale
		entry *finance.JournalEntry
		rows  []*inventory.WarehouseStock
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		found, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := found.Void(); err != nil {
			return err
		}

		for _, q := range found.Quantities() {
			row, err := inventoryapp.ApplyStockChange(ctx, repos, inventoryapp.StockChange{
				TenantID:    tenantID,
				WarehouseID: found.WarehouseID,
				ProductID:   q.ProductID,
				VariationID: q.VariationID,
				Delta:       q.Quantity,
				Reason:      inventory.ReasonSaleVoid,
				Reference:   found.SaleNumber,
				SourceID:    &found.ID,
			})
			if err != nil {
				return err
			}
			row.AddDomainEvent(inventory.NewStockAdjustedEvent(row, q.Quantity, inventory.ReasonSaleVoid))
			rows = append(rows, row)
		}

		if found.JournalEntryID != nil {
			entry, err = repos.JournalEntries().FindByIDForTenant(ctx, tenantID, *found.JournalEntryID)
			if err != nil {
				return err
			}
			if err := financeapp.VoidEntry(ctx, repos, entry); err != nil {
				return err
			}
		}

		sale = found
		return repos.Sales().Save(ctx, found)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sources := []uow.EventSource{sale}
	if entry != nil {
		sources = append(sources, entry)
	}
	for _, row := range rows {
		sources = append(sources, row)
	}
	uow.PublishEvents(ctx, s.eventPublisher, sources...)

	response := ToSaleResponse(sale)
	return &response, nil
}

// buildSale resolves warehouse, customer, products and prices into a new sale
func (s *SaleService) buildSale(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*sales.Sale, error) {
	warehouse, err := s.resolveWarehouse(ctx, tenantID, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer does not exist")
			}
			return nil, err
		}
		if !customer.IsActive() {
			return nil, shared.NewDomainErrorf("INVALID_CUSTOMER", "Customer %s is inactive", customer.Code)
		}
	}

	lines, err := s.resolveLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}

	method := sales.PaymentCash
	if req.PaymentMethod != "" {
		method = sales.PaymentMethod(req.PaymentMethod)
	}
	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	sale, err := sales.NewSale(tenantID, warehouse.ID, req.CustomerID, saleDate, method, lines)
	if err != nil {
		return nil, err
	}
	sale.Notes = req.Notes
	if req.CreatedBy != nil {
		sale.SetCreatedBy(*req.CreatedBy)
	}
	return sale, nil
}

func (s *SaleService) resolveWarehouse(ctx context.Context, tenantID uuid.UUID, warehouseID *uuid.UUID) (*partner.Warehouse, error) {
	var (
		warehouse *partner.Warehouse
		err       error
	)
	if warehouseID != nil {
		warehouse, err = s.warehouseRepo.FindByIDForTenant(ctx, tenantID, *warehouseID)
	} else {
		warehouse, err = s.warehouseRepo.FindDefault(ctx, tenantID)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !warehouse.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_WAREHOUSE", "Warehouse %s is inactive", warehouse.Code)
	}
	return warehouse, nil
}

func (s *SaleService) resolveLines(ctx context.Context, tenantID uuid.UUID, reqLines []SaleLineRequest) ([]sales.LineInput, error) {
	if len(reqLines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Sale requires at least one line")
	}

	ids := make([]uuid.UUID, 0, len(reqLines))
	seen := make(map[uuid.UUID]bool)
	for _, l := range reqLines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]sales.LineInput, len(reqLines))
	for i, l := range reqLines {
		product, ok := byID[l.ProductID]
		if !ok {
			return nil, shared.NewDomainErrorf("INVALID_PRODUCT", "Line %d: product does not exist", i+1)
		}
		if !product.IsActive() {
			return nil, shared.NewDomainErrorf("INVALID_PRODUCT", "Line %d: product %s is inactive", i+1, product.SKU)
		}

		in := sales.LineInput{
			ProductID:   product.ID,
			SKU:         product.SKU,
			ProductName: product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   product.SellingPrice,
		}
		if l.VariationID != nil {
			variation, err := s.variationRepo.FindByIDForTenant(ctx, tenantID, *l.VariationID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			if variation == nil || variation.ProductID != product.ID {
				return nil, shared.NewDomainErrorf("INVALID_VARIATION", "Line %d: variation does not belong to product %s", i+1, product.SKU)
			}
			if variation.Status != catalog.StatusActive {
				return nil, shared.NewDomainErrorf("INVALID_VARIATION", "Line %d: variation %s is inactive", i+1, variation.SKU)
			}
			in.VariationID = &variation.ID
			in.SKU = variation.SKU
			in.ProductName = product.Name + " / " + variation.Name
			in.UnitPrice = variation.EffectivePrice(product)
		}
		if l.UnitPrice != nil {
			in.UnitPrice = *l.UnitPrice
		}
		lines[i] = in
	}
	return lines, nil
}

// deductStock checks every line against the sale warehouse before taking any
// stock, then applies the deductions with their movements.
func (s *SaleService) deductStock(ctx context.Context, repos uow.Repositories, sale *sales.Sale, createdBy *uuid.UUID) ([]*inventory.WarehouseStock, error) {
	quantities := sale.Quantities()
	for _, q := range quantities {
		available := decimal.Zero
		row, err := repos.Stock().FindRow(ctx, sale.TenantID, sale.WarehouseID, q.ProductID, q.VariationID)
		switch {
		case err == nil:
			available = row.Quantity
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
		if available.LessThan(q.Quantity) {
			return nil, shared.NewDomainErrorf("INSUFFICIENT_STOCK",
				"Insufficient stock for %s: available %s, requested %s", q.SKU, available.String(), q.Quantity.String())
		}
	}

	rows := make([]*inventory.WarehouseStock, 0, len(quantities))
	for _, q := range quantities {
		delta := q.Quantity.Neg()
		row, err := inventoryapp.ApplyStockChange(ctx, repos, inventoryapp.StockChange{
			TenantID:    sale.TenantID,
			WarehouseID: sale.WarehouseID,
			ProductID:   q.ProductID,
			VariationID: q.VariationID,
			Delta:       delta,
			Reason:      inventory.ReasonSale,
			Reference:   sale.SaleNumber,
			SourceID:    &sale.ID,
			CreatedBy:   createdBy,
		})
		if err != nil {
			return nil, err
		}
		row.AddDomainEvent(inventory.NewStockAdjustedEvent(row, delta, inventory.ReasonSale))
		rows = append(rows, row)
	}
	return rows, nil
}

// postSaleEntry generates and posts the ledger entry of a sale: debit cash
// or receivable, credit revenue. Zero-value sales have no entry.
func (s *SaleService) postSaleEntry(ctx context.Context, repos uow.Repositories, sale *sales.Sale) (*finance.JournalEntry, error) {
	if !sale.Total.IsPositive() {
		return nil, nil
	}

	debitCode := s.accounts.Cash
	if sale.PaymentMethod == sales.PaymentCredit {
		debitCode = s.accounts.Receivable
	}
	debit, err := s.findAccount(ctx, repos, sale.TenantID, debitCode)
	if err != nil {
		return nil, err
	}
	credit, err := s.findAccount(ctx, repos, sale.TenantID, s.accounts.Revenue)
	if err != nil {
		return nil, err
	}

	entry, err := finance.NewJournalEntry(sale.TenantID, sale.SaleDate, "Sale "+sale.SaleNumber, []finance.LineInput{
		{AccountID: debit.ID, Debit: sale.Total, Credit: decimal.Zero, Memo: sale.SaleNumber},
		{AccountID: credit.ID, Debit: decimal.Zero, Credit: sale.Total, Memo: sale.SaleNumber},
	})
	if err != nil {
		return nil, err
	}
	entry.Reference = sale.SaleNumber
	entry.SetSource(finance.SourceSale, sale.ID)

	if err := financeapp.PostEntry(ctx, repos, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *SaleService) findAccount(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, code string) (*finance.Account, error) {
	account, err := repos.Accounts().FindByCode(ctx, tenantID, code)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainErrorf("ACCOUNT_NOT_CONFIGURED", "Account %s used for sales does not exist", code)
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
