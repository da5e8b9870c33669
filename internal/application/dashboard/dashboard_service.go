package dashboard

import (
	"context"
	"time"

	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

// Counts holds the number of records per master data type
type Counts struct {
	Accounts   int64 `json:"accounts"`
	Products   int64 `json:"products"`
	Customers  int64 `json:"customers"`
	Suppliers  int64 `json:"suppliers"`
	Warehouses int64 `json:"warehouses"`
}

// PeriodSales summarizes completed sales in a date range
type PeriodSales struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// RecentEntry is a journal entry line on the dashboard
type RecentEntry struct {
	ID          uuid.UUID       `json:"id"`
	EntryNumber string          `json:"entry_number"`
	EntryDate   time.Time       `json:"entry_date"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
}

// RecentSale is a sale line on the dashboard
type RecentSale struct {
	ID         uuid.UUID       `json:"id"`
	SaleNumber string          `json:"sale_number"`
	SaleDate   time.Time       `json:"sale_date"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
}

// Summary is the per-tenant dashboard payload
type Summary struct {
	Counts         Counts                     `json:"counts"`
	BalancesByType map[string]decimal.Decimal `json:"balances_by_type"`
	Revenue        decimal.Decimal            `json:"revenue"`
	Expense        decimal.Decimal            `json:"expense"`
	NetIncome      decimal.Decimal            `json:"net_income"`
	SalesThisMonth PeriodSales                `json:"sales_this_month"`
	RecentEntries  []RecentEntry              `json:"recent_entries"`
	RecentSales    []RecentSale               `json:"recent_sales"`
	LowStockCount  int                        `json:"low_stock_count"`
	GeneratedAt    time.Time                  `json:"generated_at"`
}

// LowStockLister lists products whose total stock is below their minimum
type LowStockLister interface {
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]inventoryapp.LowStockResponse, error)
}

// Repositories groups the read models the dashboard draws from
type Repositories struct {
	Accounts   finance.AccountRepository
	Entries    finance.JournalEntryRepository
	Products   catalog.ProductRepository
	Customers  partner.CustomerRepository
	Suppliers  partner.SupplierRepository
	Warehouses partner.WarehouseRepository
	Sales      sales.SaleRepository
}

// DashboardService serves tenant summaries through a cache group. Each
// tenant gets its own cell; writes elsewhere invalidate it via events.
type DashboardService struct {
	repos    Repositories
	lowStock LowStockLister
	group    *cache.Group[uuid.UUID, Summary]
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService. Cell options apply to
// every tenant cell.
func NewDashboardService(repos Repositories, lowStock LowStockLister, opts ...cache.CellOption) *DashboardService {
	s := &DashboardService{
		repos:    repos,
		lowStock: lowStock,
		now:      time.Now,
	}
	opts = append([]cache.CellOption{cache.WithName("dashboard")}, opts...)
	s.group = cache.NewGroup(s.load, opts...)
	return s
}

// Get returns the tenant summary, from cache when fresh
func (s *DashboardService) Get(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	summary, err := s.group.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Refresh discards the cached summary and loads a new one
func (s *DashboardService) Refresh(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	summary, err := s.group.Refresh(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Invalidate drops the cached summary of a tenant
func (s *DashboardService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	s.group.Invalidate(ctx, tenantID)
}

func (s *DashboardService) load(ctx context.Context, tenantID uuid.UUID) (Summary, error) {
	summary := Summary{GeneratedAt: s.now()}
	all := shared.Filter{}

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context, uuid.UUID, shared.Filter) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx, tenantID, all)
			*dst = n
			return err
		})
	}
	count(&summary.Counts.Accounts, s.repos.Accounts.CountForTenant)
	count(&summary.Counts.Products, s.repos.Products.CountForTenant)
	count(&summary.Counts.Customers, s.repos.Customers.CountForTenant)
	count(&summary.Counts.Suppliers, s.repos.Suppliers.CountForTenant)
	count(&summary.Counts.Warehouses, s.repos.Warehouses.CountForTenant)

	g.Go(func() error {
		balances, err := s.repos.Accounts.SumBalancesByType(ctx, tenantID)
		if err != nil {
			return err
		}
		summary.BalancesByType = make(map[string]decimal.Decimal, len(finance.AllAccountTypes))
		for _, t := range finance.AllAccountTypes {
			summary.BalancesByType[t.String()] = balances[t]
		}
		summary.Revenue = balances[finance.AccountTypeRevenue]
		summary.Expense = balances[finance.AccountTypeExpense]
		summary.NetIncome = summary.Revenue.Sub(summary.Expense)
		return nil
	})

	g.Go(func() error {
		from, to := monthBounds(summary.GeneratedAt)
		totals, err := s.repos.Sales.TotalsBetween(ctx, tenantID, from, to)
		if err != nil {
			return err
		}
		summary.SalesThisMonth = PeriodSales{From: from, To: to, Count: totals.Count, Total: totals.Total}
		return nil
	})

	g.Go(func() error {
		entries, err := s.repos.Entries.FindRecent(ctx, tenantID, recentLimit)
		if err != nil {
			return err
		}
		summary.RecentEntries = make([]RecentEntry, len(entries))
		for i, e := range entries {
			summary.RecentEntries[i] = RecentEntry{
				ID:          e.ID,
				EntryNumber: e.EntryNumber,
				EntryDate:   e.EntryDate,
				Description: e.Description,
				Status:      e.Status.String(),
				Total:       e.TotalDebit,
			}
		}
		return nil
	})

	g.Go(func() error {
		list, err := s.repos.Sales.FindRecent(ctx, tenantID, recentLimit)
		if err != nil {
			return err
		}
		summary.RecentSales = make([]RecentSale, len(list))
		for i, sale := range list {
			summary.RecentSales[i] = RecentSale{
				ID:         sale.ID,
				SaleNumber: sale.SaleNumber,
				SaleDate:   sale.SaleDate,
				Status:     string(sale.Status),
				Total:      sale.Total,
			}
		}
		return nil
	})

	g.Go(func() error {
		low, err := s.lowStock.LowStock(ctx, tenantID)
		summary.LowStockCount = len(low)
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// monthBounds returns the first instant of t's month and of the next month
func monthBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}
