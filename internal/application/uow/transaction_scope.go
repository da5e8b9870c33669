// Package uow defines the unit of work shared by services whose writes span
// several aggregates (journal posting, stock transfers, sales).
package uow

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
)

// TransactionScope runs fn inside one database transaction. A non-nil error
// from fn rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories hands out repositories bound to the running transaction.
type Repositories interface {
	Accounts() finance.AccountRepository
	JournalEntries() finance.JournalEntryRepository
	Categories() catalog.CategoryRepository
	Products() catalog.ProductRepository
	Variations() catalog.VariationRepository
	Warehouses() partner.WarehouseRepository
	Stock() inventory.StockRepository
	Movements() inventory.MovementRepository
	Sales() sales.SaleRepository
}

// RepositorySet is a plain Repositories value. Tests use it with
// NoOpTransactionScope to run services against mocks.
type RepositorySet struct {
	AccountRepo   finance.AccountRepository
	EntryRepo     finance.JournalEntryRepository
	CategoryRepo  catalog.CategoryRepository
	ProductRepo   catalog.ProductRepository
	VariationRepo catalog.VariationRepository
	WarehouseRepo partner.WarehouseRepository
	StockRepo     inventory.StockRepository
	MovementRepo  inventory.MovementRepository
	SaleRepo      sales.SaleRepository
}

func (s RepositorySet) Accounts() finance.AccountRepository            { return s.AccountRepo }
func (s RepositorySet) JournalEntries() finance.JournalEntryRepository { return s.EntryRepo }
func (s RepositorySet) Categories() catalog.CategoryRepository         { return s.CategoryRepo }
func (s RepositorySet) Products() catalog.ProductRepository            { return s.ProductRepo }
func (s RepositorySet) Variations() catalog.VariationRepository        { return s.VariationRepo }
func (s RepositorySet) Warehouses() partner.WarehouseRepository        { return s.WarehouseRepo }
func (s RepositorySet) Stock() inventory.StockRepository               { return s.StockRepo }
func (s RepositorySet) Movements() inventory.MovementRepository        { return s.MovementRepo }
func (s RepositorySet) Sales() sales.SaleRepository                    { return s.SaleRepo }

// NoOpTransactionScope calls fn directly with a fixed repository set.
type NoOpTransactionScope struct {
	repos RepositorySet
}

// NewNoOpTransactionScope creates a NoOpTransactionScope.
func NewNoOpTransactionScope(repos RepositorySet) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var (
	_ TransactionScope = (*NoOpTransactionScope)(nil)
	_ Repositories     = RepositorySet{}
)
