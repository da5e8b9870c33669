package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope with a GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction that commits when fn returns nil.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r txRepositories) JournalEntries() finance.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

func (r txRepositories) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

func (r txRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r txRepositories) Variations() catalog.VariationRepository {
	return NewGormVariationRepository(r.tx)
}

func (r txRepositories) Warehouses() partner.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

func (r txRepositories) Stock() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r txRepositories) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r txRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = txRepositories{}
)
