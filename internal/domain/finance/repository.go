package finance

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence for the chart of accounts
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Account, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Save(ctx context.Context, account *Account) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// ApplyBalanceDelta adds delta to the stored balance without a read-modify-write cycle
	ApplyBalanceDelta(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error

	// SumBalancesByType totals balances per account type
	SumBalancesByType(ctx context.Context, tenantID uuid.UUID) (map[AccountType]decimal.Decimal, error)
}

// JournalEntryRepository defines persistence for journal entries and their lines
type JournalEntryRepository interface {
	// FindByIDForTenant loads the entry together with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]JournalEntry, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]JournalEntry, error)
	CountLinesByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (int64, error)

	// Save inserts or updates the header and replaces the line set. Updating an
	// entry whose stored version changed since it was loaded fails with
	// shared.ErrConcurrencyConflict.
	Save(ctx context.Context, entry *JournalEntry) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
