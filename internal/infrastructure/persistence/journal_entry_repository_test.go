package persistence

import (
	"context"
	"testing"
	"time"

	financeapp "github.com/erp/backoffice/internal/application/finance"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, tenantID uuid.UUID, date time.Time, debitAcc, creditAcc uuid.UUID, amount string) *finance.JournalEntry {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	entry, err := finance.NewJournalEntry(tenantID, date, "test entry", []finance.LineInput{
		{AccountID: debitAcc, Debit: amt},
		{AccountID: creditAcc, Credit: amt},
	})
	require.NoError(t, err)
	return entry
}

func TestGormJournalEntryRepository_SaveReplacesLines(t *testing.T) {
	ctx := context.Background()
	repo := NewGormJournalEntryRepository(newTestDB(t))
	tenantID := uuid.New()
	cash, revenue, bank := uuid.New(), uuid.New(), uuid.New()

	entry := mustEntry(t, tenantID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cash, revenue, "80")
	require.NoError(t, repo.Save(ctx, entry))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, 1, loaded.Lines[0].LineNo)
	assert.Equal(t, cash, loaded.Lines[0].AccountID)
	assertDecimal(t, "80", loaded.TotalDebit)

	require.NoError(t, loaded.ReplaceLines([]finance.LineInput{
		{AccountID: bank, Debit: decimal.NewFromInt(30)},
		{AccountID: cash, Debit: decimal.NewFromInt(20)},
		{AccountID: revenue, Credit: decimal.NewFromInt(50)},
	}))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 3)
	assert.Equal(t, bank, reloaded.Lines[0].AccountID)
	assert.True(t, reloaded.IsBalanced())

	n, err := repo.CountLinesByAccount(ctx, tenantID, cash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.CountLinesByAccount(ctx, uuid.New(), cash)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormJournalEntryRepository_ListAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormJournalEntryRepository(newTestDB(t))
	tenantID := uuid.New()
	a, b := uuid.New(), uuid.New()

	older := mustEntry(t, tenantID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), a, b, "10")
	newer := mustEntry(t, tenantID, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), a, b, "20")
	require.NoError(t, newer.Post())
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	recent, err := repo.FindRecent(ctx, tenantID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, newer.ID, recent[0].ID)

	posted, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]any{"status": string(finance.JournalStatusPosted)},
	})
	require.NoError(t, err)
	require.Len(t, posted, 1)
	assert.Equal(t, newer.ID, posted[0].ID)

	count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormJournalEntryRepository_DeleteForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	tenantID := uuid.New()

	entry := mustEntry(t, tenantID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), uuid.New(), uuid.New(), "5")
	require.NoError(t, repo.Save(ctx, entry))

	assert.ErrorIs(t, repo.DeleteForTenant(ctx, uuid.New(), entry.ID), shared.ErrNotFound)
	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, entry.ID))

	var lines int64
	require.NoError(t, db.Model(&finance.JournalLine{}).Where("journal_entry_id = ?", entry.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	_, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormJournalEntryRepository_SaveRejectsStaleCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewGormJournalEntryRepository(newTestDB(t))
	tenantID := uuid.New()

	entry := mustEntry(t, tenantID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), uuid.New(), uuid.New(), "40")
	require.NoError(t, repo.Save(ctx, entry))
	assert.Equal(t, entry.Version, entry.StoredVersion())

	first, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	require.NoError(t, err)

	require.NoError(t, first.Update(first.EntryDate, "first edit", ""))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Update(second.EntryDate, "second edit", ""))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "first edit", reloaded.Description)
	assert.Equal(t, first.Version, reloaded.Version)

	// Saving again without changes keeps working.
	require.NoError(t, repo.Save(ctx, first))
}

func TestPostEntry_SameDraftPostedTwiceAppliesOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	accounts := NewGormAccountRepository(db)
	entries := NewGormJournalEntryRepository(db)
	tenantID := uuid.New()

	cash := mustAccount(t, tenantID, "1000", "Cash", finance.AccountTypeAsset)
	equity := mustAccount(t, tenantID, "3000", "Owner Equity", finance.AccountTypeEquity)
	require.NoError(t, accounts.Save(ctx, cash))
	require.NoError(t, accounts.Save(ctx, equity))

	draft := mustEntry(t, tenantID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cash.ID, equity.ID, "25")
	require.NoError(t, entries.Save(ctx, draft))

	first, err := entries.FindByIDForTenant(ctx, tenantID, draft.ID)
	require.NoError(t, err)
	second, err := entries.FindByIDForTenant(ctx, tenantID, draft.ID)
	require.NoError(t, err)

	post := func(entry *finance.JournalEntry) error {
		return scope.Execute(ctx, func(repos uow.Repositories) error {
			return financeapp.PostEntry(ctx, repos, entry)
		})
	}
	require.NoError(t, post(first))
	assert.ErrorIs(t, post(second), shared.ErrConcurrencyConflict)

	found, err := accounts.FindByIDForTenant(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assertDecimal(t, "25", found.Balance)

	// Voiding twice from stale copies reverses the balance only once.
	stale, err := entries.FindByIDForTenant(ctx, tenantID, draft.ID)
	require.NoError(t, err)
	again, err := entries.FindByIDForTenant(ctx, tenantID, draft.ID)
	require.NoError(t, err)
	void := func(entry *finance.JournalEntry) error {
		return scope.Execute(ctx, func(repos uow.Repositories) error {
			return financeapp.VoidEntry(ctx, repos, entry)
		})
	}
	require.NoError(t, void(stale))
	assert.ErrorIs(t, void(again), shared.ErrConcurrencyConflict)

	found, err = accounts.FindByIDForTenant(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero(), found.Balance.String())
}
