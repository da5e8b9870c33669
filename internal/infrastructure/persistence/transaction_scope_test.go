package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_CommitsTogether(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	accounts := NewGormAccountRepository(db)
	tenantID := uuid.New()

	cash := mustAccount(t, tenantID, "1001", "Cash", finance.AccountTypeAsset)
	require.NoError(t, accounts.Save(ctx, cash))

	err := scope.Execute(ctx, func(repos uow.Repositories) error {
		entry := mustEntry(t, tenantID, cash.CreatedAt, cash.ID, uuid.New(), "25")
		if err := repos.JournalEntries().Save(ctx, entry); err != nil {
			return err
		}
		return repos.Accounts().ApplyBalanceDelta(ctx, tenantID, cash.ID, decimal.NewFromInt(25))
	})
	require.NoError(t, err)

	found, err := accounts.FindByIDForTenant(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assertDecimal(t, "25", found.Balance)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	accounts := NewGormAccountRepository(db)
	entries := NewGormJournalEntryRepository(db)
	tenantID := uuid.New()

	cash := mustAccount(t, tenantID, "1001", "Cash", finance.AccountTypeAsset)
	require.NoError(t, accounts.Save(ctx, cash))

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos uow.Repositories) error {
		entry := mustEntry(t, tenantID, cash.CreatedAt, cash.ID, uuid.New(), "25")
		if err := repos.JournalEntries().Save(ctx, entry); err != nil {
			return err
		}
		if err := repos.Accounts().ApplyBalanceDelta(ctx, tenantID, cash.ID, decimal.NewFromInt(25)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := accounts.FindByIDForTenant(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero())

	count, err := entries.CountLinesByAccount(ctx, tenantID, cash.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
