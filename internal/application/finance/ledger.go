package finance

import (
	"context"
	"sort"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// PostEntry posts a draft entry and applies its lines to the account balances.
// It must run inside a transaction scope so both writes commit together.
func PostEntry(ctx context.Context, repos uow.Repositories, entry *finance.JournalEntry) error {
	accounts, err := resolveAccounts(ctx, repos.Accounts(), entry.TenantID, entry.AccountIDs(), true)
	if err != nil {
		return err
	}
	if err := entry.Post(); err != nil {
		return err
	}
	if err := repos.JournalEntries().Save(ctx, entry); err != nil {
		return err
	}
	return applyPostings(ctx, repos.Accounts(), entry.TenantID, accounts, entry.Postings(), false)
}

// VoidEntry voids a posted entry and reverses its effect on the account balances.
func VoidEntry(ctx context.Context, repos uow.Repositories, entry *finance.JournalEntry) error {
	accounts, err := resolveAccounts(ctx, repos.Accounts(), entry.TenantID, entry.AccountIDs(), false)
	if err != nil {
		return err
	}
	if err := entry.Void(); err != nil {
		return err
	}
	if err := repos.JournalEntries().Save(ctx, entry); err != nil {
		return err
	}
	return applyPostings(ctx, repos.Accounts(), entry.TenantID, accounts, entry.Postings(), true)
}

// applyPostings updates balances in account id order so concurrent postings
// lock rows in the same sequence.
func applyPostings(
	ctx context.Context,
	repo finance.AccountRepository,
	tenantID uuid.UUID,
	accounts map[uuid.UUID]finance.Account,
	postings map[uuid.UUID]finance.Posting,
	reverse bool,
) error {
	ids := make([]uuid.UUID, 0, len(postings))
	for id := range postings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		p := postings[id]
		if reverse {
			p = p.Reversed()
		}
		delta := finance.BalanceDelta(accounts[id].Type, p.Debit, p.Credit)
		if delta.IsZero() {
			continue
		}
		if err := repo.ApplyBalanceDelta(ctx, tenantID, id, delta); err != nil {
			return err
		}
	}
	return nil
}

// resolveAccounts loads the accounts referenced by a set of lines. Every id must
// belong to the tenant; requireActive also rejects deactivated accounts.
func resolveAccounts(ctx context.Context, repo finance.AccountRepository, tenantID uuid.UUID, ids []uuid.UUID, requireActive bool) (map[uuid.UUID]finance.Account, error) {
	found, err := repo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	accounts := make(map[uuid.UUID]finance.Account, len(found))
	for _, a := range found {
		accounts[a.ID] = a
	}
	for _, id := range ids {
		a, ok := accounts[id]
		if !ok {
			return nil, shared.NewDomainErrorf("INVALID_ACCOUNT", "Account %s does not exist", id)
		}
		if requireActive && !a.IsActive {
			return nil, shared.NewDomainErrorf("INVALID_ACCOUNT", "Account %s is inactive", a.Code)
		}
	}
	return accounts, nil
}
