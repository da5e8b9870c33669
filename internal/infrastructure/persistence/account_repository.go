package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var accountFilterColumns = map[string]string{
	"type":      "type",
	"is_active": "is_active",
	"parent_id": "parent_id",
}

// GormAccountRepository implements finance.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Account, error) {
	var account finance.Account
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&account).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

// FindByCode finds an account by its code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*finance.Account, error) {
	var account finance.Account
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		First(&account).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

// FindByIDs finds multiple accounts by their IDs
func (r *GormAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]finance.Account, error) {
	if len(ids) == 0 {
		return []finance.Account{}, nil
	}
	var accounts []finance.Account
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindAllForTenant finds all accounts for a tenant
func (r *GormAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Account, error) {
	var accounts []finance.Account
	err := r.filtered(ctx, tenantID, filter).
		Scopes(pageScope(filter, AccountSortFields, "code")).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountForTenant counts accounts for a tenant
func (r *GormAccountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if an account code is taken within a tenant
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.Account{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasChildren checks if other accounts are placed under the account
func (r *GormAccountRepository) HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.Account{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// DeleteForTenant deletes an account within a tenant
func (r *GormAccountRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&finance.Account{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ApplyBalanceDelta adds delta to the balance in a single UPDATE statement
func (r *GormAccountRepository) ApplyBalanceDelta(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&finance.Account{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumBalancesByType totals balances per account type. Types without accounts report zero.
func (r *GormAccountRepository) SumBalancesByType(ctx context.Context, tenantID uuid.UUID) (map[finance.AccountType]decimal.Decimal, error) {
	var rows []struct {
		Type  finance.AccountType
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&finance.Account{}).
		Select("type, COALESCE(SUM(balance), 0) AS total").
		Where("tenant_id = ?", tenantID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[finance.AccountType]decimal.Decimal, len(finance.AllAccountTypes))
	for _, t := range finance.AllAccountTypes {
		out[t] = decimal.Zero
	}
	for _, row := range rows {
		out[row.Type] = row.Total
	}
	return out, nil
}

func (r *GormAccountRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&finance.Account{}).
		Where("tenant_id = ?", tenantID).
		Scopes(
			searchScope(filter.Search, "code", "name"),
			equalityScope(filter.Filters, accountFilterColumns),
		)
}

// Ensure GormAccountRepository implements AccountRepository
var _ finance.AccountRepository = (*GormAccountRepository)(nil)
