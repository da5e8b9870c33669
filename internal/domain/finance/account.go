package finance

import (
	"regexp"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AllAccountTypes lists account types in reporting order
var AllAccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase the balance of this account type
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

func (t AccountType) String() string {
	return string(t)
}

// ParseAccountType parses a case-insensitive account type
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewDomainErrorf("INVALID_ACCOUNT_TYPE", "Invalid account type: %s", s)
	}
	return t, nil
}

var accountCodePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Account is an entry in the chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code        string          `gorm:"type:varchar(20);not null;index"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Type        AccountType     `gorm:"type:varchar(20);not null;index"`
	ParentID    *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:text"`
	IsActive    bool            `gorm:"not null"`
	Balance     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates an active account with a zero balance
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if err := validateAccountCode(code); err != nil {
		return nil, err
	}
	if err := validateAccountName(name); err != nil {
		return nil, err
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_ACCOUNT_TYPE", "Invalid account type: %s", accountType)
	}

	account := &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Type:                accountType,
		IsActive:            true,
		Balance:             decimal.Zero,
	}
	account.AddDomainEvent(NewAccountCreatedEvent(account))
	return account, nil
}

// Update changes the descriptive fields of the account
func (a *Account) Update(name, description string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(name)
	a.Description = description
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountUpdatedEvent(a))
	return nil
}

// ChangeCode changes the account code
func (a *Account) ChangeCode(code string) error {
	if err := validateAccountCode(code); err != nil {
		return err
	}
	a.Code = strings.ToUpper(strings.TrimSpace(code))
	a.IncrementVersion()
	return nil
}

// SetParent places the account under parent, or makes it top level when parent is nil
func (a *Account) SetParent(parent *Account) error {
	if parent == nil {
		a.ParentID = nil
		a.IncrementVersion()
		return nil
	}
	if parent.ID == a.ID {
		return shared.NewDomainError("INVALID_PARENT", "Account cannot be its own parent")
	}
	if parent.TenantID != a.TenantID {
		return shared.NewDomainError("INVALID_PARENT", "Parent account belongs to another tenant")
	}
	if parent.Type != a.Type {
		return shared.NewDomainErrorf("INVALID_PARENT", "Parent account type %s does not match %s", parent.Type, a.Type)
	}
	id := parent.ID
	a.ParentID = &id
	a.IncrementVersion()
	return nil
}

// Activate enables the account for postings
func (a *Account) Activate() {
	if a.IsActive {
		return
	}
	a.IsActive = true
	a.IncrementVersion()
}

// Deactivate disables the account for new postings
func (a *Account) Deactivate() {
	if !a.IsActive {
		return
	}
	a.IsActive = false
	a.IncrementVersion()
}

// BalanceDelta returns how much a debit/credit pair changes this account's balance
func (a *Account) BalanceDelta(debit, credit decimal.Decimal) decimal.Decimal {
	return BalanceDelta(a.Type, debit, credit)
}

// ApplyPosting adds a debit/credit pair to the running balance
func (a *Account) ApplyPosting(debit, credit decimal.Decimal) {
	a.Balance = a.Balance.Add(a.BalanceDelta(debit, credit))
	a.IncrementVersion()
}

// BalanceDelta returns the signed balance change for an account type.
// Debit-normal accounts grow with debits, the rest grow with credits.
func BalanceDelta(accountType AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

func validateAccountCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 20 {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 20 characters")
	}
	if !accountCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Account code can only contain letters, numbers, dots, underscores and hyphens")
	}
	return nil
}

func validateAccountName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 100 characters")
	}
	return nil
}
