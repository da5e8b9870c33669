package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Account DTOs
// =============================================================================

// CreateAccountRequest represents a request to add an account to the chart
type CreateAccountRequest struct {
	Code        string     `json:"code" binding:"required,min=1,max=20"`
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Type        string     `json:"type" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description"`
	CreatedBy   *uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Code        *string    `json:"code" binding:"omitempty,min=1,max=20"`
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
	IsActive    *bool      `json:"is_active"`
}

// AccountListFilter represents filter options for the account list
type AccountListFilter struct {
	Search   string     `form:"search"`
	Type     string     `form:"type"`
	IsActive *bool      `form:"is_active"`
	ParentID *uuid.UUID `form:"parent_id"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	ParentID    *uuid.UUID      `json:"parent_id,omitempty"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToAccountResponse converts a domain Account to AccountResponse
func ToAccountResponse(a *finance.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		TenantID:    a.TenantID,
		Code:        a.Code,
		Name:        a.Name,
		Type:        string(a.Type),
		ParentID:    a.ParentID,
		Description: a.Description,
		IsActive:    a.IsActive,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Version:     a.Version,
	}
}

// ToAccountResponses converts a slice of accounts
func ToAccountResponses(accounts []finance.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

// =============================================================================
// Journal Entry DTOs
// =============================================================================

// JournalLineRequest is one debit or credit of a journal entry request
type JournalLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo" binding:"max=255"`
}

// CreateJournalEntryRequest represents a request to create a draft journal entry
type CreateJournalEntryRequest struct {
	EntryDate   time.Time            `json:"entry_date" binding:"required"`
	Description string               `json:"description"`
	Reference   string               `json:"reference" binding:"max=100"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
	CreatedBy   *uuid.UUID           `json:"-"`
}

// UpdateJournalEntryRequest represents a request to edit a draft journal entry.
// Lines, when present, replace the whole line set.
type UpdateJournalEntryRequest struct {
	EntryDate   *time.Time           `json:"entry_date"`
	Description *string              `json:"description"`
	Reference   *string              `json:"reference" binding:"omitempty,max=100"`
	Lines       []JournalLineRequest `json:"lines" binding:"omitempty,min=2,dive"`
}

// JournalEntryListFilter represents filter options for the journal list
type JournalEntryListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT POSTED VOID"`
	SourceType string     `form:"source_type"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// JournalLineResponse represents a journal line in API responses
type JournalLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// JournalEntryResponse represents a journal entry with its lines
type JournalEntryResponse struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	EntryNumber string                `json:"entry_number"`
	EntryDate   time.Time             `json:"entry_date"`
	Description string                `json:"description"`
	Reference   string                `json:"reference"`
	Status      string                `json:"status"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	PostedAt    *time.Time            `json:"posted_at,omitempty"`
	VoidedAt    *time.Time            `json:"voided_at,omitempty"`
	SourceType  string                `json:"source_type"`
	SourceID    *uuid.UUID            `json:"source_id,omitempty"`
	Lines       []JournalLineResponse `json:"lines"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Version     int                   `json:"version"`
}

// JournalEntryListResponse represents a journal entry header in list responses
type JournalEntryListResponse struct {
	ID          uuid.UUID       `json:"id"`
	EntryNumber string          `json:"entry_number"`
	EntryDate   time.Time       `json:"entry_date"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	SourceType  string          `json:"source_type"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToJournalEntryResponse converts an entry, naming accounts found in accounts
func ToJournalEntryResponse(e *finance.JournalEntry, accounts map[uuid.UUID]finance.Account) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:        l.ID,
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
		if a, ok := accounts[l.AccountID]; ok {
			lines[i].AccountCode = a.Code
			lines[i].AccountName = a.Name
		}
	}
	return JournalEntryResponse{
		ID:          e.ID,
		TenantID:    e.TenantID,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Reference:   e.Reference,
		Status:      string(e.Status),
		TotalDebit:  e.TotalDebit,
		TotalCredit: e.TotalCredit,
		PostedAt:    e.PostedAt,
		VoidedAt:    e.VoidedAt,
		SourceType:  e.SourceType,
		SourceID:    e.SourceID,
		Lines:       lines,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Version:     e.Version,
	}
}

// ToJournalEntryListResponses converts entry headers for list responses
func ToJournalEntryListResponses(entries []finance.JournalEntry) []JournalEntryListResponse {
	responses := make([]JournalEntryListResponse, len(entries))
	for i, e := range entries {
		responses[i] = JournalEntryListResponse{
			ID:          e.ID,
			EntryNumber: e.EntryNumber,
			EntryDate:   e.EntryDate,
			Description: e.Description,
			Status:      string(e.Status),
			TotalDebit:  e.TotalDebit,
			TotalCredit: e.TotalCredit,
			SourceType:  e.SourceType,
			CreatedAt:   e.CreatedAt,
		}
	}
	return responses
}

func toLineInputs(lines []JournalLineRequest) []finance.LineInput {
	inputs := make([]finance.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = finance.LineInput{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return inputs
}
