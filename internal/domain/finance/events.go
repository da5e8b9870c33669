package finance

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeAccount      = "Account"
	AggregateTypeJournalEntry = "JournalEntry"
)

// Event type constants
const (
	EventTypeAccountCreated      = "AccountCreated"
	EventTypeAccountUpdated      = "AccountUpdated"
	EventTypeAccountDeleted      = "AccountDeleted"
	EventTypeJournalEntryCreated = "JournalEntryCreated"
	EventTypeJournalEntryUpdated = "JournalEntryUpdated"
	EventTypeJournalEntryDeleted = "JournalEntryDeleted"
	EventTypeJournalEntryPosted  = "JournalEntryPosted"
	EventTypeJournalEntryVoided  = "JournalEntryVoided"
)

// AccountCreatedEvent is published when an account is added to the chart
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, a.ID, a.TenantID),
		Code:            a.Code,
		Name:            a.Name,
		Type:            a.Type,
	}
}

// AccountUpdatedEvent is published when account details change
type AccountUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewAccountUpdatedEvent creates a new AccountUpdatedEvent
func NewAccountUpdatedEvent(a *Account) *AccountUpdatedEvent {
	return &AccountUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountUpdated, AggregateTypeAccount, a.ID, a.TenantID),
		Code:            a.Code,
		Name:            a.Name,
	}
}

// AccountDeletedEvent is published when an account is removed
type AccountDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewAccountDeletedEvent creates a new AccountDeletedEvent
func NewAccountDeletedEvent(a *Account) *AccountDeletedEvent {
	return &AccountDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountDeleted, AggregateTypeAccount, a.ID, a.TenantID),
		Code:            a.Code,
	}
}

// JournalEntryEvent carries the totals of a journal entry lifecycle change
type JournalEntryEvent struct {
	shared.BaseDomainEvent
	EntryNumber string          `json:"entry_number"`
	Status      JournalStatus   `json:"status"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	AccountIDs  []uuid.UUID     `json:"account_ids"`
}

func newJournalEntryEvent(eventType string, e *JournalEntry) *JournalEntryEvent {
	return &JournalEntryEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeJournalEntry, e.ID, e.TenantID),
		EntryNumber:     e.EntryNumber,
		Status:          e.Status,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		AccountIDs:      e.AccountIDs(),
	}
}

// NewJournalEntryCreatedEvent creates the event for a new draft entry
func NewJournalEntryCreatedEvent(e *JournalEntry) *JournalEntryEvent {
	return newJournalEntryEvent(EventTypeJournalEntryCreated, e)
}

// NewJournalEntryUpdatedEvent creates the event for an edited draft
func NewJournalEntryUpdatedEvent(e *JournalEntry) *JournalEntryEvent {
	return newJournalEntryEvent(EventTypeJournalEntryUpdated, e)
}

// NewJournalEntryDeletedEvent creates the event for a removed draft
func NewJournalEntryDeletedEvent(e *JournalEntry) *JournalEntryEvent {
	return newJournalEntryEvent(EventTypeJournalEntryDeleted, e)
}

// NewJournalEntryPostedEvent creates the event for a posted entry
func NewJournalEntryPostedEvent(e *JournalEntry) *JournalEntryEvent {
	return newJournalEntryEvent(EventTypeJournalEntryPosted, e)
}

// NewJournalEntryVoidedEvent creates the event for a voided entry
func NewJournalEntryVoidedEvent(e *JournalEntry) *JournalEntryEvent {
	return newJournalEntryEvent(EventTypeJournalEntryVoided, e)
}
