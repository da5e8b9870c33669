package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalStatus is the lifecycle state of a journal entry
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
	JournalStatusVoid   JournalStatus = "VOID"
)

// IsValid checks if the status is valid
func (s JournalStatus) IsValid() bool {
	switch s {
	case JournalStatusDraft, JournalStatusPosted, JournalStatusVoid:
		return true
	}
	return false
}

func (s JournalStatus) String() string {
	return string(s)
}

// Journal entry source types
const (
	SourceManual = "manual"
	SourceSale   = "sale"
)

// JournalEntry is a double-entry record of balanced lines
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryNumber string          `gorm:"type:varchar(40);not null;index"`
	EntryDate   time.Time       `gorm:"type:date;not null;index"`
	Description string          `gorm:"type:text"`
	Reference   string          `gorm:"type:varchar(100)"`
	Status      JournalStatus   `gorm:"type:varchar(10);not null;index"`
	TotalDebit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCredit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PostedAt    *time.Time
	VoidedAt    *time.Time
	SourceType  string        `gorm:"type:varchar(20);not null"`
	SourceID    *uuid.UUID    `gorm:"type:uuid;index"`
	Lines       []JournalLine `gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE"`

	storedVersion int
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalLine is a single debit or credit of a journal entry
type JournalLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo         int             `gorm:"not null"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Memo           string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (JournalLine) TableName() string {
	return "journal_lines"
}

// NewEntryNumber derives a human readable entry number from date and id
func NewEntryNumber(prefix string, date time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// NewJournalEntry creates a draft journal entry from validated lines
func NewJournalEntry(tenantID uuid.UUID, entryDate time.Time, description string, lines []LineInput) (*JournalEntry, error) {
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Entry date is required")
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	entry := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryDate:           entryDate,
		Description:         strings.TrimSpace(description),
		Status:              JournalStatusDraft,
		SourceType:          SourceManual,
	}
	entry.EntryNumber = NewEntryNumber("JE", entryDate, entry.ID)
	entry.setLines(lines)
	entry.AddDomainEvent(NewJournalEntryCreatedEvent(entry))
	return entry, nil
}

// StoredVersion returns the version last read from or written to storage.
// It is zero for an entry that was never stored.
func (e *JournalEntry) StoredVersion() int {
	return e.storedVersion
}

// MarkStored records the current version as the stored one
func (e *JournalEntry) MarkStored() {
	e.storedVersion = e.Version
}

// SetSource links the entry to the document that produced it
func (e *JournalEntry) SetSource(sourceType string, sourceID uuid.UUID) {
	e.SourceType = sourceType
	e.SourceID = &sourceID
}

// Update changes the header of a draft entry
func (e *JournalEntry) Update(entryDate time.Time, description, reference string) error {
	if e.Status != JournalStatusDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot edit a %s journal entry", strings.ToLower(string(e.Status)))
	}
	if entryDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Entry date is required")
	}
	e.EntryDate = entryDate
	e.Description = strings.TrimSpace(description)
	e.Reference = strings.TrimSpace(reference)
	e.IncrementVersion()
	return nil
}

// ReplaceLines swaps the lines of a draft entry
func (e *JournalEntry) ReplaceLines(lines []LineInput) error {
	if e.Status != JournalStatusDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot edit a %s journal entry", strings.ToLower(string(e.Status)))
	}
	if err := ValidateLines(lines); err != nil {
		return err
	}
	e.setLines(lines)
	e.IncrementVersion()
	return nil
}

// Post validates the entry again and marks it posted
func (e *JournalEntry) Post() error {
	if e.Status != JournalStatusDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Only draft entries can be posted, entry is %s", e.Status)
	}
	if err := ValidateLines(e.LineInputs()); err != nil {
		return err
	}
	now := time.Now()
	e.Status = JournalStatusPosted
	e.PostedAt = &now
	e.IncrementVersion()
	e.AddDomainEvent(NewJournalEntryPostedEvent(e))
	return nil
}

// Void cancels a posted entry
func (e *JournalEntry) Void() error {
	if e.Status != JournalStatusPosted {
		return shared.NewDomainErrorf("INVALID_STATE", "Only posted entries can be voided, entry is %s", e.Status)
	}
	now := time.Now()
	e.Status = JournalStatusVoid
	e.VoidedAt = &now
	e.IncrementVersion()
	e.AddDomainEvent(NewJournalEntryVoidedEvent(e))
	return nil
}

// CanDelete reports whether the entry may be removed
func (e *JournalEntry) CanDelete() bool {
	return e.Status == JournalStatusDraft
}

// IsBalanced reports whether the stored totals balance
func (e *JournalEntry) IsBalanced() bool {
	return IsBalanced(e.TotalDebit, e.TotalCredit)
}

// LineInputs returns the lines in validation form
func (e *JournalEntry) LineInputs() []LineInput {
	inputs := make([]LineInput, len(e.Lines))
	for i, l := range e.Lines {
		inputs[i] = LineInput{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}
	return inputs
}

// AccountIDs returns the distinct accounts touched by the entry, in line order
func (e *JournalEntry) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Lines))
	ids := make([]uuid.UUID, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// Postings sums debits and credits per account
func (e *JournalEntry) Postings() map[uuid.UUID]Posting {
	out := make(map[uuid.UUID]Posting, len(e.Lines))
	for _, l := range e.Lines {
		p := out[l.AccountID]
		p.Debit = p.Debit.Add(l.Debit)
		p.Credit = p.Credit.Add(l.Credit)
		out[l.AccountID] = p
	}
	return out
}

// Posting is the aggregated debit and credit an entry applies to one account
type Posting struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Reversed swaps the sides of the posting
func (p Posting) Reversed() Posting {
	return Posting{Debit: p.Credit, Credit: p.Debit}
}

func (e *JournalEntry) setLines(lines []LineInput) {
	e.Lines = make([]JournalLine, len(lines))
	for i, l := range lines {
		e.Lines[i] = JournalLine{
			ID:             uuid.New(),
			JournalEntryID: e.ID,
			LineNo:         i + 1,
			AccountID:      l.AccountID,
			Debit:          l.Debit,
			Credit:         l.Credit,
			Memo:           strings.TrimSpace(l.Memo),
		}
	}
	e.TotalDebit, e.TotalCredit = Totals(lines)
}
