package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var journalFilterColumns = map[string]string{
	"status":      "status",
	"source_type": "source_type",
	"source_id":   "source_id",
}

// GormJournalEntryRepository implements finance.JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByIDForTenant loads an entry and its lines ordered by line number
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.JournalEntry, error) {
	var entry finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error; err != nil {
		return nil, translateError(err)
	}
	entry.MarkStored()
	return &entry, nil
}

// FindAllForTenant lists entry headers. Supported filters: status, source_type,
// source_id, date_from and date_to (inclusive entry dates).
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.JournalEntry, error) {
	var entries []finance.JournalEntry
	err := r.filtered(ctx, tenantID, filter).
		Scopes(pageScope(filter, JournalEntrySortFields, "entry_date")).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForTenant counts entries matching filter
func (r *GormJournalEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecent returns the latest entries by entry date
func (r *GormJournalEntryRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]finance.JournalEntry, error) {
	var entries []finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("entry_date DESC, created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountLinesByAccount counts journal lines posted against an account
func (r *GormJournalEntryRepository) CountLinesByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.JournalLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.journal_entry_id").
		Where("journal_entries.tenant_id = ? AND journal_lines.account_id = ?", tenantID, accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new entry or updates a stored one, then replaces its lines.
// Updates only apply while the row still carries the version the entry was
// loaded with; otherwise shared.ErrConcurrencyConflict is returned.
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveEntryHeader(tx, entry); err != nil {
			return err
		}
		if err := tx.Where("journal_entry_id = ?", entry.ID).Delete(&finance.JournalLine{}).Error; err != nil {
			return err
		}
		if len(entry.Lines) == 0 {
			return nil
		}
		for i := range entry.Lines {
			entry.Lines[i].JournalEntryID = entry.ID
		}
		return tx.Create(&entry.Lines).Error
	})
	if err != nil {
		return err
	}
	entry.MarkStored()
	return nil
}

func saveEntryHeader(tx *gorm.DB, entry *finance.JournalEntry) error {
	if entry.StoredVersion() == 0 {
		return tx.Omit(clause.Associations).Create(entry).Error
	}
	result := tx.Model(&finance.JournalEntry{}).
		Where("tenant_id = ? AND id = ? AND version = ?", entry.TenantID, entry.ID, entry.StoredVersion()).
		Updates(map[string]any{
			"entry_number": entry.EntryNumber,
			"entry_date":   entry.EntryDate,
			"description":  entry.Description,
			"reference":    entry.Reference,
			"status":       entry.Status,
			"total_debit":  entry.TotalDebit,
			"total_credit": entry.TotalCredit,
			"posted_at":    entry.PostedAt,
			"voided_at":    entry.VoidedAt,
			"source_type":  entry.SourceType,
			"source_id":    entry.SourceID,
			"version":      entry.Version,
			"updated_at":   entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant deletes an entry and its lines
func (r *GormJournalEntryRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&finance.JournalEntry{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("journal_entry_id = ?", id).Delete(&finance.JournalLine{}).Error
	})
}

func (r *GormJournalEntryRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&finance.JournalEntry{}).
		Where("tenant_id = ?", tenantID).
		Scopes(
			searchScope(filter.Search, "entry_number", "description", "reference"),
			equalityScope(filter.Filters, journalFilterColumns),
		)
	if from, ok := filter.Filters["date_from"]; ok && from != nil {
		query = query.Where("entry_date >= ?", from)
	}
	if to, ok := filter.Filters["date_to"]; ok && to != nil {
		query = query.Where("entry_date <= ?", to)
	}
	return query
}

// Ensure GormJournalEntryRepository implements JournalEntryRepository
var _ finance.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
