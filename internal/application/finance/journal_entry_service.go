package finance

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// VoucherRenderer turns a journal entry into a printable voucher document
type VoucherRenderer interface {
	RenderVoucher(entry JournalEntryResponse) ([]byte, error)
}

// Voucher is a rendered journal voucher
type Voucher struct {
	Filename    string
	ContentType string
	Content     []byte
}

// JournalEntryService handles journal entry drafting, posting and voiding
type JournalEntryService struct {
	entryRepo      finance.JournalEntryRepository
	accountRepo    finance.AccountRepository
	txScope        uow.TransactionScope
	renderer       VoucherRenderer
	eventPublisher shared.EventPublisher
}

// NewJournalEntryService creates a new JournalEntryService
func NewJournalEntryService(
	entryRepo finance.JournalEntryRepository,
	accountRepo finance.AccountRepository,
	txScope uow.TransactionScope,
) *JournalEntryService {
	return &JournalEntryService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		txScope:     txScope,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *JournalEntryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetVoucherRenderer sets the renderer used by Voucher
func (s *JournalEntryService) SetVoucherRenderer(renderer VoucherRenderer) {
	s.renderer = renderer
}

// Create validates the lines and stores a draft entry
func (s *JournalEntryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateJournalEntryRequest) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal_entry", "create",
		"tenant_id", tenantID,
		"lines", len(req.Lines),
	)
	defer span.End()

	entry, err := finance.NewJournalEntry(tenantID, req.EntryDate, req.Description, toLineInputs(req.Lines))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	entry.Reference = req.Reference
	if req.CreatedBy != nil {
		entry.SetCreatedBy(*req.CreatedBy)
	}

	accounts, err := resolveAccounts(ctx, s.accountRepo, tenantID, entry.AccountIDs(), true)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, entry)

	telemetry.SetAttributes(span, "entry_number", entry.EntryNumber)
	response := ToJournalEntryResponse(entry, accounts)
	return &response, nil
}

// GetByID retrieves an entry with its lines
func (s *JournalEntryService) GetByID(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, entry)
}

// List retrieves entry headers with filtering and pagination
func (s *JournalEntryService) List(ctx context.Context, tenantID uuid.UUID, filter JournalEntryListFilter) ([]JournalEntryListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "entry_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.SourceType != "" {
		domainFilter.Filters["source_type"] = filter.SourceType
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	entries, err := s.entryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToJournalEntryListResponses(entries), total, nil
}

// Update edits a draft entry; posted and void entries are immutable
func (s *JournalEntryService) Update(ctx context.Context, tenantID, entryID uuid.UUID, req UpdateJournalEntryRequest) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	entryDate := entry.EntryDate
	description := entry.Description
	reference := entry.Reference
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Reference != nil {
		reference = *req.Reference
	}
	if err := entry.Update(entryDate, description, reference); err != nil {
		return nil, err
	}

	if req.Lines != nil {
		if err := entry.ReplaceLines(toLineInputs(req.Lines)); err != nil {
			return nil, err
		}
	}
	accounts, err := resolveAccounts(ctx, s.accountRepo, tenantID, entry.AccountIDs(), true)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	entry.AddDomainEvent(finance.NewJournalEntryUpdatedEvent(entry))
	uow.PublishEvents(ctx, s.eventPublisher, entry)

	response := ToJournalEntryResponse(entry, accounts)
	return &response, nil
}

// Delete removes a draft entry
func (s *JournalEntryService) Delete(ctx context.Context, tenantID, entryID uuid.UUID) error {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	if !entry.CanDelete() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot delete a %s journal entry", entry.Status)
	}
	if err := s.entryRepo.DeleteForTenant(ctx, tenantID, entryID); err != nil {
		return err
	}
	entry.AddDomainEvent(finance.NewJournalEntryDeletedEvent(entry))
	uow.PublishEvents(ctx, s.eventPublisher, entry)
	return nil
}

// Post posts a draft entry and updates the account balances atomically
func (s *JournalEntryService) Post(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal_entry", "post",
		"tenant_id", tenantID,
		"entry_id", entryID,
	)
	defer span.End()

	var entry *finance.JournalEntry
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		found, err := repos.JournalEntries().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if err := PostEntry(ctx, repos, found); err != nil {
			return err
		}
		entry = found
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, entry)

	telemetry.SetAttributes(span, "total", entry.TotalDebit)
	return s.toResponse(ctx, entry)
}

// Void voids a posted manual entry and reverses its balance effect atomically.
// Entries generated from sales are voided through the sale.
func (s *JournalEntryService) Void(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal_entry", "void",
		"tenant_id", tenantID,
		"entry_id", entryID,
	)
	defer span.End()

	var entry *finance.JournalEntry
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		found, err := repos.JournalEntries().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if found.SourceType != finance.SourceManual {
			return shared.NewDomainErrorf("INVALID_STATE",
				"Journal entry %s was generated by a %s and must be voided there", found.EntryNumber, found.SourceType)
		}
		if err := VoidEntry(ctx, repos, found); err != nil {
			return err
		}
		entry = found
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, entry)
	return s.toResponse(ctx, entry)
}

// Voucher renders the printable voucher of an entry
func (s *JournalEntryService) Voucher(ctx context.Context, tenantID, entryID uuid.UUID) (*Voucher, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError("NOT_CONFIGURED", "Voucher rendering is not configured")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "journal_entry", "voucher", "entry_id", entryID)
	defer span.End()

	response, err := s.GetByID(ctx, tenantID, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	content, err := s.renderer.RenderVoucher(*response)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("render voucher %s: %w", response.EntryNumber, err)
	}
	return &Voucher{
		Filename:    response.EntryNumber + ".pdf",
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *JournalEntryService) toResponse(ctx context.Context, entry *finance.JournalEntry) (*JournalEntryResponse, error) {
	found, err := s.accountRepo.FindByIDs(ctx, entry.TenantID, entry.AccountIDs())
	if err != nil {
		return nil, err
	}
	accounts := make(map[uuid.UUID]finance.Account, len(found))
	for _, a := range found {
		accounts[a.ID] = a
	}
	response := ToJournalEntryResponse(entry, accounts)
	return &response, nil
}
