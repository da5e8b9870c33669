package finance

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountService handles chart of accounts operations
type AccountService struct {
	accountRepo    finance.AccountRepository
	entryRepo      finance.JournalEntryRepository
	eventPublisher shared.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo finance.AccountRepository, entryRepo finance.JournalEntryRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AccountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create adds an account to the chart
func (s *AccountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	exists, err := s.accountRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this code already exists")
	}

	accountType, err := finance.ParseAccountType(req.Type)
	if err != nil {
		return nil, err
	}
	account, err := finance.NewAccount(tenantID, req.Code, req.Name, accountType)
	if err != nil {
		return nil, err
	}
	account.Description = req.Description

	if req.ParentID != nil {
		parent, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent account: %w", err)
		}
		if err := account.SetParent(parent); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		account.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, account)

	response := ToAccountResponse(account)
	return &response, nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	response := ToAccountResponse(account)
	return &response, nil
}

// List retrieves accounts with filtering and pagination
func (s *AccountService) List(ctx context.Context, tenantID uuid.UUID, filter AccountListFilter) ([]AccountResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Type != "" {
		accountType, err := finance.ParseAccountType(filter.Type)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["type"] = string(accountType)
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if filter.ParentID != nil {
		domainFilter.Filters["parent_id"] = *filter.ParentID
	}

	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAccountResponses(accounts), total, nil
}

// Update updates an account. The type and balance cannot be changed here.
func (s *AccountService) Update(ctx context.Context, tenantID, accountID uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != account.Code {
		exists, err := s.accountRepo.ExistsByCode(ctx, tenantID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this code already exists")
		}
		if err := account.ChangeCode(*req.Code); err != nil {
			return nil, err
		}
	}

	if req.Name != nil || req.Description != nil {
		name := account.Name
		description := account.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := account.Update(name, description); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearParent:
		if err := account.SetParent(nil); err != nil {
			return nil, err
		}
	case req.ParentID != nil:
		parent, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent account: %w", err)
		}
		if err := account.SetParent(parent); err != nil {
			return nil, err
		}
	}

	if req.IsActive != nil {
		if *req.IsActive {
			account.Activate()
		} else {
			account.Deactivate()
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, account)

	response := ToAccountResponse(account)
	return &response, nil
}

// Delete removes an account that has no sub-accounts and no journal lines
func (s *AccountService) Delete(ctx context.Context, tenantID, accountID uuid.UUID) error {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		return err
	}

	hasChildren, err := s.accountRepo.HasChildren(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("IN_USE", "Account has sub-accounts and cannot be deleted")
	}

	lines, err := s.entryRepo.CountLinesByAccount(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if lines > 0 {
		return shared.NewDomainErrorf("IN_USE", "Account is used by %d journal line(s) and cannot be deleted", lines)
	}

	if err := s.accountRepo.DeleteForTenant(ctx, tenantID, accountID); err != nil {
		return err
	}
	account.AddDomainEvent(finance.NewAccountDeletedEvent(account))
	uow.PublishEvents(ctx, s.eventPublisher, account)
	return nil
}
