package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sales"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseService handles warehouse-related business operations
type WarehouseService struct {
	warehouseRepo  partner.WarehouseRepository
	stockRepo      inventory.StockRepository
	saleRepo       sales.SaleRepository
	txScope        uow.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(
	warehouseRepo partner.WarehouseRepository,
	stockRepo inventory.StockRepository,
	saleRepo sales.SaleRepository,
	txScope uow.TransactionScope,
) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		saleRepo:      saleRepo,
		txScope:       txScope,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *WarehouseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new warehouse. The first warehouse of a tenant becomes the default.
func (s *WarehouseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
	}

	warehouse, err := partner.NewWarehouse(tenantID, req.Code, req.Name, req.ContactFields.toContact())
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		warehouse.SetCreatedBy(*req.CreatedBy)
	}

	makeDefault := req.IsDefault
	if !makeDefault {
		_, err := s.warehouseRepo.FindDefault(ctx, tenantID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			makeDefault = true
		case err != nil:
			return nil, err
		}
	}

	if makeDefault {
		err = s.saveAsDefault(ctx, warehouse)
	} else {
		err = s.warehouseRepo.Save(ctx, warehouse)
	}
	if err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, warehouse)

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// GetByID retrieves a warehouse by ID
func (s *WarehouseService) GetByID(ctx context.Context, tenantID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// GetDefault retrieves the default warehouse of the tenant
func (s *WarehouseService) GetDefault(ctx context.Context, tenantID uuid.UUID) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindDefault(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// List retrieves a list of warehouses with filtering and pagination
func (s *WarehouseService) List(ctx context.Context, tenantID uuid.UUID, filter WarehouseListFilter) ([]WarehouseResponse, int64, error) {
	domainFilter := filter.domainFilter()
	if filter.IsDefault != nil {
		domainFilter.Filters["is_default"] = *filter.IsDefault
	}

	warehouses, err := s.warehouseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.warehouseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToWarehouseResponses(warehouses), total, nil
}

// Update updates a warehouse. Making it the default clears the flag on the
// previous default in the same transaction.
func (s *WarehouseService) Update(ctx context.Context, tenantID, warehouseID uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	code := warehouse.Code
	name := warehouse.Name
	if req.Code != nil && !strings.EqualFold(strings.TrimSpace(*req.Code), warehouse.Code) {
		exists, err := s.warehouseRepo.ExistsByCode(ctx, tenantID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
		}
		code = *req.Code
	}
	if req.Name != nil {
		name = *req.Name
	}
	if err := warehouse.Update(code, name, req.ContactPatch.apply(warehouse.Contact)); err != nil {
		return nil, err
	}

	if req.IsDefault != nil && !*req.IsDefault {
		if err := warehouse.SetDefault(false); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := warehouse.SetStatus(partner.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if req.IsDefault != nil && *req.IsDefault && !warehouse.IsDefault {
		err = s.saveAsDefault(ctx, warehouse)
	} else {
		err = s.warehouseRepo.Save(ctx, warehouse)
	}
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// Delete deletes a warehouse that holds no stock and is not referenced by sales
func (s *WarehouseService) Delete(ctx context.Context, tenantID, warehouseID uuid.UUID) error {
	warehouse, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if warehouse.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Default warehouse cannot be deleted")
	}

	hasStock, err := s.stockRepo.HasStockInWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if hasStock {
		return shared.NewDomainErrorf("IN_USE", "Warehouse %s still holds stock", warehouse.Code)
	}

	sold, err := s.saleRepo.CountForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]any{"warehouse_id": warehouseID},
	})
	if err != nil {
		return err
	}
	if sold > 0 {
		return shared.NewDomainErrorf("IN_USE", "Warehouse is used by %d sale(s) and cannot be deleted", sold)
	}

	if err := s.warehouseRepo.DeleteForTenant(ctx, tenantID, warehouseID); err != nil {
		return err
	}
	warehouse.AddDomainEvent(partner.NewPartnerEvent(partner.EventTypePartnerDeleted, partner.AggregateTypeWarehouse, warehouse.ID, tenantID, warehouse.Code, warehouse.Name))
	uow.PublishEvents(ctx, s.eventPublisher, warehouse)
	return nil
}

func (s *WarehouseService) saveAsDefault(ctx context.Context, warehouse *partner.Warehouse) error {
	if err := warehouse.SetDefault(true); err != nil {
		return err
	}
	return s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Warehouses().ClearDefault(ctx, warehouse.TenantID); err != nil {
			return err
		}
		return repos.Warehouses().Save(ctx, warehouse)
	})
}
