package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// treePageSize is the page size used to walk all categories when building the tree
const treePageSize = 100

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	txScope        uow.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	txScope uow.TransactionScope,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		txScope:      txScope,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		parent, err = s.findParent(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}

	category, err := catalog.NewCategory(tenantID, req.Code, req.Name, parent)
	if err != nil {
		return nil, err
	}
	category.Description = req.Description
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.CreatedBy != nil {
		category.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, category)

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves a list of categories with filtering and pagination
func (s *CategoryService) List(ctx context.Context, tenantID uuid.UUID, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "path"
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ParentID != nil {
		domainFilter.Filters["parent_id"] = *filter.ParentID
	}
	if filter.Level != nil {
		domainFilter.Filters["level"] = *filter.Level
	}

	categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCategoryResponses(categories), total, nil
}

// GetTree returns every category of the tenant arranged as a tree
func (s *CategoryService) GetTree(ctx context.Context, tenantID uuid.UUID) ([]CategoryTreeNode, error) {
	var all []catalog.Category
	for page := 1; ; page++ {
		batch, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Page:     page,
			PageSize: treePageSize,
			OrderBy:  "path",
			OrderDir: "asc",
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < treePageSize {
			break
		}
	}
	return buildCategoryTree(all), nil
}

// Update updates descriptive fields, status and position of a category.
// Moving a category rewrites the paths of its whole subtree in one transaction.
func (s *CategoryService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	code := category.Code
	name := category.Name
	description := category.Description
	sortOrder := category.SortOrder
	if req.Code != nil && !strings.EqualFold(strings.TrimSpace(*req.Code), category.Code) {
		exists, err := s.categoryRepo.ExistsByCode(ctx, tenantID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
		}
		code = *req.Code
	}
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	if err := category.Update(code, name, description, sortOrder); err != nil {
		return nil, err
	}

	if req.Status != nil && catalog.Status(*req.Status) != category.Status {
		if catalog.Status(*req.Status) == catalog.StatusActive {
			err = category.Activate()
		} else {
			err = category.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	moving := (req.MoveToRoot && category.ParentID != nil) ||
		(req.ParentID != nil && (category.ParentID == nil || *category.ParentID != *req.ParentID))
	if !moving {
		if err := s.categoryRepo.Save(ctx, category); err != nil {
			return nil, err
		}
		uow.PublishEvents(ctx, s.eventPublisher, category)
		response := ToCategoryResponse(category)
		return &response, nil
	}

	var parent *catalog.Category
	if !req.MoveToRoot {
		parent, err = s.findParent(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}
	oldLevel := category.Level
	oldPath, err := category.MoveTo(parent)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Categories().Save(ctx, category); err != nil {
			return err
		}
		return repos.Categories().RewritePaths(ctx, tenantID, oldPath, category.Path, category.Level-oldLevel)
	})
	if err != nil {
		return nil, err
	}
	uow.PublishEvents(ctx, s.eventPublisher, category)

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete deletes a category that has no children and no products
func (s *CategoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("IN_USE", "Cannot delete category with child categories")
	}

	products, err := s.productRepo.CountByCategory(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return shared.NewDomainErrorf("IN_USE", "Category is used by %d product(s) and cannot be deleted", products)
	}

	if err := s.categoryRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	category.AddDomainEvent(catalog.NewCatalogEvent(catalog.EventTypeCategoryDeleted, catalog.AggregateTypeCategory, category.ID, tenantID, category.Code, category.Name))
	uow.PublishEvents(ctx, s.eventPublisher, category)
	return nil
}

func (s *CategoryService) findParent(ctx context.Context, tenantID, parentID uuid.UUID) (*catalog.Category, error) {
	parent, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
		return nil, err
	}
	return parent, nil
}

// buildCategoryTree nests categories under their parents. Orphans whose parent
// is missing from the input are treated as roots.
func buildCategoryTree(categories []catalog.Category) []CategoryTreeNode {
	known := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	childrenOf := make(map[uuid.UUID][]catalog.Category)
	var roots []catalog.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c)
	}

	var build func(level []catalog.Category) []CategoryTreeNode
	build = func(level []catalog.Category) []CategoryTreeNode {
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].SortOrder != level[j].SortOrder {
				return level[i].SortOrder < level[j].SortOrder
			}
			return level[i].Code < level[j].Code
		})
		nodes := make([]CategoryTreeNode, len(level))
		for i, c := range level {
			nodes[i] = CategoryTreeNode{
				ID:        c.ID,
				Code:      c.Code,
				Name:      c.Name,
				Level:     c.Level,
				SortOrder: c.SortOrder,
				Status:    string(c.Status),
				Children:  build(childrenOf[c.ID]),
			}
		}
		return nodes
	}
	return build(roots)
}
