package catalog

import (
	"context"
	"testing"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type categoryFixture struct {
	categoryRepo *MockCategoryRepository
	productRepo  *MockProductRepository
	service      *CategoryService
}

func newCategoryFixture() *categoryFixture {
	f := &categoryFixture{
		categoryRepo: new(MockCategoryRepository),
		productRepo:  new(MockProductRepository),
	}
	txScope := uow.NewNoOpTransactionScope(uow.RepositorySet{
		CategoryRepo: f.categoryRepo,
		ProductRepo:  f.productRepo,
	})
	f.service = NewCategoryService(f.categoryRepo, f.productRepo, txScope)
	return f
}

func newTestCategory(t *testing.T, tenantID uuid.UUID, code string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(tenantID, code, "Category "+code, parent)
	require.NoError(t, err)
	category.ClearDomainEvents()
	return category
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("root category", func(t *testing.T) {
		f := newCategoryFixture()
		publisher := new(MockEventPublisher)
		f.service.SetEventPublisher(publisher)
		sortOrder := 3

		f.categoryRepo.On("ExistsByCode", ctx, tenantID, "food").Return(false, nil)
		f.categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, tenantID, CreateCategoryRequest{
			Code:        "food",
			Name:        "Food",
			Description: "Edible goods",
			SortOrder:   &sortOrder,
		})

		require.NoError(t, err)
		assert.Equal(t, "FOOD", resp.Code)
		assert.Equal(t, 0, resp.Level)
		assert.Equal(t, resp.ID.String(), resp.Path)
		assert.Equal(t, 3, resp.SortOrder)
		assert.Equal(t, "Edible goods", resp.Description)
		f.categoryRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("child category", func(t *testing.T) {
		f := newCategoryFixture()
		parent := newTestCategory(t, tenantID, "FOOD", nil)

		f.categoryRepo.On("ExistsByCode", ctx, tenantID, "FRUIT").Return(false, nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, parent.ID).Return(parent, nil)
		f.categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := f.service.Create(ctx, tenantID, CreateCategoryRequest{Code: "FRUIT", Name: "Fruit", ParentID: &parent.ID})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Level)
		assert.Equal(t, &parent.ID, resp.ParentID)
		assert.Equal(t, parent.Path+"/"+resp.ID.String(), resp.Path)
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newCategoryFixture()
		f.categoryRepo.On("ExistsByCode", ctx, tenantID, "FOOD").Return(true, nil)

		_, err := f.service.Create(ctx, tenantID, CreateCategoryRequest{Code: "FOOD", Name: "Food"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		f.categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing parent", func(t *testing.T) {
		f := newCategoryFixture()
		parentID := uuid.New()
		f.categoryRepo.On("ExistsByCode", ctx, tenantID, "FRUIT").Return(false, nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, parentID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, tenantID, CreateCategoryRequest{Code: "FRUIT", Name: "Fruit", ParentID: &parentID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PARENT", domainErr.Code)
	})
}

func TestCategoryService_List_Defaults(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	tenantID := uuid.New()
	level := 0
	expected := shared.Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "path",
		OrderDir: "asc",
		Filters:  map[string]any{"status": "active", "level": 0},
	}
	categories := []catalog.Category{*newTestCategory(t, tenantID, "FOOD", nil)}

	f.categoryRepo.On("FindAllForTenant", ctx, tenantID, expected).Return(categories, nil)
	f.categoryRepo.On("CountForTenant", ctx, tenantID, expected).Return(int64(1), nil)

	list, total, err := f.service.List(ctx, tenantID, CategoryListFilter{Status: "active", Level: &level})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "FOOD", list[0].Code)
}

func TestCategoryService_GetTree(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	tenantID := uuid.New()

	food := newTestCategory(t, tenantID, "FOOD", nil)
	drinks := newTestCategory(t, tenantID, "DRINKS", nil)
	drinks.SortOrder = -1
	fruit := newTestCategory(t, tenantID, "FRUIT", food)
	apples := newTestCategory(t, tenantID, "APPLES", fruit)

	f.categoryRepo.On("FindAllForTenant", ctx, tenantID, shared.Filter{
		Page:     1,
		PageSize: 100,
		OrderBy:  "path",
		OrderDir: "asc",
	}).Return([]catalog.Category{*food, *fruit, *apples, *drinks}, nil)

	tree, err := f.service.GetTree(ctx, tenantID)

	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "DRINKS", tree[0].Code)
	assert.Empty(t, tree[0].Children)
	assert.Equal(t, "FOOD", tree[1].Code)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "FRUIT", tree[1].Children[0].Code)
	require.Len(t, tree[1].Children[0].Children, 1)
	assert.Equal(t, "APPLES", tree[1].Children[0].Children[0].Code)
	assert.Equal(t, 2, tree[1].Children[0].Children[0].Level)
}

func TestBuildCategoryTree_OrphansBecomeRoots(t *testing.T) {
	tenantID := uuid.New()
	parent := newTestCategory(t, tenantID, "FOOD", nil)
	child := newTestCategory(t, tenantID, "FRUIT", parent)

	tree := buildCategoryTree([]catalog.Category{*child})

	require.Len(t, tree, 1)
	assert.Equal(t, "FRUIT", tree[0].Code)
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("fields and status", func(t *testing.T) {
		f := newCategoryFixture()
		category := newTestCategory(t, tenantID, "FOOD", nil)
		name := "Groceries"
		code := "food"
		status := "inactive"

		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, category.ID).Return(category, nil)
		f.categoryRepo.On("Save", ctx, category).Return(nil)

		resp, err := f.service.Update(ctx, tenantID, category.ID, UpdateCategoryRequest{Code: &code, Name: &name, Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "Groceries", resp.Name)
		assert.Equal(t, "inactive", resp.Status)
		f.categoryRepo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything, mock.Anything)
		f.categoryRepo.AssertNotCalled(t, "RewritePaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("move to root rewrites subtree", func(t *testing.T) {
		f := newCategoryFixture()
		food := newTestCategory(t, tenantID, "FOOD", nil)
		fruit := newTestCategory(t, tenantID, "FRUIT", food)
		oldPath := fruit.Path

		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, fruit.ID).Return(fruit, nil)
		f.categoryRepo.On("Save", ctx, fruit).Return(nil)
		f.categoryRepo.On("RewritePaths", ctx, tenantID, oldPath, fruit.ID.String(), -1).Return(nil)

		resp, err := f.service.Update(ctx, tenantID, fruit.ID, UpdateCategoryRequest{MoveToRoot: true})

		require.NoError(t, err)
		assert.Nil(t, resp.ParentID)
		assert.Equal(t, 0, resp.Level)
		f.categoryRepo.AssertExpectations(t)
	})

	t.Run("move under descendant rejected", func(t *testing.T) {
		f := newCategoryFixture()
		food := newTestCategory(t, tenantID, "FOOD", nil)
		fruit := newTestCategory(t, tenantID, "FRUIT", food)

		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, food.ID).Return(food, nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, fruit.ID).Return(fruit, nil)

		_, err := f.service.Update(ctx, tenantID, food.ID, UpdateCategoryRequest{ParentID: &fruit.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PARENT", domainErr.Code)
		f.categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("blocked by children", func(t *testing.T) {
		f := newCategoryFixture()
		category := newTestCategory(t, tenantID, "FOOD", nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, category.ID).Return(category, nil)
		f.categoryRepo.On("HasChildren", ctx, tenantID, category.ID).Return(true, nil)

		err := f.service.Delete(ctx, tenantID, category.ID)

		assert.ErrorIs(t, err, shared.ErrInUse)
	})

	t.Run("blocked by products", func(t *testing.T) {
		f := newCategoryFixture()
		category := newTestCategory(t, tenantID, "FOOD", nil)
		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, category.ID).Return(category, nil)
		f.categoryRepo.On("HasChildren", ctx, tenantID, category.ID).Return(false, nil)
		f.productRepo.On("CountByCategory", ctx, tenantID, category.ID).Return(int64(2), nil)

		err := f.service.Delete(ctx, tenantID, category.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IN_USE", domainErr.Code)
		assert.Contains(t, domainErr.Message, "2 product(s)")
		f.categoryRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty category", func(t *testing.T) {
		f := newCategoryFixture()
		publisher := new(MockEventPublisher)
		f.service.SetEventPublisher(publisher)
		category := newTestCategory(t, tenantID, "FOOD", nil)

		f.categoryRepo.On("FindByIDForTenant", ctx, tenantID, category.ID).Return(category, nil)
		f.categoryRepo.On("HasChildren", ctx, tenantID, category.ID).Return(false, nil)
		f.productRepo.On("CountByCategory", ctx, tenantID, category.ID).Return(int64(0), nil)
		f.categoryRepo.On("DeleteForTenant", ctx, tenantID, category.ID).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == catalog.EventTypeCategoryDeleted
		})).Return(nil)

		require.NoError(t, f.service.Delete(ctx, tenantID, category.ID))
		f.categoryRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})
}
