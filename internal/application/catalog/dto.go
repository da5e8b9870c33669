package catalog

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Category DTOs
// =============================================================================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Code        string     `json:"code" binding:"required,min=1,max=50"`
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   *int       `json:"sort_order"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// UpdateCategoryRequest represents a request to update a category.
// ParentID moves the category; MoveToRoot detaches it from its parent.
type UpdateCategoryRequest struct {
	Code        *string    `json:"code" binding:"omitempty,min=1,max=50"`
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description"`
	SortOrder   *int       `json:"sort_order"`
	ParentID    *uuid.UUID `json:"parent_id"`
	MoveToRoot  bool       `json:"move_to_root"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive"`
}

// CategoryListFilter represents filter options for the category list
type CategoryListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=active inactive"`
	ParentID *uuid.UUID `form:"parent_id"`
	Level    *int       `form:"level" binding:"omitempty,min=0"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Path        string     `json:"path"`
	Level       int        `json:"level"`
	SortOrder   int        `json:"sort_order"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// CategoryTreeNode is a category with its nested children
type CategoryTreeNode struct {
	ID        uuid.UUID          `json:"id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Level     int                `json:"level"`
	SortOrder int                `json:"sort_order"`
	Status    string             `json:"status"`
	Children  []CategoryTreeNode `json:"children"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		Path:        c.Path,
		Level:       c.Level,
		SortOrder:   c.SortOrder,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU          string           `json:"sku" binding:"required,min=1,max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Description  string           `json:"description"`
	CategoryID   *uuid.UUID       `json:"category_id"`
	Unit         string           `json:"unit" binding:"required,min=1,max=20"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	MinStock     *decimal.Decimal `json:"min_stock"`
	CreatedBy    *uuid.UUID       `json:"-"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	SKU           *string          `json:"sku" binding:"omitempty,min=1,max=50"`
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	Unit          *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MinStock      *decimal.Decimal `json:"min_stock"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=active inactive"`
	CategoryID *uuid.UUID `form:"category_id"`
	Unit       string     `form:"unit"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Status       string          `json:"status"`
	HasImage     bool            `json:"has_image"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		TenantID:     p.TenantID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		Unit:         p.Unit,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		MinStock:     p.MinStock,
		Status:       string(p.Status),
		HasImage:     p.ImageKey != "",
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ImageUpload is a product image received from a client
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageURLResponse is a time-limited link to a product image
type ImageURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// =============================================================================
// Variation DTOs
// =============================================================================

// CreateVariationRequest represents a request to add a variation to a product.
// Options map attribute codes to one of the attribute's values.
type CreateVariationRequest struct {
	SKU        string            `json:"sku" binding:"required,min=1,max=50"`
	Name       string            `json:"name" binding:"max=200"`
	Options    map[string]string `json:"options"`
	PriceDelta decimal.Decimal   `json:"price_delta"`
	CreatedBy  *uuid.UUID        `json:"-"`
}

// UpdateVariationRequest represents a request to update a variation
type UpdateVariationRequest struct {
	SKU        *string           `json:"sku" binding:"omitempty,min=1,max=50"`
	Name       *string           `json:"name" binding:"omitempty,min=1,max=200"`
	Options    map[string]string `json:"options"`
	PriceDelta *decimal.Decimal  `json:"price_delta"`
	Status     *string           `json:"status" binding:"omitempty,oneof=active inactive"`
}

// VariationResponse represents a product variation in API responses
type VariationResponse struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  uuid.UUID         `json:"product_id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	Options    map[string]string `json:"options"`
	PriceDelta decimal.Decimal   `json:"price_delta"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Version    int               `json:"version"`
}

// ToVariationResponse converts a domain ProductVariation to VariationResponse
func ToVariationResponse(v *catalog.ProductVariation) VariationResponse {
	options := make(map[string]string, len(v.Options))
	for k, val := range v.Options {
		options[k] = val
	}
	return VariationResponse{
		ID:         v.ID,
		ProductID:  v.ProductID,
		SKU:        v.SKU,
		Name:       v.Name,
		Options:    options,
		PriceDelta: v.PriceDelta,
		Status:     string(v.Status),
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		Version:    v.Version,
	}
}

// =============================================================================
// Attribute DTOs
// =============================================================================

// CreateAttributeRequest represents a request to create an attribute
type CreateAttributeRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	Values    []string   `json:"values" binding:"dive,min=1,max=100"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateAttributeRequest represents a request to rename an attribute
type UpdateAttributeRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

// AddAttributeValueRequest represents a request to add an attribute value
type AddAttributeValueRequest struct {
	Value string `json:"value" binding:"required,min=1,max=100"`
}

// AttributeListFilter represents filter options for the attribute list
type AttributeListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AttributeValueResponse represents an attribute value
type AttributeValueResponse struct {
	ID        uuid.UUID `json:"id"`
	Value     string    `json:"value"`
	SortOrder int       `json:"sort_order"`
}

// AttributeResponse represents an attribute with its values
type AttributeResponse struct {
	ID        uuid.UUID                `json:"id"`
	TenantID  uuid.UUID                `json:"tenant_id"`
	Code      string                   `json:"code"`
	Name      string                   `json:"name"`
	Values    []AttributeValueResponse `json:"values"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
	Version   int                      `json:"version"`
}

// ToAttributeResponse converts a domain Attribute to AttributeResponse
func ToAttributeResponse(a *catalog.Attribute) AttributeResponse {
	values := make([]AttributeValueResponse, len(a.Values))
	for i, v := range a.Values {
		values[i] = AttributeValueResponse{ID: v.ID, Value: v.Value, SortOrder: v.SortOrder}
	}
	return AttributeResponse{
		ID:        a.ID,
		TenantID:  a.TenantID,
		Code:      a.Code,
		Name:      a.Name,
		Values:    values,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

// ToAttributeResponses converts a slice of attributes
func ToAttributeResponses(attributes []catalog.Attribute) []AttributeResponse {
	responses := make([]AttributeResponse, len(attributes))
	for i := range attributes {
		responses[i] = ToAttributeResponse(&attributes[i])
	}
	return responses
}
