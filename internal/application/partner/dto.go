package partner

import (
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactFields are the contact details shared by every partner request
type ContactFields struct {
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address" binding:"max=500"`
}

func (c ContactFields) toContact() partner.Contact {
	return partner.Contact{
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
	}
}

// ContactPatch holds optional contact changes
type ContactPatch struct {
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
}

func (p ContactPatch) apply(c partner.Contact) partner.Contact {
	if p.ContactName != nil {
		c.ContactName = *p.ContactName
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	return c
}

// PartnerListFilter represents filter options for partner lists
type PartnerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Email    string `form:"email"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactResponse is the contact block of partner responses
type ContactResponse struct {
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

func toContactResponse(c partner.Contact) ContactResponse {
	return ContactResponse{
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
	}
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
	ContactFields
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       string           `json:"notes"`
	CreatedBy   *uuid.UUID       `json:"-"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPatch
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       *string          `json:"notes"`
	Status      *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	ContactResponse
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Notes       string          `json:"notes"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		Code:            c.Code,
		Name:            c.Name,
		ContactResponse: toContactResponse(c.Contact),
		CreditLimit:     c.CreditLimit,
		Notes:           c.Notes,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
	ContactFields
	PaymentTerms *int       `json:"payment_terms" binding:"omitempty,min=0,max=365"`
	Notes        string     `json:"notes"`
	CreatedBy    *uuid.UUID `json:"-"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPatch
	PaymentTerms *int    `json:"payment_terms" binding:"omitempty,min=0,max=365"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	ContactResponse
	PaymentTerms int       `json:"payment_terms"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID,
		TenantID:        s.TenantID,
		Code:            s.Code,
		Name:            s.Name,
		ContactResponse: toContactResponse(s.Contact),
		PaymentTerms:    s.PaymentTerms,
		Notes:           s.Notes,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
}

// ToSupplierResponses converts a slice of suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}

// =============================================================================
// Warehouse DTOs
// =============================================================================

// CreateWarehouseRequest represents a request to create a new warehouse
type CreateWarehouseRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
	ContactFields
	IsDefault bool       `json:"is_default"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateWarehouseRequest represents a request to update a warehouse
type UpdateWarehouseRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPatch
	IsDefault *bool   `json:"is_default"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// WarehouseListFilter represents filter options for the warehouse list
type WarehouseListFilter struct {
	PartnerListFilter
	IsDefault *bool `form:"is_default"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	ContactResponse
	IsDefault bool      `json:"is_default"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToWarehouseResponse converts a domain Warehouse to WarehouseResponse
func ToWarehouseResponse(w *partner.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:              w.ID,
		TenantID:        w.TenantID,
		Code:            w.Code,
		Name:            w.Name,
		ContactResponse: toContactResponse(w.Contact),
		IsDefault:       w.IsDefault,
		Status:          string(w.Status),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
		Version:         w.Version,
	}
}

// ToWarehouseResponses converts a slice of warehouses
func ToWarehouseResponses(warehouses []partner.Warehouse) []WarehouseResponse {
	responses := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		responses[i] = ToWarehouseResponse(&warehouses[i])
	}
	return responses
}

// domainFilter applies list defaults and maps the filter to the repository filter
func (f PartnerListFilter) domainFilter() shared.Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.OrderBy == "" {
		f.OrderBy = "code"
	}
	if f.OrderDir == "" {
		f.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Status != "" {
		domainFilter.Filters["status"] = f.Status
	}
	if f.Email != "" {
		domainFilter.Filters["email"] = f.Email
	}
	return domainFilter
}
