package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item identified by a SKU
type Product struct {
	shared.TenantAggregateRoot
	SKU          string          `gorm:"column:sku;type:varchar(50);not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       Status          `gorm:"type:varchar(20);not null;default:'active'"`
	ImageKey     string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product with zero prices
func NewProduct(tenantID uuid.UUID, sku, name, unit string) (*Product, error) {
	if err := validateCode("SKU", sku, 50); err != nil {
		return nil, err
	}
	if err := validateName("Product", name, 200); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 normalizeCode(sku),
		Name:                strings.TrimSpace(name),
		Unit:                strings.TrimSpace(unit),
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		MinStock:            decimal.Zero,
		Status:              StatusActive,
	}
	product.AddDomainEvent(NewCatalogEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID, tenantID, product.SKU, product.Name))
	return product, nil
}

// Update changes the descriptive fields of the product
func (p *Product) Update(sku, name, description, unit string) error {
	if err := validateCode("SKU", sku, 50); err != nil {
		return err
	}
	if err := validateName("Product", name, 200); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}
	p.SKU = normalizeCode(sku)
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Unit = strings.TrimSpace(unit)
	p.IncrementVersion()
	p.AddDomainEvent(NewCatalogEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID, p.TenantID, p.SKU, p.Name))
	return nil
}

// SetPrices sets cost and selling price
func (p *Product) SetPrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.CostPrice = cost
	p.SellingPrice = selling
	p.IncrementVersion()
	return nil
}

// SetMinStock sets the low-stock threshold
func (p *Product) SetMinStock(min decimal.Decimal) error {
	if min.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	p.MinStock = min
	p.IncrementVersion()
	return nil
}

// SetCategory assigns the product to a category, nil clears it
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.IncrementVersion()
}

// SetImage records the object storage key of the product image
func (p *Product) SetImage(key string) {
	p.ImageKey = key
	p.IncrementVersion()
}

// SetStatus switches the product between active and inactive
func (p *Product) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid product status: %s", status)
	}
	if p.Status == status {
		return nil
	}
	p.Status = status
	p.IncrementVersion()
	return nil
}

func (p *Product) IsActive() bool { return p.Status == StatusActive }

func validateUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
