package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options maps attribute codes to the chosen value, e.g. {"COLOR": "Red"}
type Options map[string]string

// Value implements driver.Valuer
func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (o *Options) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = Options{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("catalog: cannot scan %T into Options", src)
	}
	out := Options{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*o = out
	return nil
}

// Label renders the options as "COLOR=Red, SIZE=M" in key order
func (o Options) Label() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + o[k]
	}
	return strings.Join(parts, ", ")
}

// ProductVariation is a concrete variant of a product, e.g. a size or color
type ProductVariation struct {
	shared.TenantAggregateRoot
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU        string          `gorm:"column:sku;type:varchar(50);not null;index"`
	Name       string          `gorm:"type:varchar(200);not null"`
	Options    Options         `gorm:"type:jsonb"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status     Status          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductVariation) TableName() string {
	return "product_variations"
}

// NewProductVariation creates a variation of product
func NewProductVariation(product *Product, sku, name string, options Options) (*ProductVariation, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if err := validateCode("Variation SKU", sku, 50); err != nil {
		return nil, err
	}
	if err := validateOptions(options); err != nil {
		return nil, err
	}
	opts := normalizeOptions(options)
	if strings.TrimSpace(name) == "" {
		name = product.Name
		if len(opts) > 0 {
			name += " (" + opts.Label() + ")"
		}
	}
	if err := validateName("Variation", name, 200); err != nil {
		return nil, err
	}

	v := &ProductVariation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(product.TenantID),
		ProductID:           product.ID,
		SKU:                 normalizeCode(sku),
		Name:                strings.TrimSpace(name),
		Options:             opts,
		PriceDelta:          decimal.Zero,
		Status:              StatusActive,
	}
	v.AddDomainEvent(NewCatalogEvent(EventTypeVariationCreated, AggregateTypeVariation, v.ID, v.TenantID, v.SKU, v.Name))
	return v, nil
}

// Update changes the SKU, name and options of the variation
func (v *ProductVariation) Update(sku, name string, options Options, priceDelta decimal.Decimal) error {
	if err := validateCode("Variation SKU", sku, 50); err != nil {
		return err
	}
	if err := validateName("Variation", name, 200); err != nil {
		return err
	}
	if err := validateOptions(options); err != nil {
		return err
	}
	v.SKU = normalizeCode(sku)
	v.Name = strings.TrimSpace(name)
	v.Options = normalizeOptions(options)
	v.PriceDelta = priceDelta
	v.IncrementVersion()
	return nil
}

// EffectivePrice is the product selling price adjusted by the variation delta
func (v *ProductVariation) EffectivePrice(product *Product) decimal.Decimal {
	return product.SellingPrice.Add(v.PriceDelta)
}

func validateOptions(options Options) error {
	for k, val := range options {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(val) == "" {
			return shared.NewDomainError("INVALID_OPTIONS", "Variation options need both attribute and value")
		}
	}
	return nil
}

func normalizeOptions(options Options) Options {
	out := make(Options, len(options))
	for k, val := range options {
		out[normalizeCode(k)] = strings.TrimSpace(val)
	}
	return out
}

// SetStatus switches the variation between active and inactive
func (v *ProductVariation) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid variation status: %s", status)
	}
	if v.Status == status {
		return nil
	}
	v.Status = status
	v.IncrementVersion()
	return nil
}
