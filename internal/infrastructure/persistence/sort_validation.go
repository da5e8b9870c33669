package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to every entity
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = withCommon("code", "name", "type", "balance", "is_active")

// JournalEntrySortFields contains allowed sort fields for journal entries
var JournalEntrySortFields = withCommon("entry_number", "entry_date", "status", "total_debit", "posted_at")

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = withCommon("code", "name", "path", "level", "sort_order", "status")

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = withCommon("sku", "name", "unit", "cost_price", "selling_price", "min_stock", "status")

// AttributeSortFields contains allowed sort fields for attributes
var AttributeSortFields = withCommon("code", "name")

// PartnerSortFields contains allowed sort fields for customers, suppliers and warehouses
var PartnerSortFields = withCommon("code", "name", "contact_name", "email", "status")

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = withCommon("quantity", "reason")

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = withCommon("sale_number", "sale_date", "total", "status")

func withCommon(fields ...string) map[string]bool {
	out := make(map[string]bool, len(CommonSortFields)+len(fields))
	for k := range CommonSortFields {
		out[k] = true
	}
	for _, f := range fields {
		out[f] = true
	}
	return out
}
