package persistence

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row is one record exchanged through the table gateway, keyed by column name.
type Row map[string]any

// SelectOptions narrows a gateway Select.
type SelectOptions struct {
	Filters  map[string]any
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}

const (
	defaultSelectLimit = 50
	maxSelectLimit     = 500
)

type gatewayTable struct {
	columns  map[string]bool
	readOnly bool
}

func columnSet(cols ...string) map[string]bool {
	set := map[string]bool{
		"id": true, "tenant_id": true, "created_at": true,
		"updated_at": true, "version": true, "created_by": true,
	}
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// systemColumns are maintained by the gateway and never accepted from callers.
var systemColumns = map[string]bool{
	"id": true, "tenant_id": true, "created_at": true, "updated_at": true, "version": true,
}

var gatewayTables = map[string]gatewayTable{
	"accounts": {columns: columnSet("code", "name", "type", "parent_id", "description", "is_active", "balance")},
	"categories": {columns: columnSet("code", "name", "description", "parent_id", "path", "level",
		"sort_order", "status")},
	"products": {columns: columnSet("sku", "name", "description", "category_id", "unit", "cost_price",
		"selling_price", "min_stock", "status", "image_key")},
	"product_variations": {columns: columnSet("product_id", "sku", "name", "options", "price_delta", "status")},
	"attributes":         {columns: columnSet("code", "name")},
	"customers": {columns: columnSet("code", "name", "contact_name", "phone", "email", "address",
		"credit_limit", "notes", "status")},
	"suppliers": {columns: columnSet("code", "name", "contact_name", "phone", "email", "address",
		"payment_terms", "notes", "status")},
	"warehouses": {columns: columnSet("code", "name", "contact_name", "phone", "email", "address",
		"is_default", "status")},
	"journal_entries": {readOnly: true, columns: columnSet("entry_number", "entry_date", "description",
		"reference", "status", "total_debit", "total_credit", "posted_at", "source_type", "source_id")},
	"sales": {readOnly: true, columns: columnSet("sale_number", "customer_id", "warehouse_id", "sale_date",
		"payment_method", "status", "total", "journal_entry_id", "notes")},
	"warehouse_stocks": {readOnly: true, columns: columnSet("warehouse_id", "product_id", "variation_id",
		"quantity")},
}

// TableGateway offers generic tenant-scoped row access to a fixed set of tables.
// Unknown tables yield NOT_FOUND and unknown columns INVALID_INPUT.
type TableGateway struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTableGateway creates a new TableGateway
func NewTableGateway(db *gorm.DB) *TableGateway {
	return &TableGateway{db: db, now: time.Now}
}

// Tables lists the exposed table names in alphabetical order.
func (g *TableGateway) Tables() []string {
	names := make([]string, 0, len(gatewayTables))
	for name := range gatewayTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the tenant's rows of table matching every equality filter.
func (g *TableGateway) Select(ctx context.Context, tenantID uuid.UUID, table string, opts SelectOptions) ([]Row, error) {
	def, err := lookupTable(table)
	if err != nil {
		return nil, err
	}

	query := g.db.WithContext(ctx).Table(table).Where("tenant_id = ?", tenantID)
	for _, column := range sortedKeys(opts.Filters) {
		if !def.columns[column] {
			return nil, unknownColumn(table, column)
		}
		value := opts.Filters[column]
		if value == nil {
			query = query.Where(column + " IS NULL")
			continue
		}
		query = query.Where(column+" = ?", value)
	}

	orderBy := "created_at"
	if opts.OrderBy != "" {
		if !def.columns[opts.OrderBy] {
			return nil, unknownColumn(table, opts.OrderBy)
		}
		orderBy = opts.OrderBy
	}
	query = query.Order(orderBy + " " + ValidateSortOrder(opts.OrderDir))

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSelectLimit
	}
	if limit > maxSelectLimit {
		limit = maxSelectLimit
	}
	query = query.Limit(limit)
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var rows []map[string]any
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = normalizeRow(r)
	}
	return out, nil
}

// Insert stores row for the tenant, assigning id, timestamps and version.
func (g *TableGateway) Insert(ctx context.Context, tenantID uuid.UUID, table string, row Row) (Row, error) {
	def, err := writableTable(table)
	if err != nil {
		return nil, err
	}
	values, err := writableValues(table, def, row)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Row has no columns")
	}

	now := g.now()
	id := uuid.New()
	values["id"] = id
	values["tenant_id"] = tenantID
	values["created_at"] = now
	values["updated_at"] = now
	values["version"] = 1

	if err := g.db.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		return nil, translateError(err)
	}
	return g.find(ctx, tenantID, table, id)
}

// Update applies patch to the tenant's row id, bumping updated_at and version.
func (g *TableGateway) Update(ctx context.Context, tenantID uuid.UUID, table string, id uuid.UUID, patch Row) (Row, error) {
	def, err := writableTable(table)
	if err != nil {
		return nil, err
	}
	values, err := writableValues(table, def, patch)
	if err != nil {
		return nil, err
	}
	values["updated_at"] = g.now()
	values["version"] = gorm.Expr("version + 1")

	result := g.db.WithContext(ctx).Table(table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(values)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return g.find(ctx, tenantID, table, id)
}

// Delete removes the tenant's row id.
func (g *TableGateway) Delete(ctx context.Context, tenantID uuid.UUID, table string, id uuid.UUID) error {
	if _, err := writableTable(table); err != nil {
		return err
	}
	result := g.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (g *TableGateway) find(ctx context.Context, tenantID uuid.UUID, table string, id uuid.UUID) (Row, error) {
	var rows []map[string]any
	if err := g.db.WithContext(ctx).Table(table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return normalizeRow(rows[0]), nil
}

func lookupTable(table string) (gatewayTable, error) {
	def, ok := gatewayTables[table]
	if !ok {
		return gatewayTable{}, shared.NewDomainErrorf("NOT_FOUND", "Unknown table: %s", table)
	}
	return def, nil
}

func writableTable(table string) (gatewayTable, error) {
	def, err := lookupTable(table)
	if err != nil {
		return def, err
	}
	if def.readOnly {
		return def, shared.NewDomainErrorf("INVALID_STATE", "Table %s is read-only", table)
	}
	return def, nil
}

func writableValues(table string, def gatewayTable, row Row) (map[string]any, error) {
	values := make(map[string]any, len(row)+5)
	for column, value := range row {
		if !def.columns[column] {
			return nil, unknownColumn(table, column)
		}
		if systemColumns[column] {
			return nil, shared.NewDomainErrorf("INVALID_INPUT", "Column %s is managed by the server", column)
		}
		switch v := value.(type) {
		case map[string]any, []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, shared.NewDomainErrorf("INVALID_INPUT", "Column %s: %v", column, err)
			}
			values[column] = string(encoded)
		default:
			values[column] = value
		}
	}
	return values, nil
}

func unknownColumn(table, column string) error {
	return shared.NewDomainErrorf("INVALID_INPUT", "Unknown column %s on table %s", column, table)
}

// normalizeRow turns driver byte slices into strings so rows encode as JSON text.
func normalizeRow(r map[string]any) Row {
	row := make(Row, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
			continue
		}
		row[k] = v
	}
	return row
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
