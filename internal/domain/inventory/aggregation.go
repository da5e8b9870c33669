package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseQuantity is the quantity held in one warehouse
type WarehouseQuantity struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ProductStock is the stock of a product (or variation) summed over warehouses
type ProductStock struct {
	ProductID   uuid.UUID           `json:"product_id"`
	VariationID *uuid.UUID          `json:"variation_id,omitempty"`
	Total       decimal.Decimal     `json:"total"`
	Warehouses  []WarehouseQuantity `json:"warehouses"`
}

// ProductTotal is a product with its stock summed over warehouses and variations
type ProductTotal struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

type stockKey struct {
	product   uuid.UUID
	variation uuid.UUID
}

// Aggregate groups stock rows by product and variation and sums their quantities.
// Results are ordered by product then variation id, each breakdown by warehouse id.
func Aggregate(rows []WarehouseStock) []ProductStock {
	index := make(map[stockKey]*ProductStock)
	keys := make([]stockKey, 0)

	for _, row := range rows {
		k := stockKey{product: row.ProductID}
		if row.VariationID != nil {
			k.variation = *row.VariationID
		}
		ps, ok := index[k]
		if !ok {
			ps = &ProductStock{ProductID: row.ProductID, VariationID: row.VariationID, Total: decimal.Zero}
			index[k] = ps
			keys = append(keys, k)
		}
		ps.Total = ps.Total.Add(row.Quantity)
		ps.Warehouses = mergeWarehouse(ps.Warehouses, row.WarehouseID, row.Quantity)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].product != keys[j].product {
			return keys[i].product.String() < keys[j].product.String()
		}
		return keys[i].variation.String() < keys[j].variation.String()
	})

	out := make([]ProductStock, len(keys))
	for i, k := range keys {
		ps := index[k]
		sort.Slice(ps.Warehouses, func(a, b int) bool {
			return ps.Warehouses[a].WarehouseID.String() < ps.Warehouses[b].WarehouseID.String()
		})
		out[i] = *ps
	}
	return out
}

// TotalsByProduct sums stock per product across warehouses and variations
func TotalsByProduct(rows []WarehouseStock) map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, row := range rows {
		totals[row.ProductID] = totals[row.ProductID].Add(row.Quantity)
	}
	return totals
}

func mergeWarehouse(list []WarehouseQuantity, warehouseID uuid.UUID, qty decimal.Decimal) []WarehouseQuantity {
	for i := range list {
		if list[i].WarehouseID == warehouseID {
			list[i].Quantity = list[i].Quantity.Add(qty)
			return list
		}
	}
	return append(list, WarehouseQuantity{WarehouseID: warehouseID, Quantity: qty})
}
