package handler

import (
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler serves stock levels, adjustments, transfers and the
// movement log
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// Stock returns product quantities per warehouse
func (h *InventoryHandler) Stock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter inventoryapp.StockFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	stock, err := h.stockService.Stock(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// LowStock returns products at or below their minimum stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	items, err := h.stockService.LowStock(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Adjust applies a signed quantity change to one stock row
func (h *InventoryHandler) Adjust(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	row, err := h.stockService.Adjust(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Transfer moves stock between two warehouses
func (h *InventoryHandler) Transfer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req inventoryapp.TransferStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	result, err := h.stockService.Transfer(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Movements returns a page of the stock movement log
func (h *InventoryHandler) Movements(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter inventoryapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	movements, total, err := h.stockService.Movements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}
