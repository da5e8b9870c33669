package handler

import (
	"strconv"

	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// Query keys consumed by the table endpoints; every other key is an
// equality filter.
var tableQueryKeys = map[string]bool{
	"order_by":  true,
	"order_dir": true,
	"limit":     true,
	"offset":    true,
}

// TableHandler exposes the generic table gateway
type TableHandler struct {
	BaseHandler
	gateway *persistence.TableGateway
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(gateway *persistence.TableGateway) *TableHandler {
	return &TableHandler{gateway: gateway}
}

// Tables lists the exposed table names
func (h *TableHandler) Tables(c *gin.Context) {
	if _, ok := h.tenantID(c); !ok {
		return
	}
	h.Success(c, h.gateway.Tables())
}

// Select returns rows of :table. The literal value "null" filters on NULL.
func (h *TableHandler) Select(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	opts := persistence.SelectOptions{
		Filters:  make(map[string]any),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}
	var err error
	if opts.Limit, err = queryInt(c, "limit"); err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}
	if opts.Offset, err = queryInt(c, "offset"); err != nil {
		h.BadRequest(c, "offset must be an integer")
		return
	}
	for key, values := range c.Request.URL.Query() {
		if tableQueryKeys[key] || len(values) == 0 {
			continue
		}
		if values[0] == "null" {
			opts.Filters[key] = nil
			continue
		}
		opts.Filters[key] = values[0]
	}

	rows, err := h.gateway.Select(c.Request.Context(), tenantID, c.Param("table"), opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Insert stores a row in :table
func (h *TableHandler) Insert(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var row persistence.Row
	if !h.bindJSON(c, &row) {
		return
	}

	created, err := h.gateway.Insert(c.Request.Context(), tenantID, c.Param("table"), row)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Update patches row :id of :table
func (h *TableHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var patch persistence.Row
	if !h.bindJSON(c, &patch) {
		return
	}

	updated, err := h.gateway.Update(c.Request.Context(), tenantID, c.Param("table"), id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete removes row :id of :table
func (h *TableHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.gateway.Delete(c.Request.Context(), tenantID, c.Param("table"), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
