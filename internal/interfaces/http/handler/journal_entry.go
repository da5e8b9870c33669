package handler

import (
	"context"
	"fmt"
	"net/http"

	financeapp "github.com/erp/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JournalEntryHandler serves journal entries and their vouchers
type JournalEntryHandler struct {
	BaseHandler
	entryService *financeapp.JournalEntryService
}

// NewJournalEntryHandler creates a new JournalEntryHandler
func NewJournalEntryHandler(entryService *financeapp.JournalEntryService) *JournalEntryHandler {
	return &JournalEntryHandler{entryService: entryService}
}

// Create stores a draft entry
func (h *JournalEntryHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req financeapp.CreateJournalEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	entry, err := h.entryService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetByID returns one entry with its lines
func (h *JournalEntryHandler) GetByID(c *gin.Context) {
	h.withEntry(c, h.entryService.GetByID)
}

// List returns a page of entries without lines
func (h *JournalEntryHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter financeapp.JournalEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	entries, total, err := h.entryService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Update edits a draft entry
func (h *JournalEntryHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req financeapp.UpdateJournalEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.entryService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete removes a draft entry
func (h *JournalEntryHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Post applies a balanced draft to the ledger
func (h *JournalEntryHandler) Post(c *gin.Context) {
	h.withEntry(c, h.entryService.Post)
}

// Void reverses a posted entry
func (h *JournalEntryHandler) Void(c *gin.Context) {
	h.withEntry(c, h.entryService.Void)
}

// Voucher streams the printable PDF voucher of an entry
func (h *JournalEntryHandler) Voucher(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	voucher, err := h.entryService.Voucher(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "attachment"
	if c.Query("inline") == "true" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, voucher.Filename))
	c.Data(http.StatusOK, voucher.ContentType, voucher.Content)
}

// withEntry runs a single-entry operation addressed by the :id path param
func (h *JournalEntryHandler) withEntry(
	c *gin.Context,
	op func(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.JournalEntryResponse, error),
) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entry, err := op(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
