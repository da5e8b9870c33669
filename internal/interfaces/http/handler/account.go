package handler

import (
	financeapp "github.com/erp/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the chart of accounts
type AccountHandler struct {
	BaseHandler
	accountService *financeapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *financeapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Create adds an account to the chart
func (h *AccountHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req financeapp.CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	account, err := h.accountService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetByID returns one account
func (h *AccountHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns a page of accounts
func (h *AccountHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter financeapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	accounts, total, err := h.accountService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Update edits an account
func (h *AccountHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req financeapp.UpdateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Delete removes an account that carries no balance or lines
func (h *AccountHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

