package handler

import (
	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// AttributeHandler serves variation attributes and their values
type AttributeHandler struct {
	BaseHandler
	attributeService *catalogapp.AttributeService
}

// NewAttributeHandler creates a new AttributeHandler
func NewAttributeHandler(attributeService *catalogapp.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

func (h *AttributeHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req catalogapp.CreateAttributeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	attribute, err := h.attributeService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, attribute)
}

func (h *AttributeHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	attribute, err := h.attributeService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attribute)
}

func (h *AttributeHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter catalogapp.AttributeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	attributes, total, err := h.attributeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, attributes, total, filter.Page, filter.PageSize)
}

func (h *AttributeHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateAttributeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attribute, err := h.attributeService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attribute)
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.attributeService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddValue appends a value to an attribute
func (h *AttributeHandler) AddValue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.AddAttributeValueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attribute, err := h.attributeService.AddValue(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, attribute)
}

// RemoveValue drops a value from an attribute
func (h *AttributeHandler) RemoveValue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	valueID, ok := h.pathID(c, "vid")
	if !ok {
		return
	}

	attribute, err := h.attributeService.RemoveValue(c.Request.Context(), tenantID, id, valueID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attribute)
}
