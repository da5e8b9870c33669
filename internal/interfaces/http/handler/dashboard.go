package handler

import (
	dashboardapp "github.com/erp/backoffice/internal/application/dashboard"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the cached tenant summary
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get returns the summary; ?refresh=true bypasses the cached copy
func (h *DashboardHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var (
		summary *dashboardapp.Summary
		err     error
	)
	if c.Query("refresh") == "true" {
		summary, err = h.dashboardService.Refresh(c.Request.Context(), tenantID)
	} else {
		summary, err = h.dashboardService.Get(c.Request.Context(), tenantID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
