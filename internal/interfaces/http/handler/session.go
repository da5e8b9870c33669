package handler

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errSignOutUnavailable = shared.NewDomainError("NOT_CONFIGURED", "Sign-out is not available")

// SessionHandler exposes the caller's session
type SessionHandler struct {
	BaseHandler
	revocations auth.RevocationList
	now         func() time.Time
}

// NewSessionHandler creates a new SessionHandler. A nil revocation list
// makes sign-out answer 503.
func NewSessionHandler(revocations auth.RevocationList) *SessionHandler {
	return &SessionHandler{revocations: revocations, now: time.Now}
}

// Get returns the authenticated session
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, session)
}

// Delete revokes the presented token until it would have expired
func (h *SessionHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if h.revocations == nil || session.TokenID == "" {
		h.HandleError(c, errSignOutUnavailable)
		return
	}

	ttl := session.RemainingTTL(h.now())
	if err := h.revocations.Revoke(c.Request.Context(), session.TokenID, ttl); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.FromGin(c).Info("Session revoked",
		zap.String("user_id", session.UserID.String()),
		zap.Duration("ttl", ttl),
	)
	h.NoContent(c)
}
