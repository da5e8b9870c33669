package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: time.Hour,
		Issuer:                "backoffice-test",
	})
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Duration) error { return nil }

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func setupJWTRouter(t *testing.T, cfg JWTMiddlewareConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg.Logger = zaptest.NewLogger(t)

	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/session", func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		fromCtx, _ := auth.SessionFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"tenant_id":     session.TenantID,
			"same_session":  fromCtx == session,
			"log_tenant_id": logger.TenantID(c.Request.Context()),
		})
	})
	return router
}

func doRequest(router http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(AuthHeaderKey, authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	tenantID := uuid.New()
	token, _, err := jwtService.Issue(auth.IssueInput{TenantID: tenantID, UserID: uuid.New(), Username: "ana"})
	require.NoError(t, err)

	router := setupJWTRouter(t, DefaultJWTConfig(jwtService))
	w := doRequest(router, "/api/v1/session", BearerPrefix+token)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, tenantID.String(), body["tenant_id"])
	assert.Equal(t, true, body["same_session"])
	assert.Equal(t, tenantID.String(), body["log_tenant_id"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	past := time.Now().Add(-2 * time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "backoffice-test",
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	other := auth.NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-with-32-characters!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "backoffice-test",
	})
	foreign, _, err := other.Issue(auth.IssueInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		code          string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + expired, dto.ErrCodeTokenExpired},
		{"wrong signature", BearerPrefix + foreign, dto.ErrCodeTokenInvalid},
	}

	router := setupJWTRouter(t, DefaultJWTConfig(jwtService))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/api/v1/session", tt.authorization)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := setupJWTRouter(t, DefaultJWTConfig(newTestJWTService()))

	w := doRequest(router, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Revocation(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()
	token, session, err := jwtService.Issue(auth.IssueInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	t.Run("revoked token is rejected", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationList()
		require.NoError(t, revocations.Revoke(ctx, session.TokenID, time.Hour))
		cfg := DefaultJWTConfig(jwtService)
		cfg.Revocations = revocations

		w := doRequest(setupJWTRouter(t, cfg), "/api/v1/session", BearerPrefix+token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Code)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		cfg := DefaultJWTConfig(jwtService)
		cfg.Revocations = failingRevocations{}

		w := doRequest(setupJWTRouter(t, cfg), "/api/v1/session", BearerPrefix+token)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
