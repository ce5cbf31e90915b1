package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func accessClaims(id uuid.UUID, role domain.Role) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        id.String(),
		"email":      "user@example.com",
		"role":       string(role),
		"token_type": "access",
		"exp":        time.Now().Add(time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}
}

func protected(audit *seclog.Log, captured **authctx.CurrentUser) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = authctx.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(testSecret, audit)(inner)
}

func TestAuthMiddlewarePassesCurrentUser(t *testing.T) {
	audit := seclog.New(10, nil)
	id := uuid.New()

	var got *authctx.CurrentUser
	h := protected(audit, &got)

	req := httptest.NewRequest(http.MethodGet, "/routes/today", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims(id, domain.RoleCollector)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.RoleCollector, got.Role)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	audit := seclog.New(10, nil)
	var got *authctx.CurrentUser
	h := protected(audit, &got)

	req := httptest.NewRequest(http.MethodGet, "/routes/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	audit := seclog.New(10, nil)
	var got *authctx.CurrentUser
	h := protected(audit, &got)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims(uuid.New(), domain.RoleCollector)).
		SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/routes/today", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	entries := audit.Recent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, seclog.EventTokenRejected, entries[0].Event)
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	audit := seclog.New(10, nil)
	var got *authctx.CurrentUser
	h := protected(audit, &got)

	claims := accessClaims(uuid.New(), domain.RoleCollector)
	claims["token_type"] = "refresh"

	req := httptest.NewRequest(http.MethodGet, "/routes/today", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestRequireRoleLattice(t *testing.T) {
	audit := seclog.New(10, nil)
	id := uuid.New()

	admin := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := AuthMiddleware(testSecret, audit)(RequireRole(domain.RoleAdmin, audit)(admin))

	// Collectors are refused and the refusal is audited.
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims(id, domain.RoleCollector)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	entries := audit.Recent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, seclog.EventAccessDenied, entries[0].Event)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, id, *entries[0].UserID)

	// Admins pass.
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims(id, domain.RoleAdmin)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCollectorGateAllowsAdmin(t *testing.T) {
	audit := seclog.New(10, nil)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := AuthMiddleware(testSecret, audit)(RequireRole(domain.RoleCollector, audit)(ok))

	req := httptest.NewRequest(http.MethodGet, "/routes/today", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims(uuid.New(), domain.RoleAdmin)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
