package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/shared"
)

type stubVerifier struct {
	principal *shared.Principal
	err       error
}

func (s stubVerifier) Verify(string) (*shared.Principal, error) {
	return s.principal, s.err
}

type stubMaintenance struct {
	active map[int64]bool
}

func (s stubMaintenance) MaintenanceActive(_ context.Context, profileID int64) (bool, error) {
	return s.active[profileID], nil
}

func newTestHandler(t *testing.T, cfg MiddlewareConfig) http.Handler {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		if p == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	stack := MiddlewareStack(cfg)
	for i := len(stack) - 1; i >= 0; i-- {
		handler = stack[i](handler)
	}
	return handler
}

func TestAuthMiddlewareLoadsPrincipal(t *testing.T) {
	handler := newTestHandler(t, MiddlewareConfig{
		Verifier: stubVerifier{principal: &shared.Principal{ProfileID: 1, IsOwner: true}},
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	handler := newTestHandler(t, MiddlewareConfig{
		Verifier: stubVerifier{err: errors.New("expired")},
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"detail": "Invalid token."}`, rr.Body.String())
}

func TestAuthMiddlewarePassesAnonymousThrough(t *testing.T) {
	handler := newTestHandler(t, MiddlewareConfig{
		Verifier: stubVerifier{principal: &shared.Principal{ProfileID: 1}},
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestMaintenanceMiddlewareBlocksTenant(t *testing.T) {
	handler := newTestHandler(t, MiddlewareConfig{
		Verifier:    stubVerifier{principal: &shared.Principal{ProfileID: 9}},
		Maintenance: stubMaintenance{active: map[int64]bool{9: true}},
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"detail": "Service temporarily unavailable."}`, rr.Body.String())
}

func TestMaintenanceMiddlewareAllowsOtherTenants(t *testing.T) {
	handler := newTestHandler(t, MiddlewareConfig{
		Verifier:    stubVerifier{principal: &shared.Principal{ProfileID: 2}},
		Maintenance: stubMaintenance{active: map[int64]bool{9: true}},
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRequirePrincipalRejectsAnonymous(t *testing.T) {
	handler := RequirePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"detail": "Authentication credentials were not provided."}`, rr.Body.String())
}
