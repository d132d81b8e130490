package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func requestWithAuthorities(authorities ...string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), httpx.CtxKeyAuthorities, authorities)
	return req.WithContext(ctx)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var okHandlerAuthz = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAnyAuthority(t *testing.T) {
	h := httpx.RequireAnyAuthority("ROLE_ADMIN", "ROLE_OPERATOR")(okHandlerAuthz)

	t.Run("holder of one required authority passes", func(t *testing.T) {
		rec := serve(h, requestWithAuthorities("ROLE_USER", "ROLE_ADMIN"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("holder of none is denied", func(t *testing.T) {
		rec := serve(h, requestWithAuthorities("ROLE_USER"))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("unauthenticated request is denied", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireAllAuthorities(t *testing.T) {
	h := httpx.RequireAllAuthorities("ROLE_ADMIN", "ROLE_AUDITOR")(okHandlerAuthz)

	t.Run("holder of all passes", func(t *testing.T) {
		rec := serve(h, requestWithAuthorities("ROLE_ADMIN", "ROLE_AUDITOR", "ROLE_USER"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("holder of a subset is denied", func(t *testing.T) {
		rec := serve(h, requestWithAuthorities("ROLE_ADMIN"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
