package keycloak_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *keycloak.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := keycloak.NewClient(srv.URL, "demo", "gateway-client", "gateway-secret")
	c.HTTPClient = srv.Client()
	return c
}

func TestPasswordGrant(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/realms/demo/protocol/openid-connect/token", r.URL.Path)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "password", r.PostForm.Get("grant_type"))
			require.Equal(t, "gateway-client", r.PostForm.Get("client_id"))
			require.Equal(t, "gateway-secret", r.PostForm.Get("client_secret"))
			require.Equal(t, "jane", r.PostForm.Get("username"))
			require.Equal(t, "hunter2", r.PostForm.Get("password"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-123",
				"refresh_token": "rt-456",
				"token_type":    "Bearer",
				"expires_in":    300,
			})
		})

		ts, err := c.PasswordGrant(context.Background(), "jane", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "at-123", ts.AccessToken)
		require.Equal(t, "rt-456", ts.RefreshToken)
		require.Equal(t, "Bearer", ts.TokenType)
		require.NotNil(t, ts.ExpiresIn)
		require.EqualValues(t, 300, *ts.ExpiresIn)
	})

	t.Run("token_type defaults to Bearer", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-123"})
		})

		ts, err := c.PasswordGrant(context.Background(), "jane", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "Bearer", ts.TokenType)
	})

	t.Run("no client_secret for public clients", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			_, hasSecret := r.PostForm["client_secret"]
			require.False(t, hasSecret)
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-123"})
		}))
		t.Cleanup(srv.Close)

		c := keycloak.NewClient(srv.URL, "demo", "public-client", "")
		c.HTTPClient = srv.Client()

		_, err := c.PasswordGrant(context.Background(), "jane", "hunter2")
		require.NoError(t, err)
	})

	t.Run("401 with error_description", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid user credentials",
			})
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "wrong")

		var authErr *keycloak.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Invalid user credentials", authErr.Reason)
	})

	t.Run("400 with only error code", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "wrong")

		var authErr *keycloak.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "invalid_grant", authErr.Reason)
	})

	t.Run("401 with unparseable body falls back", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("not json"))
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "wrong")

		var authErr *keycloak.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Invalid credentials", authErr.Reason)
	})

	t.Run("500 becomes upstream error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "hunter2")

		var upErr *keycloak.UpstreamError
		require.ErrorAs(t, err, &upErr)
		require.Equal(t, http.StatusInternalServerError, upErr.Status)
	})

	t.Run("unreachable provider becomes upstream error", func(t *testing.T) {
		c := keycloak.NewClient("http://127.0.0.1:1", "demo", "gateway-client", "")

		_, err := c.PasswordGrant(context.Background(), "jane", "hunter2")

		var upErr *keycloak.UpstreamError
		require.ErrorAs(t, err, &upErr)
		require.Zero(t, upErr.Status)
	})

	t.Run("2xx without access_token is an upstream error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token_type": "Bearer"})
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "hunter2")

		var upErr *keycloak.UpstreamError
		require.ErrorAs(t, err, &upErr)
	})

	t.Run("2xx with malformed body is an upstream error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{broken"))
		})

		_, err := c.PasswordGrant(context.Background(), "jane", "hunter2")

		var upErr *keycloak.UpstreamError
		require.ErrorAs(t, err, &upErr)
	})
}
