package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/idgate/internal/gateway/service"
	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login
type LoginHandler struct {
	LoginService *service.LoginService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges a username/password pair for access and refresh tokens issued by the identity provider.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest		true	"Credentials"
//	@Success		200		{object}	keycloak.TokenSet	"access_token, refresh_token, token_type, expires_in, refresh_expires_in"
//	@Failure		400		{object}	httpx.Problem		"validation failure"
//	@Failure		401		{object}	httpx.Problem		"invalid credentials"
//	@Failure		502		{object}	httpx.Problem		"identity provider unavailable"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}

	fieldErrs := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fieldErrs["username"] = "must not be blank"
	}
	if req.Password == "" {
		fieldErrs["password"] = "must not be blank"
	}
	if len(fieldErrs) > 0 {
		httpx.WriteValidationProblem(w, fieldErrs)
		return
	}

	tokens, err := h.LoginService.Login(ctx, req.Username, req.Password)
	if err != nil {
		var authErr *keycloak.AuthError
		var upErr *keycloak.UpstreamError
		switch {
		case errors.As(err, &authErr):
			httpx.WriteProblem(w, http.StatusUnauthorized, "Authentication Failed",
				"Authentication failed: "+authErr.Reason)
		case errors.As(err, &upErr):
			httpx.WriteProblem(w, http.StatusBadGateway, "Identity Provider Error",
				upstreamDetail(upErr))
		default:
			log.Error("login failed", "err", err)
			httpx.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error",
				"An unexpected error occurred")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokens)
}

// upstreamDetail exposes the upstream status without leaking internals.
func upstreamDetail(err *keycloak.UpstreamError) string {
	if err.Status != 0 {
		return fmt.Sprintf("identity provider returned status %d", err.Status)
	}
	return "identity provider unreachable"
}
