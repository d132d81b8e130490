package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/idgate/internal/gateway/service"
	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

// UserInfoHandler echoes the verified token claims back to the caller,
// joined against the local registry record when one exists.
type UserInfoHandler struct {
	UserService *service.UserService
}

type userInfoResponse struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	RealmRoles  []string `json:"realmRoles"`
	Authorities []string `json:"authorities"`

	// Populated only when the subject has a local registry record.
	AppUserID string `json:"appUserId,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// HandleUserInfo godoc
//
//	@Summary		Current user info
//	@Description	Returns the claims of the presented access token together with the matching local registry record, if any.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	userInfoResponse
//	@Failure		401	{object}	httpx.Problem
//	@Router			/v1/auth/userinfo [get].
func (h *UserInfoHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "missing token claims")
		return
	}
	authorities := httpx.AuthoritiesFromContext(ctx)

	resp := userInfoResponse{
		UserID:      claims.Subject,
		Username:    claims.PreferredUsername,
		Email:       claims.Email,
		RealmRoles:  claims.RealmAccess.Roles,
		Authorities: authorities,
	}
	if resp.RealmRoles == nil {
		resp.RealmRoles = []string{}
	}
	if resp.Authorities == nil {
		resp.Authorities = []string{}
	}

	user, err := h.UserService.GetUserByExternalID(ctx, claims.Subject)
	switch {
	case err == nil:
		resp.AppUserID = user.ID
		resp.FirstName = user.FirstName
		resp.LastName = user.LastName
	case errors.Is(err, service.ErrNotFound):
		// Token subjects provisioned outside the gateway have no local record.
	default:
		log.Warn("local record lookup failed", "subject", claims.Subject, "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
