package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/idgate/internal/gateway/domain"
	"github.com/aussiebroadwan/idgate/internal/gateway/service"
	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

// UsersHandler serves the admin user management endpoints under /v1/auth/users.
type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Enabled   *bool  `json:"enabled"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Enabled   *bool   `json:"enabled"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	ExternalID string    `json:"externalId"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
	Count int            `json:"count"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ExternalID: u.ExternalID,
		Enabled:    u.Enabled,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary		Create user
//	@Description	Provisions a user in the identity provider, then records it in the local registry. Requires the ROLE_ADMIN authority.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest	true	"User profile and initial password"
//	@Success		201		{object}	userResponse
//	@Failure		400		{object}	httpx.Problem	"validation failure"
//	@Failure		409		{object}	httpx.Problem	"username, email or provider identity already exists"
//	@Failure		502		{object}	httpx.Problem	"identity provider rejected the request"
//	@Router			/v1/auth/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}

	if errs := validateCreate(req); len(errs) > 0 {
		httpx.WriteValidationProblem(w, errs)
		return
	}

	user, err := h.UserService.CreateUser(ctx, domain.CreateUserRequest{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Enabled:   req.Enabled,
	})
	if err != nil {
		h.writeCreateError(w, log, err)
		return
	}

	w.Header().Set("Location", "/v1/auth/users/"+user.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UsersHandler) writeCreateError(w http.ResponseWriter, log *slog.Logger, err error) {
	var partial *service.PartialProvisioningError
	var provErr *keycloak.ProvisioningError
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteProblem(w, http.StatusConflict, "Conflict", "Username already exists")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteProblem(w, http.StatusConflict, "Conflict", "Email already exists")
	case errors.Is(err, keycloak.ErrUserExists):
		httpx.WriteProblem(w, http.StatusConflict, "Conflict", "User already exists")
	case errors.As(err, &partial):
		log.Error("partial provisioning", "external_id", partial.ExternalID, "err", err)
		httpx.WriteProblem(w, http.StatusInternalServerError, "Partial Provisioning",
			"the user exists in the identity provider but the local registry write failed")
	case errors.As(err, &provErr):
		log.Error("remote provisioning failed", "err", err)
		detail := "identity provider rejected the request"
		if provErr.Status != 0 {
			detail = fmt.Sprintf("identity provider returned status %d", provErr.Status)
		}
		httpx.WriteProblem(w, http.StatusBadGateway, "Identity Provider Error", detail)
	default:
		log.Error("create user failed", "err", err)
		httpx.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred")
	}
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	userListResponse
//	@Router		/v1/auth/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		log.Error("list users failed", "err", err)
		httpx.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred")
		return
	}

	resp := userListResponse{Users: make([]userResponse, 0, len(users)), Count: len(users)}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary	Get user by id
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"User id"
//	@Success	200	{object}	userResponse
//	@Failure	404	{object}	httpx.Problem
//	@Router		/v1/auth/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.GetUserByID(ctx, r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, ctx, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdate godoc
//
//	@Summary		Update user
//	@Description	Updates local record fields only; the identity provider is not called. Username and external id are immutable.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			request	body		updateUserRequest	true	"Fields to update (nulls are ignored)"
//	@Success		200		{object}	userResponse
//	@Failure		404		{object}	httpx.Problem
//	@Failure		409		{object}	httpx.Problem	"email already exists"
//	@Router			/v1/auth/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "Invalid Request", "request body must be JSON")
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			httpx.WriteValidationProblem(w, map[string]string{"email": "must be a valid email address"})
			return
		}
	}

	user, err := h.UserService.UpdateUser(ctx, r.PathValue("id"), domain.UpdateUserRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Enabled:   req.Enabled,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteProblem(w, http.StatusConflict, "Conflict", "Email already exists")
			return
		}
		h.writeLookupError(w, ctx, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary		Delete user
//	@Description	Removes the local record only; the provider-side identity is left untouched.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		404	{object}	httpx.Problem
//	@Router			/v1/auth/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.UserService.DeleteUser(ctx, r.PathValue("id")); err != nil {
		h.writeLookupError(w, ctx, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) writeLookupError(w http.ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		httpx.WriteProblem(w, http.StatusNotFound, "Not Found", "User not found")
		return
	}
	slogx.FromContext(ctx).Error("user lookup failed", "err", err)
	httpx.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error",
		"An unexpected error occurred")
}

func validateCreate(req createUserRequest) map[string]string {
	errs := map[string]string{}

	username := strings.TrimSpace(req.Username)
	if l := len(username); l < 3 || l > 50 {
		errs["username"] = "must be between 3 and 50 characters"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		errs["email"] = "must be a valid email address"
	}
	if len(req.Password) < 6 {
		errs["password"] = "must be at least 6 characters"
	}
	if len(req.FirstName) > 50 {
		errs["firstName"] = "must be at most 50 characters"
	}
	if len(req.LastName) > 50 {
		errs["lastName"] = "must be at most 50 characters"
	}

	return errs
}
