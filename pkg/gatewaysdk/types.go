package gatewaysdk

import "time"

// HealthChecks reports the status of individual service dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Verifier string `json:"verifier,omitempty"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// TokenResponse is the credential exchange result returned by the login endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenType        string `json:"token_type"`
	ExpiresIn        *int64 `json:"expires_in,omitempty"`
	RefreshExpiresIn *int64 `json:"refresh_expires_in,omitempty"`
}

// UserRecord is a registry user as returned by the user management endpoints.
type UserRecord struct {
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

// UserList is the response of the list users endpoint.
type UserList struct {
	Users []UserRecord `json:"users"`
	Count int          `json:"count"`
}

// CreateUserRequest is the payload for provisioning a new user.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`
}

// UpdateUserRequest carries the mutable registry fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// UserInfo is the response of the userinfo endpoint.
type UserInfo struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	RealmRoles  []string `json:"realmRoles"`
	Authorities []string `json:"authorities"`
	AppUserID   string   `json:"appUserId,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
}
