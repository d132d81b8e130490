package keycloak

// TokenSet is the token endpoint's successful response. Lifetimes are
// advisory only; the gateway does not track expiry on behalf of callers.
type TokenSet struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenType        string `json:"token_type"`
	ExpiresIn        *int64 `json:"expires_in,omitempty"`
	RefreshExpiresIn *int64 `json:"refresh_expires_in,omitempty"`
}

// UserProfile is the subset of the provider's user representation the
// gateway submits when provisioning.
type UserProfile struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Enabled   *bool // nil means enabled
}

// userRepresentation is the admin API's wire shape for user creation.
// EmailVerified is always sent as true so new accounts skip the provider's
// verification flow.
type userRepresentation struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
}

// credentialRepresentation is the admin API's wire shape for password resets.
type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}
