package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified access-token claims the gateway cares about.
// The provider attaches roles under realm_access (realm-wide) and
// resource_access (per client); both are modelled as typed structures so an
// absent or oddly-shaped claim is just a zero value, not a parse error.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user, when present in the token.
	Email string `json:"email,omitempty"`

	// PreferredUsername is the provider-side login name.
	PreferredUsername string `json:"preferred_username,omitempty"`

	// Scope is the space-delimited OAuth2 scope string.
	Scope string `json:"scope,omitempty"`

	// RealmAccess carries realm-wide roles.
	RealmAccess RealmAccess `json:"realm_access,omitempty"`

	// ResourceAccess carries roles scoped to individual clients.
	ResourceAccess map[string]ClientRoles `json:"resource_access,omitempty"`
}

// RealmAccess is the realm_access claim shape.
type RealmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// ClientRoles is one entry of the resource_access claim.
type ClientRoles struct {
	Roles []string `json:"roles,omitempty"`
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	// Check expired (exp)
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	// Check if a valid token isn't used before it is valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
