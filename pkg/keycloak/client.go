// Package keycloak is a minimal client for a Keycloak-compatible identity
// provider: the OpenID Connect token endpoint for logins and the admin REST
// API for user provisioning. It deliberately covers only what the gateway
// needs and never retries a failed call.
package keycloak

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to a single realm of the identity provider.
type Client struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string // empty for public clients
	HTTPClient   *http.Client
}

// NewClient creates a provider client for the given realm.
func NewClient(baseURL, realm, clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		Realm:        realm,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IssuerURL is the iss claim value the realm stamps into issued tokens.
func (c *Client) IssuerURL() string {
	return fmt.Sprintf("%s/realms/%s", c.BaseURL, c.Realm)
}

// TokenURL is the realm's OpenID Connect token endpoint.
func (c *Client) TokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.BaseURL, c.Realm)
}

// JWKSURL is the realm's public signing key endpoint.
func (c *Client) JWKSURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", c.BaseURL, c.Realm)
}

func (c *Client) adminURL(format string, args ...any) string {
	return c.BaseURL + fmt.Sprintf(format, args...)
}
