package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// AdminClient drives the provider's admin REST API for user provisioning.
// It authenticates itself with the client_credentials grant against the admin
// realm and caches the resulting service-account token until shortly before
// it expires.
type AdminClient struct {
	client     *Client
	adminRealm string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAdminClient wraps the realm client with admin API access. adminRealm is
// the realm the service account authenticates against, which may differ from
// the realm users are provisioned into.
func NewAdminClient(c *Client, adminRealm string) *AdminClient {
	return &AdminClient{
		client:     c,
		adminRealm: adminRealm,
	}
}

// CreateUser provisions a user in the provider and sets their password as a
// permanent credential. It returns the provider's id for the new user, taken
// from the trailing segment of the 201 response's Location header.
//
// A 409 from the provider surfaces as ErrUserExists. Any other failure,
// including a password reset failing after the user was created, surfaces as
// *ProvisioningError; there is no compensating delete, so a reset failure
// leaves the remote user in a partially-configured state.
func (a *AdminClient) CreateUser(ctx context.Context, profile UserProfile, password string) (string, error) {
	rep := userRepresentation{
		Username:      profile.Username,
		Email:         profile.Email,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		Enabled:       profile.Enabled == nil || *profile.Enabled,
		EmailVerified: true, // skip the provider's email verification flow
	}

	resp, err := a.doAdminRequest(ctx, http.MethodPost,
		a.client.adminURL("/admin/realms/%s/users", a.client.Realm), rep)
	if err != nil {
		return "", &ProvisioningError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		// fall through
	case http.StatusConflict:
		return "", ErrUserExists
	default:
		return "", &ProvisioningError{Status: resp.StatusCode}
	}

	id := idFromLocation(resp.Header.Get("Location"))
	if id == "" {
		return "", &ProvisioningError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("created user but response carried no location id"),
		}
	}

	if err := a.resetPassword(ctx, id, password); err != nil {
		return "", err
	}

	return id, nil
}

// resetPassword sets a permanent (non-temporary) password credential for the
// given provider user id.
func (a *AdminClient) resetPassword(ctx context.Context, userID, password string) error {
	cred := credentialRepresentation{
		Type:      "password",
		Value:     password,
		Temporary: false,
	}

	resp, err := a.doAdminRequest(ctx, http.MethodPut,
		a.client.adminURL("/admin/realms/%s/users/%s/reset-password", a.client.Realm, userID), cred)
	if err != nil {
		return &ProvisioningError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return &ProvisioningError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("password reset rejected for user %s", userID),
		}
	}

	return nil
}

// doAdminRequest sends a JSON request with a valid service-account token.
func (a *AdminClient) doAdminRequest(ctx context.Context, method, rawURL string, payload any) (*http.Response, error) {
	token, err := a.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// adminToken returns a valid service-account access token, requesting a new
// one via client_credentials when the cached token is missing or near expiry.
func (a *AdminClient) adminToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiresAt) {
		return a.token, nil
	}

	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.client.ClientID},
		"client_secret": {a.client.ClientSecret},
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		a.client.BaseURL, a.adminRealm)

	resp, err := a.client.postForm(ctx, tokenURL, data)
	if err != nil {
		return "", fmt.Errorf("admin token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("admin token response unreadable: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("admin token request failed with status %d", resp.StatusCode)
	}

	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil || ts.AccessToken == "" {
		return "", fmt.Errorf("admin token response malformed")
	}

	a.token = ts.AccessToken
	a.expiresAt = time.Now().Add(30 * time.Second) // conservative fallback
	if ts.ExpiresIn != nil {
		a.expiresAt = time.Now().Add(time.Duration(*ts.ExpiresIn)*time.Second - 30*time.Second)
	}

	return a.token, nil
}

// idFromLocation extracts the created resource id from a Location header,
// i.e. the path segment after the last separator.
func idFromLocation(location string) string {
	if location == "" {
		return ""
	}
	if u, err := url.Parse(location); err == nil {
		location = u.Path
	}
	location = strings.TrimSuffix(location, "/")
	if i := strings.LastIndex(location, "/"); i >= 0 {
		return location[i+1:]
	}
	return location
}
