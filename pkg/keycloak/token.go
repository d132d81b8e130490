package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PasswordGrant exchanges a username/password pair for tokens using the
// OAuth2 resource owner password grant against the realm's token endpoint.
//
// 400/401 responses become *AuthError with the provider's error_description;
// everything else unexpected (bad status, malformed body, transport failure)
// becomes *UpstreamError. Failures are surfaced immediately, never retried.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*TokenSet, error) {
	data := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.ClientID},
		"username":   {username},
		"password":   {password},
	}
	if c.ClientSecret != "" {
		data.Set("client_secret", c.ClientSecret)
	}

	resp, err := c.postForm(ctx, c.TokenURL(), data)
	if err != nil {
		return nil, &UpstreamError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: "token exchange", Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return parseTokenSet(body, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Reason: extractErrorMessage(body)}
	default:
		return nil, &UpstreamError{Op: "token exchange", Status: resp.StatusCode}
	}
}

func parseTokenSet(body []byte, status int) (*TokenSet, error) {
	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, &UpstreamError{Op: "token exchange", Status: status, Err: err}
	}
	if ts.AccessToken == "" {
		return nil, &UpstreamError{
			Op:     "token exchange",
			Status: status,
			Err:    fmt.Errorf("response missing access_token"),
		}
	}
	if ts.TokenType == "" {
		ts.TokenType = "Bearer"
	}
	return &ts, nil
}

func (c *Client) postForm(ctx context.Context, rawURL string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		rawURL,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
