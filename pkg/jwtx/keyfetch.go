package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// FetchJWKS downloads a JWKS document from the given URL, typically the
// provider's /protocol/openid-connect/certs endpoint.
func FetchJWKS(ctx context.Context, hc *http.Client, url string) (JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: failed to create jwks request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: jwks fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return JWKS{}, fmt.Errorf("jwtx: jwks fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: jwks body unreadable: %w", err)
	}

	var jwks JWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return JWKS{}, fmt.Errorf("jwtx: jwks body malformed: %w", err)
	}

	return jwks, nil
}

// RefreshKeySet fetches the JWKS at url and swaps it into keys.
func RefreshKeySet(ctx context.Context, hc *http.Client, url string, keys *KeySet) error {
	jwks, err := FetchJWKS(ctx, hc, url)
	if err != nil {
		return err
	}
	return keys.ResetFromJWKS(jwks)
}
