package gatewaysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Session is an authenticated view over the gateway's admin endpoints.
// The caller is responsible for token lifetime; the gateway does not
// refresh tokens on the client's behalf.
type Session struct {
	client      *SDKClient
	accessToken string
}

// AccessToken returns the bearer token backing this session.
func (s *Session) AccessToken() string { return s.accessToken }

// GetUserInfo returns the verified claims for the session's token together
// with the matching local registry record, if any.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/userinfo", nil)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreateUser provisions a user in the identity provider and the local registry.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserRecord, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/users", req)
	if err != nil {
		return nil, err
	}

	var user UserRecord
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user in the local registry.
func (s *Session) ListUsers(ctx context.Context) (*UserList, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/users", nil)
	if err != nil {
		return nil, err
	}

	var list UserList
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUser fetches a single registry user by id.
func (s *Session) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var user UserRecord
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the local registry record for a user.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserRecord, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPut, "/v1/auth/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var user UserRecord
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user's local registry record.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/auth/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *Session) doAuthJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return s.doAuthRequest(ctx, method, path, bytes.NewReader(body), jsonHeaders)
}

func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers ...map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	for _, hs := range headers {
		for key, value := range hs {
			req.Header.Set(key, value)
		}
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
