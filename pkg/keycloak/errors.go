package keycloak

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUserExists reports that the provider already has a user with the
// submitted username or email (admin API returned 409).
var ErrUserExists = errors.New("keycloak: user already exists")

// AuthError reports rejected credentials during a password grant. The reason
// comes from the provider's error_description when one was returned and is
// safe to show to end users.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "keycloak: authentication failed: " + e.Reason
}

// UpstreamError reports that the provider was unreachable or answered with an
// unexpected status. Status is zero for transport-level failures.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keycloak: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("keycloak: %s failed with status %d", e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ProvisioningError reports a failed user creation or password reset for
// reasons other than duplication. Status is zero when the call never reached
// the provider.
type ProvisioningError struct {
	Status int
	Err    error
}

func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keycloak: provisioning failed: %v", e.Err)
	}
	return fmt.Sprintf("keycloak: provisioning failed with status %d", e.Status)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// extractErrorMessage pulls error_description (or error) out of a token
// endpoint error body. Unparseable bodies fall back to a generic message.
func extractErrorMessage(body []byte) string {
	var resp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.ErrorDescription != "" {
			return resp.ErrorDescription
		}
		if resp.Error != "" {
			return resp.Error
		}
	}
	return "Invalid credentials"
}
