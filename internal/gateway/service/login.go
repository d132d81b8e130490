package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/idgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

// CredentialExchanger turns a username/password pair into tokens.
// *keycloak.Client implements this via the password grant.
type CredentialExchanger interface {
	PasswordGrant(ctx context.Context, username, password string) (*keycloak.TokenSet, error)
}

// LoginService fronts the provider's token endpoint for interactive logins.
type LoginService struct {
	Exchanger CredentialExchanger
}

// Login exchanges credentials for a token set. Rejected credentials surface
// as *keycloak.AuthError, provider trouble as *keycloak.UpstreamError; there
// are no retries, a failed login is the caller's to handle.
func (s *LoginService) Login(ctx context.Context, username, password string) (*keycloak.TokenSet, error) {
	log := slogx.FromContext(ctx)

	ts, err := s.Exchanger.PasswordGrant(ctx, username, password)
	if err != nil {
		var authErr *keycloak.AuthError
		if errors.As(err, &authErr) {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			log.Warn("login rejected", "username", username)
		} else {
			metrics.LoginAttempts.WithLabelValues("upstream_error").Inc()
			log.Error("login failed upstream", "username", username, "err", err)
		}
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return ts, nil
}
