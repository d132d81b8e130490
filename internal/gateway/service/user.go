package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/idgate/internal/gateway/domain"
	"github.com/aussiebroadwan/idgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/idgate/internal/gateway/store"
	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
	"github.com/google/uuid"
)

// IdentityProvisioner creates a user in the identity provider and returns the
// provider's stable id. *keycloak.AdminClient implements this; tests use fakes.
type IdentityProvisioner interface {
	CreateUser(ctx context.Context, profile keycloak.UserProfile, password string) (string, error)
}

// UserService orchestrates user provisioning across the identity provider and
// the local registry. Creation is remote-then-local: the provider call must
// succeed before anything is written locally, so a local record can never
// reference a provider identity that doesn't exist.
type UserService struct {
	Store       store.Store
	Provisioner IdentityProvisioner
}

// CreateUser provisions a user in the provider and the local registry.
//
// The local pre-check rejects obviously-doomed requests before any remote
// call. Between the pre-check and the local write there is a race window;
// the store's UNIQUE constraints are the final authority and a racing
// duplicate surfaces as the matching conflict error. If the local write
// fails for any other reason after the remote create succeeded, the two
// systems have diverged and the caller gets a *PartialProvisioningError.
func (s *UserService) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if err := s.checkAvailable(ctx, req.Username, req.Email); err != nil {
		return domain.User{}, err
	}

	// Remote first. A provisioning failure propagates unchanged and nothing
	// is written locally.
	externalID, err := s.Provisioner.CreateUser(ctx, keycloak.UserProfile{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Enabled:   req.Enabled,
	}, req.Password)
	if err != nil {
		metrics.ProvisioningAttempts.WithLabelValues("remote_failed").Inc()
		return domain.User{}, err
	}
	log.Info("user created in identity provider", "external_id", externalID)

	user := domain.User{
		ID:         uuid.NewString(),
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ExternalID: externalID,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		// The provider-side record exists either way; say so in the logs
		// before deciding what the caller sees.
		log.Error("local write failed after remote provisioning",
			"external_id", externalID, "err", err)
		metrics.ProvisioningAttempts.WithLabelValues("local_failed").Inc()

		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, s.classifyConflict(ctx, req, externalID, err)
		}
		return domain.User{}, &PartialProvisioningError{ExternalID: externalID, Err: err}
	}

	metrics.ProvisioningAttempts.WithLabelValues("success").Inc()
	log.Info("user saved to registry", "user_id", user.ID, "external_id", externalID)

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return user, nil // record exists; timestamps just weren't re-read
	}
	return created, nil
}

// checkAvailable is the pre-remote uniqueness check.
func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return nil
}

// classifyConflict turns a write-time uniqueness violation into the matching
// conflict error. A violation on external_id means some record already tracks
// the provider identity we just created, which is a divergence rather than a
// user-correctable conflict.
func (s *UserService) classifyConflict(ctx context.Context, req domain.CreateUserRequest, externalID string, cause error) error {
	if _, err := s.Store.Users().GetUserByUsername(ctx, req.Username); err == nil {
		return ErrUsernameTaken
	}
	if _, err := s.Store.Users().GetUserByEmail(ctx, req.Email); err == nil {
		return ErrEmailTaken
	}
	return &PartialProvisioningError{ExternalID: externalID, Err: cause}
}

// UpdateUser mutates the local record only; the provider is never called.
// Username and external id are immutable through this path.
func (s *UserService) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.Store.Users().GetUserByEmail(ctx, *req.Email); err == nil {
			return domain.User{}, ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, id)
}

// DeleteUser removes the local record only. The provider-side identity is
// deliberately left untouched; the provider owns credential lifecycle.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// GetUserByID fetches a user by local id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// GetUserByExternalID fetches the record tracking a provider subject id.
func (s *UserService) GetUserByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// ListUsers returns all local records, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
