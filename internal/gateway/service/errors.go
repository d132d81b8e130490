package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no local record exists for the given id.
	ErrNotFound = errors.New("service: user not found")

	// ErrUsernameTaken and ErrEmailTaken report a local uniqueness conflict
	// detected either by the pre-check or by the store's constraint.
	ErrUsernameTaken = errors.New("service: username already exists")
	ErrEmailTaken    = errors.New("service: email already exists")
)

// PartialProvisioningError reports that the remote provider accepted the user
// but the local write failed afterwards: the two systems have diverged and
// the provider-side record exists without a local counterpart. Callers can
// retry an idempotent "ensure local record" with the ExternalID.
type PartialProvisioningError struct {
	ExternalID string
	Err        error
}

func (e *PartialProvisioningError) Error() string {
	return fmt.Sprintf("service: user provisioned remotely as %s but local write failed: %v",
		e.ExternalID, e.Err)
}

func (e *PartialProvisioningError) Unwrap() error { return e.Err }
