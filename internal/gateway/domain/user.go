package domain

import "time"

// User is the local registry record for an identity that also exists in the
// provider. ExternalID is the provider's stable subject id for the user.
type User struct {
	ID         string
	Username   string
	Email      string
	FirstName  string
	LastName   string
	ExternalID string
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateUserRequest carries the fields needed to provision a user in both the
// provider and the local registry. Password is handed to the provider only and
// never persisted locally.
type CreateUserRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Enabled   *bool // nil means enabled
}

// UpdateUserRequest mutates the local record only. Nil fields are left
// untouched. Username and ExternalID are immutable through this path.
type UpdateUserRequest struct {
	Email     *string
	FirstName *string
	LastName  *string
	Enabled   *bool
}
