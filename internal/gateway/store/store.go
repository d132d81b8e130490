package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/idgate/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. The registry is the only mutable shared resource in the
// gateway; its UNIQUE constraints on username, email and external_id are the
// final authority on duplicates, regardless of any service-level pre-check.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by local id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used by the pre-check on the create path.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by the pre-check on the create and update paths.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByExternalID looks up the record for a provider subject id.
	GetUserByExternalID(ctx context.Context, externalID string) (domain.User, error)

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user. A UNIQUE violation on username, email
	// or external_id surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser overwrites email, first_name, last_name and enabled and
	// bumps updated_at. Username and external_id are never written.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser removes the local record only.
	DeleteUser(ctx context.Context, id string) error
}
