package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers (memory, sqlite) implement
// it; callers only ever see the narrow sub-repositories.
type Store interface {
	Identities() Identities

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing storage is still reachable.
	Ping(ctx context.Context) error
}

type Identities interface {
	// GetIdentityByID is the lookup behind every session resolution.
	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)

	// GetIdentityByLogin is used by the login flow.
	GetIdentityByLogin(ctx context.Context, login string) (domain.Identity, error)

	// CreateIdentity inserts a new identity. Both id and login must be unique.
	CreateIdentity(ctx context.Context, id domain.Identity) error

	// Count returns the number of registered identities.
	Count(ctx context.Context) (int, error)
}
