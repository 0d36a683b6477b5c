// Package memory is an in-process identity registry. It stands in for a real
// persistent registry and is the default driver.
package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]domain.Identity
	byLogin map[string]string // login -> id
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[string]domain.Identity),
		byLogin: make(map[string]string),
	}
}

func (s *Store) Identities() store.Identities { return &identitiesRepo{s: s} }

// ApplyMigrations is a no-op; there is no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type identitiesRepo struct {
	s *Store
}

func (r *identitiesRepo) GetIdentityByID(_ context.Context, id string) (domain.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ident, ok := r.s.byID[id]
	if !ok {
		return domain.Identity{}, store.ErrNotFound
	}
	return ident, nil
}

func (r *identitiesRepo) GetIdentityByLogin(_ context.Context, login string) (domain.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byLogin[login]
	if !ok {
		return domain.Identity{}, store.ErrNotFound
	}
	return r.s.byID[id], nil
}

func (r *identitiesRepo) CreateIdentity(_ context.Context, ident domain.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byID[ident.ID]; ok {
		return store.ErrAlreadyExists
	}
	if _, ok := r.s.byLogin[ident.Login]; ok {
		return store.ErrAlreadyExists
	}

	r.s.byID[ident.ID] = ident
	r.s.byLogin[ident.Login] = ident.ID
	return nil
}

func (r *identitiesRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.byID), nil
}
