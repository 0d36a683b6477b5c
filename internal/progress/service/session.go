package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/metrics"
	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"github.com/aussiebroadwan/readprogress/pkg/cryptox"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
)

// ErrInvalidCredentials covers both an unknown login and a wrong password.
var ErrInvalidCredentials = domain.Unauthorized("invalid login or password")

// SessionService checks credentials for the login endpoint.
type SessionService struct {
	State *state.Container

	dummyOnce sync.Once
	dummyHash string
}

// Authenticate returns the identity whose login and password match. Only the
// lookup holds the state lock; the password hash is checked after release.
func (s *SessionService) Authenticate(ctx context.Context, login, password string) (domain.Identity, error) {
	l := slogx.FromContext(ctx)

	ident, err := state.With(ctx, s.State, func(srv *state.Server) (domain.Identity, error) {
		return srv.Identities.GetIdentityByLogin(ctx, login)
	})
	if errors.Is(err, store.ErrNotFound) {
		// Burn a hash anyway so unknown logins cost the same as bad passwords.
		_ = cryptox.VerifyPassword(password, s.dummy())
		l.Info("login failed", slog.String("login", login), slog.String("reason", "unknown login"))
		metrics.RecordLogin(false)
		return domain.Identity{}, ErrInvalidCredentials
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return domain.Identity{}, err
	}
	if err != nil {
		return domain.Identity{}, domain.Internal("cannot look up user", err)
	}

	if err := cryptox.VerifyPassword(password, ident.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("stored password hash unreadable", slog.String("user_id", ident.ID), slog.Any("err", err))
		}
		l.Info("login failed", slog.String("login", login), slog.String("reason", "bad password"))
		metrics.RecordLogin(false)
		return domain.Identity{}, ErrInvalidCredentials
	}

	l.Info("login succeeded", slog.String("user_id", ident.ID))
	metrics.RecordLogin(true)
	return ident, nil
}

func (s *SessionService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = cryptox.HashPassword("not-a-real-password")
	})
	return s.dummyHash
}
