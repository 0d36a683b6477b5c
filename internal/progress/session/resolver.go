package session

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
)

// Key is the session value holding the caller's identity id.
const Key = "id"

// State is request-scoped session state with a typed get-by-key.
type State interface {
	String(key string) (string, bool)
}

// Claim returns the identity id stored in the session. A missing or empty
// claim means an anonymous caller.
func Claim(st State) (string, error) {
	id, ok := st.String(Key)
	if !ok || id == "" {
		return "", domain.Unauthorized("You need to log in!")
	}
	return id, nil
}

// Lookup resolves a claimed id against the identity registry.
func Lookup(ctx context.Context, id string, ids store.Identities) (domain.Identity, error) {
	ident, err := ids.GetIdentityByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Identity{}, domain.NotFound("Unknown user")
	case err != nil:
		return domain.Identity{}, domain.Internal("cannot look up user", err)
	}
	return ident, nil
}

// Resolve authenticates the session against the registry. It has no side
// effects and the returned identity is a copy.
func Resolve(ctx context.Context, st State, ids store.Identities) (domain.Identity, error) {
	id, err := Claim(st)
	if err != nil {
		return domain.Identity{}, err
	}
	return Lookup(ctx, id, ids)
}
