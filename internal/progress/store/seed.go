package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/pkg/cryptox"
)

// Seed registers the given identities, hashing their passwords. Entries whose
// id already exists are skipped so seeding a persistent store twice is safe.
// It returns the number of identities actually created.
func Seed(ctx context.Context, ids Identities, seeds []domain.Seed) (int, error) {
	created := 0
	for _, s := range seeds {
		if _, err := ids.GetIdentityByID(ctx, s.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("lookup seed %q: %w", s.ID, err)
		}

		hash, err := cryptox.HashPassword(s.Password)
		if err != nil {
			return created, fmt.Errorf("hash seed %q: %w", s.ID, err)
		}

		err = ids.CreateIdentity(ctx, domain.Identity{
			ID:           s.ID,
			Login:        s.Login,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return created, fmt.Errorf("create seed %q: %w", s.ID, err)
		}
		created++
	}
	return created, nil
}
