package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
)

type identitiesRepo struct {
	db *sql.DB
}

const selectIdentity = `SELECT id, login, password_hash, created_at FROM identities`

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, selectIdentity+` WHERE id = ?`, id)
	return scanIdentity(row)
}

func (r *identitiesRepo) GetIdentityByLogin(ctx context.Context, login string) (domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, selectIdentity+` WHERE login = ?`, login)
	return scanIdentity(row)
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, ident domain.Identity) error {
	createdAt := ident.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, login, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		ident.ID, ident.Login, ident.PasswordHash, createdAt.Unix(),
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanIdentity(row *sql.Row) (domain.Identity, error) {
	var (
		ident     domain.Identity
		createdAt int64
	)
	if err := row.Scan(&ident.ID, &ident.Login, &ident.PasswordHash, &createdAt); err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	ident.CreatedAt = time.Unix(createdAt, 0).UTC()
	return ident, nil
}
