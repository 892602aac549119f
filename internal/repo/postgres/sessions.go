package postgres

import (
	"context"

	"github.com/geocoder89/backoffice/internal/auth"
	"github.com/geocoder89/backoffice/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsRepo persists session records keyed by token hash. It satisfies
// auth.SessionStore.
type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SessionsRepo) Create(ctx context.Context, rec auth.Record) error {
	return r.observe("sessions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (token_hash, user_id, expires_at)
			 VALUES ($1, $2, $3)`,
			rec.TokenHash, rec.UserID, rec.ExpiresAt,
		)

		return err
	})
}

// GetByTokenHash loads the session together with its user, role, and the
// role's permission keys in one round trip.
func (r *SessionsRepo) GetByTokenHash(ctx context.Context, tokenHash string) (auth.Record, error) {
	var (
		rec  auth.Record
		name *string
	)

	err := r.observe("sessions.get", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT s.token_hash, s.user_id, s.expires_at,
			        u.email, u.name, r.key, r.name,
			        COALESCE(array_agg(p.key ORDER BY p.key) FILTER (WHERE p.key IS NOT NULL), '{}')
			 FROM sessions s
			 JOIN users u ON u.id = s.user_id
			 JOIN roles r ON r.id = u.role_id
			 LEFT JOIN role_permissions rp ON rp.role_id = r.id
			 LEFT JOIN permissions p ON p.id = rp.permission_id
			 WHERE s.token_hash = $1
			 GROUP BY s.token_hash, s.user_id, s.expires_at, u.email, u.name, r.key, r.name`,
			tokenHash,
		).Scan(
			&rec.TokenHash,
			&rec.UserID,
			&rec.ExpiresAt,
			&rec.User.Email,
			&name,
			&rec.User.RoleKey,
			&rec.User.RoleName,
			&rec.User.Permissions,
		)

		if err != nil && isNoRows(err) {
			return auth.ErrSessionNotFound
		}

		return err
	})

	if err != nil {
		return auth.Record{}, err
	}

	rec.User.ID = rec.UserID
	if name != nil {
		rec.User.Name = *name
	}

	return rec, nil
}

func (r *SessionsRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.observe("sessions.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return auth.ErrSessionNotFound
		}

		return nil
	})
}
