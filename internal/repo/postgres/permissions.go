package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/rbac"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPermissionNotFound = errors.New("permission not found")

type PermissionsRepo struct {
	pool *pgxpool.Pool
}

func NewPermissionsRepo(pool *pgxpool.Pool) *PermissionsRepo {
	return &PermissionsRepo{pool: pool}
}

func (r *PermissionsRepo) List(ctx context.Context) ([]rbac.Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, key, name FROM permissions ORDER BY key ASC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	permissions := []rbac.Permission{}

	for rows.Next() {
		var p rbac.Permission

		if err := rows.Scan(&p.ID, &p.Key, &p.Name); err != nil {
			return nil, err
		}

		permissions = append(permissions, p)
	}

	return permissions, rows.Err()
}

// DeleteByKey unlinks the permission from every role before removing it.
func (r *PermissionsRepo) DeleteByKey(ctx context.Context, key string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM role_permissions
		 WHERE permission_id IN (SELECT id FROM permissions WHERE key = $1)`,
		key,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM permissions WHERE key = $1`, key)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrPermissionNotFound
	}

	return tx.Commit(ctx)
}
