package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/rbac"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleInUse blocks deletion while any user still references the role.
	ErrRoleInUse         = errors.New("role still assigned to users")
	ErrUnknownPermission = errors.New("unknown permission key")
)

type RolesRepo struct {
	pool *pgxpool.Pool
}

func NewRolesRepo(pool *pgxpool.Pool) *RolesRepo {
	return &RolesRepo{pool: pool}
}

func (r *RolesRepo) List(ctx context.Context) ([]rbac.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.key, r.name, COALESCE(r.description, ''),
		        p.id, p.key, p.name
		 FROM roles r
		 LEFT JOIN role_permissions rp ON rp.role_id = r.id
		 LEFT JOIN permissions p ON p.id = rp.permission_id
		 ORDER BY r.key ASC, p.key ASC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	roles := []rbac.RoleWithPermissions{}
	index := map[int64]int{}

	for rows.Next() {
		var (
			role     rbac.Role
			permID   *int64
			permKey  *string
			permName *string
		)

		err := rows.Scan(&role.ID, &role.Key, &role.Name, &role.Description, &permID, &permKey, &permName)

		if err != nil {
			return nil, err
		}

		i, ok := index[role.ID]

		if !ok {
			roles = append(roles, rbac.RoleWithPermissions{Role: role, Permissions: []rbac.Permission{}})
			i = len(roles) - 1
			index[role.ID] = i
		}

		if permID != nil {
			roles[i].Permissions = append(roles[i].Permissions, rbac.Permission{
				ID:   *permID,
				Key:  *permKey,
				Name: *permName,
			})
		}
	}

	return roles, rows.Err()
}

func (r *RolesRepo) GetByKey(ctx context.Context, key string) (rbac.Role, error) {
	var role rbac.Role

	err := r.pool.QueryRow(ctx,
		`SELECT id, key, name, COALESCE(description, '') FROM roles WHERE key = $1`,
		key,
	).Scan(&role.ID, &role.Key, &role.Name, &role.Description)

	if err != nil {
		if isNoRows(err) {
			return rbac.Role{}, ErrRoleNotFound
		}

		return rbac.Role{}, err
	}

	return role, nil
}

// ReplacePermissions swaps the role's permission set in one transaction so
// a concurrent reader never sees the role half-updated.
func (r *RolesRepo) ReplacePermissions(ctx context.Context, roleKey string, permissionKeys []string) (rbac.RoleWithPermissions, error) {
	role, err := r.GetByKey(ctx, roleKey)

	if err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	permIDs, err := r.resolvePermissionIDs(ctx, permissionKeys)

	if err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	for _, permID := range permIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			role.ID, permID,
		)

		if err != nil {
			return rbac.RoleWithPermissions{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	return r.getWithPermissions(ctx, role)
}

func (r *RolesRepo) resolvePermissionIDs(ctx context.Context, keys []string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, key FROM permissions WHERE key = ANY($1)`, keys)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	byKey := map[string]int64{}

	for rows.Next() {
		var (
			id  int64
			key string
		)

		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}

		byKey[key] = id
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(keys))

	for _, key := range keys {
		id, ok := byKey[key]

		if !ok {
			return nil, ErrUnknownPermission
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (r *RolesRepo) getWithPermissions(ctx context.Context, role rbac.Role) (rbac.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.key, p.name
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.key ASC`,
		role.ID,
	)

	if err != nil {
		return rbac.RoleWithPermissions{}, err
	}

	defer rows.Close()

	out := rbac.RoleWithPermissions{Role: role, Permissions: []rbac.Permission{}}

	for rows.Next() {
		var p rbac.Permission

		if err := rows.Scan(&p.ID, &p.Key, &p.Name); err != nil {
			return rbac.RoleWithPermissions{}, err
		}

		out.Permissions = append(out.Permissions, p)
	}

	return out, rows.Err()
}

// Delete refuses while users reference the role.
func (r *RolesRepo) Delete(ctx context.Context, key string) error {
	role, err := r.GetByKey(ctx, key)

	if err != nil {
		return err
	}

	var users int

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, role.ID).Scan(&users)

	if err != nil {
		return err
	}

	if users > 0 {
		return ErrRoleInUse
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, role.ID); err != nil {
		if isForeignKeyViolation(err) {
			return ErrRoleInUse
		}

		return err
	}

	return tx.Commit(ctx)
}
