package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

const userColumns = `u.id, u.email, u.name, u.password_hash, u.role_id, r.key, r.name, u.created_at`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var (
		u    user.User
		name *string
	)

	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.RoleID, &u.RoleKey, &u.RoleName, &u.CreatedAt)

	if err != nil {
		return user.User{}, err
	}

	if name != nil {
		u.Name = *name
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 JOIN roles r ON r.id = u.role_id
		 WHERE u.email = $1`,
		email,
	))

	if err != nil {
		if isNoRows(err) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 JOIN roles r ON r.id = u.role_id
		 WHERE u.id = $1`,
		id,
	))

	if err != nil {
		if isNoRows(err) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 JOIN roles r ON r.id = u.role_id
		 ORDER BY u.created_at DESC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users := []user.User{}

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *UsersRepo) Create(ctx context.Context, email, name, passwordHash string, roleID int64) (user.User, error) {
	var id int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4)
		 RETURNING id`,
		email, name, passwordHash, roleID,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return r.GetByID(ctx, id)
}

// Update patches only the provided fields; nil pointers leave columns alone.
func (r *UsersRepo) Update(ctx context.Context, id int64, name, passwordHash *string, roleID *int64) (user.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET name = COALESCE(NULLIF($2, ''), name),
		     password_hash = COALESCE($3, password_hash),
		     role_id = COALESCE($4, role_id)
		 WHERE id = $1`,
		id, deref(name), passwordHash, roleID,
	)

	if err != nil {
		return user.User{}, err
	}

	if tag.RowsAffected() == 0 {
		return user.User{}, ErrUserNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the user; session rows follow via ON DELETE CASCADE.
func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
