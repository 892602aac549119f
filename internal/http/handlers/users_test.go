package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/backoffice/internal/domain/rbac"
	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/geocoder89/backoffice/internal/http/handlers"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

// Fake repository implementations of the handlers.UsersRepository interface

type fakeUsersRepo struct {
	listFn   func(ctx context.Context) ([]user.User, error)
	createFn func(ctx context.Context, email, name, passwordHash string, roleID int64) (user.User, error)
	updateFn func(ctx context.Context, id int64, name, passwordHash *string, roleID *int64) (user.User, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []user.User{}, nil
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, name, passwordHash string, roleID int64) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, name, passwordHash, roleID)
	}
	return user.User{ID: 1, Email: email, Name: name, RoleID: roleID}, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id int64, name, passwordHash *string, roleID *int64) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, name, passwordHash, roleID)
	}
	return user.User{ID: id}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeRoleResolver struct {
	getByKeyFn func(ctx context.Context, key string) (rbac.Role, error)
}

func (f *fakeRoleResolver) GetByKey(ctx context.Context, key string) (rbac.Role, error) {
	if f.getByKeyFn != nil {
		return f.getByKeyFn(ctx, key)
	}
	return rbac.Role{ID: 2, Key: key}, nil
}

func usersRouter(users *fakeUsersRepo, roles *fakeRoleResolver) *gin.Engine {
	h := handlers.NewUsersHandler(users, roles)

	r := gin.New()
	r.GET("/api/users", h.List)
	r.POST("/api/users", h.Create)
	r.PUT("/api/users", h.Update)
	r.DELETE("/api/users", h.Delete)

	return r
}

func TestCreateUser(t *testing.T) {
	staffRole := &fakeRoleResolver{getByKeyFn: func(_ context.Context, key string) (rbac.Role, error) {
		if key == "STAFF" {
			return rbac.Role{ID: 3, Key: "STAFF", Name: "Staff"}, nil
		}
		return rbac.Role{}, postgres.ErrRoleNotFound
	}}

	tests := []struct {
		name       string
		body       gin.H
		repo       *fakeUsersRepo
		wantStatus int
	}{
		{
			name:       "created",
			body:       gin.H{"email": "new@example.com", "password": "longenough", "role": "STAFF"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown role",
			body:       gin.H{"email": "new@example.com", "password": "longenough", "role": "WIZARD"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "short password",
			body:       gin.H{"email": "new@example.com", "password": "short", "role": "STAFF"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       gin.H{"email": "not-an-email", "password": "longenough", "role": "STAFF"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: gin.H{"email": "dup@example.com", "password": "longenough", "role": "STAFF"},
			repo: &fakeUsersRepo{createFn: func(context.Context, string, string, string, int64) (user.User, error) {
				return user.User{}, postgres.ErrEmailAlreadyUsed
			}},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := usersRouter(tt.repo, staffRole)

			w := postJSON(r, "/api/users", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	var gotHash string

	repo := &fakeUsersRepo{createFn: func(_ context.Context, _, _, passwordHash string, _ int64) (user.User, error) {
		gotHash = passwordHash
		return user.User{ID: 1}, nil
	}}

	r := usersRouter(repo, &fakeRoleResolver{})

	w := postJSON(r, "/api/users", gin.H{"email": "new@example.com", "password": "supersecret", "role": "STAFF"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if gotHash == "" || gotHash == "supersecret" {
		t.Fatalf("plaintext or empty password stored: %q", gotHash)
	}
	if !strings.Contains(gotHash, ":") {
		t.Errorf("hash %q missing salt separator", gotHash)
	}
}

func TestUpdateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       gin.H
		repo       *fakeUsersRepo
		wantStatus int
	}{
		{
			name:       "rename",
			body:       gin.H{"id": 5, "name": "New Name"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing id",
			body:       gin.H{"name": "New Name"},
			repo:       &fakeUsersRepo{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			body: gin.H{"id": 404, "name": "Ghost"},
			repo: &fakeUsersRepo{updateFn: func(context.Context, int64, *string, *string, *int64) (user.User, error) {
				return user.User{}, postgres.ErrUserNotFound
			}},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := usersRouter(tt.repo, &fakeRoleResolver{})

			w := putJSON(r, "/api/users", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		repo       *fakeUsersRepo
		wantStatus int
	}{
		{"deleted", "?id=5", &fakeUsersRepo{}, http.StatusOK},
		{"missing id", "", &fakeUsersRepo{}, http.StatusBadRequest},
		{"garbage id", "?id=abc", &fakeUsersRepo{}, http.StatusBadRequest},
		{
			"not found", "?id=404",
			&fakeUsersRepo{deleteFn: func(context.Context, int64) error {
				return postgres.ErrUserNotFound
			}},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := usersRouter(tt.repo, &fakeRoleResolver{})

			req := httptest.NewRequest(http.MethodDelete, "/api/users"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
