package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/rbac"
	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/geocoder89/backoffice/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersRepository interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, email, name, passwordHash string, roleID int64) (user.User, error)
	Update(ctx context.Context, id int64, name, passwordHash *string, roleID *int64) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type RoleResolver interface {
	GetByKey(ctx context.Context, key string) (rbac.Role, error)
}

type UsersHandler struct {
	users UsersRepository
	roles RoleResolver
}

func NewUsersHandler(users UsersRepository, roles RoleResolver) *UsersHandler {
	return &UsersHandler{users: users, roles: roles}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	role, err := h.roles.GetByKey(cctx, strings.ToUpper(strings.TrimSpace(req.Role)))

	if err != nil {
		if errors.Is(err, postgres.ErrRoleNotFound) {
			RespondValidation(ctx, "Unknown role", gin.H{"role": req.Role})
			return
		}

		RespondInternal(ctx, "Could not resolve role")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not hash password")
		return
	}

	created, err := h.users.Create(cctx, strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Name), hash, role.ID)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "Email already in use")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": created})
}

type UpdateUserRequest struct {
	ID       int64   `json:"id" binding:"required,gt=0"`
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role"`
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	var roleID *int64

	if req.Role != nil {
		role, err := h.roles.GetByKey(cctx, strings.ToUpper(strings.TrimSpace(*req.Role)))

		if err != nil {
			if errors.Is(err, postgres.ErrRoleNotFound) {
				RespondValidation(ctx, "Unknown role", gin.H{"role": *req.Role})
				return
			}

			RespondInternal(ctx, "Could not resolve role")
			return
		}

		roleID = &role.ID
	}

	var passwordHash *string

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not hash password")
			return
		}

		passwordHash = &hash
	}

	updated, err := h.users.Update(cctx, req.ID, req.Name, passwordHash, roleID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

// Delete removes the user and, through the foreign key cascade, every
// session that user holds.
func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := queryID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// queryID parses the ?id= query parameter shared by the delete endpoints.
func queryID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Query("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Missing or invalid id", gin.H{"param": "id"})
		return 0, false
	}

	return id, true
}
