package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/rbac"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type RolesRepository interface {
	List(ctx context.Context) ([]rbac.RoleWithPermissions, error)
	ReplacePermissions(ctx context.Context, roleKey string, permissionKeys []string) (rbac.RoleWithPermissions, error)
	Delete(ctx context.Context, key string) error
}

type RolesHandler struct {
	roles RolesRepository
}

func NewRolesHandler(roles RolesRepository) *RolesHandler {
	return &RolesHandler{roles: roles}
}

func (h *RolesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	roles, err := h.roles.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list roles")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"roles": roles})
}

type ReplacePermissionsRequest struct {
	Key         string   `json:"key" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

// ReplacePermissions swaps a role's permission set atomically; unknown
// keys reject the whole request.
func (h *RolesHandler) ReplacePermissions(ctx *gin.Context) {
	var req ReplacePermissionsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	key := strings.ToUpper(strings.TrimSpace(req.Key))

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	role, err := h.roles.ReplacePermissions(cctx, key, req.Permissions)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrRoleNotFound):
			RespondNotFound(ctx, "Role not found")
		case errors.Is(err, postgres.ErrUnknownPermission):
			RespondValidation(ctx, "Unknown permission key", gin.H{"permissions": req.Permissions})
		default:
			RespondInternal(ctx, "Could not update role permissions")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"role": role})
}

func (h *RolesHandler) Delete(ctx *gin.Context) {
	key := strings.ToUpper(strings.TrimSpace(ctx.Query("key")))

	if key == "" {
		RespondBadRequest(ctx, "Missing key", gin.H{"param": "key"})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.roles.Delete(cctx, key); err != nil {
		switch {
		case errors.Is(err, postgres.ErrRoleNotFound):
			RespondNotFound(ctx, "Role not found")
		case errors.Is(err, postgres.ErrRoleInUse):
			RespondConflict(ctx, "Role is still assigned to users")
		default:
			RespondInternal(ctx, "Could not delete role")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
