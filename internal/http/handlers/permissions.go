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

type PermissionsRepository interface {
	List(ctx context.Context) ([]rbac.Permission, error)
	DeleteByKey(ctx context.Context, key string) error
}

type PermissionsHandler struct {
	permissions PermissionsRepository
}

func NewPermissionsHandler(permissions PermissionsRepository) *PermissionsHandler {
	return &PermissionsHandler{permissions: permissions}
}

func (h *PermissionsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	permissions, err := h.permissions.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list permissions")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"permissions": permissions})
}

// Delete unlinks the permission from every role before removing it.
func (h *PermissionsHandler) Delete(ctx *gin.Context) {
	key := strings.ToUpper(strings.TrimSpace(ctx.Query("key")))

	if key == "" {
		RespondBadRequest(ctx, "Missing key", gin.H{"param": "key"})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.permissions.DeleteByKey(cctx, key); err != nil {
		if errors.Is(err, postgres.ErrPermissionNotFound) {
			RespondNotFound(ctx, "Permission not found")
			return
		}

		RespondInternal(ctx, "Could not delete permission")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
