package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/auth"
	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/geocoder89/backoffice/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type SessionManager interface {
	CreateSession(ctx context.Context, userID int64) (string, time.Time, error)
	GetCurrentUser(ctx context.Context, rawToken string) (*user.CurrentUser, error)
	ClearSession(ctx context.Context, rawToken string) error
}

// LoginRecorder lets the handler count login outcomes without owning the
// metrics registry.
type LoginRecorder interface {
	RecordLogin(result string)
}

type AuthHandler struct {
	users    UserReader
	sessions SessionManager
	metrics  LoginRecorder
	cfg      config.Config
}

func NewAuthHandler(users UserReader, sessions SessionManager, metrics LoginRecorder, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		metrics:  metrics,
		cfg:      cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, email)

	// unknown email and wrong password produce the same response, so the
	// endpoint is not a user-existence oracle
	if err != nil || !security.VerifyPassword(req.Password, foundUser.PasswordHash) {
		h.recordLogin("denied")
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	raw, expiresAt, err := h.sessions.CreateSession(cctx, foundUser.ID)

	if err != nil {
		h.recordLogin("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, raw, expiresAt)
	h.recordLogin("ok")

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    foundUser.ID,
			"email": foundUser.Email,
			"name":  foundUser.Name,
			"role":  foundUser.RoleKey,
		},
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(auth.SessionCookie)

	if err == nil && raw != "" {
		cctx, cancel := config.WithTimeout(3 * time.Second)
		defer cancel()

		// best effort; the cookie is cleared regardless
		_ = h.sessions.ClearSession(cctx, raw)
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	raw, err := ctx.Cookie(auth.SessionCookie)

	if err != nil || raw == "" {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	u, err := h.sessions.GetCurrentUser(ctx.Request.Context(), raw)

	if err != nil {
		RespondInternal(ctx, "Could not resolve session")
		return
	}

	if u == nil {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          u.ID,
			"email":       u.Email,
			"name":        u.Name,
			"role":        u.RoleKey,
			"permissions": u.Permissions,
		},
	})
}

func (h *AuthHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		auth.SessionCookie,
		raw,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		auth.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
