package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/backoffice/internal/auth"
	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	GetCurrentUser(ctx context.Context, rawToken string) (*user.CurrentUser, error)
}

// Guard performs the real authorization decision for protected routes.
// The edge filter only checks cookie presence; these middlewares resolve
// the session and gate on permissions before any handler runs.
type Guard struct {
	sessions SessionResolver
}

func NewGuard(sessions SessionResolver) *Guard {
	return &Guard{sessions: sessions}
}

func (g *Guard) resolve(c *gin.Context) *user.CurrentUser {
	raw, err := c.Cookie(auth.SessionCookie)

	if err != nil || raw == "" {
		return nil
	}

	u, err := g.sessions.GetCurrentUser(c.Request.Context(), raw)

	if err != nil {
		// store failure, not an auth decision; still deny
		return nil
	}

	return u
}

// RequireAuth aborts with 401 unless a valid session resolves. The resolved
// user is stashed on the context for the handler.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := g.resolve(c)

		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Not authenticated",
				},
			})
			return
		}

		c.Set(ctxCurrentUser, u)
		c.Next()
	}
}

// RequirePermission is RequireAuth plus a permission membership test.
// It aborts before the handler, so a denied request performs no mutation.
func (g *Guard) RequirePermission(permissionKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := g.resolve(c)

		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Not authenticated",
				},
			})
			return
		}

		if !auth.HasPermission(u, permissionKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}

		c.Set(ctxCurrentUser, u)
		c.Next()
	}
}

// CurrentUserFromContext gives handlers the identity without a second lookup.
func CurrentUserFromContext(c *gin.Context) (*user.CurrentUser, bool) {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return nil, false
	}

	u, ok := v.(*user.CurrentUser)
	return u, ok
}
