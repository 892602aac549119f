package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only when the database answers a ping.
func Readyz(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		if err := pool.Ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
