package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/backoffice/internal/auth"
	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/http/handlers"
	"github.com/geocoder89/backoffice/internal/http/middlewares"
	"github.com/geocoder89/backoffice/internal/observability"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("backoffice"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.EdgeFilter())

	// wire up repositories
	sessionsRepo := postgres.NewSessionsRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool)
	rolesRepo := postgres.NewRolesRepo(pool)
	permissionsRepo := postgres.NewPermissionsRepo(pool)
	vendorsRepo := postgres.NewVendorsRepo(pool)
	productsRepo := postgres.NewProductsRepo(pool)
	specsRepo := postgres.NewProductSpecsRepo(pool)
	unitsRepo := postgres.NewUnitsRepo(pool)

	sessions := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL, sessionsRepo)
	guard := middlewares.NewGuard(sessions)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, sessions, prom, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo, rolesRepo)
	rolesHandler := handlers.NewRolesHandler(rolesRepo)
	permissionsHandler := handlers.NewPermissionsHandler(permissionsRepo)
	vendorsHandler := handlers.NewVendorsHandler(vendorsRepo)
	productsHandler := handlers.NewProductsHandler(productsRepo, unitsRepo)
	specsHandler := handlers.NewProductSpecsHandler(specsRepo)
	unitsHandler := handlers.NewUnitsHandler(unitsRepo)

	// health + metrics
	r.GET("/healthz", handlers.Healthz)
	r.GET("/readyz", handlers.Readyz(pool))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// landing targets for the edge filter
	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Back Office")
	})
	r.GET("/sign-in", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Sign in")
	})

	// auth
	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", middlewares.RequireJSON(), loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me)

	// permission-gated resources
	api := r.Group("/api", middlewares.RequireJSON())

	users := api.Group("/users")
	users.GET("", guard.RequirePermission("USER_READ"), usersHandler.List)
	users.POST("", guard.RequirePermission("USER_WRITE"), usersHandler.Create)
	users.PUT("", guard.RequirePermission("USER_WRITE"), usersHandler.Update)
	users.DELETE("", guard.RequirePermission("USER_WRITE"), usersHandler.Delete)

	roles := api.Group("/roles")
	roles.GET("", guard.RequirePermission("ROLE_READ"), rolesHandler.List)
	roles.PUT("", guard.RequirePermission("ROLE_WRITE"), rolesHandler.ReplacePermissions)
	roles.DELETE("", guard.RequirePermission("ROLE_WRITE"), rolesHandler.Delete)

	permissions := api.Group("/permissions")
	permissions.GET("", guard.RequirePermission("ROLE_READ"), permissionsHandler.List)
	permissions.DELETE("", guard.RequirePermission("ROLE_WRITE"), permissionsHandler.Delete)

	vendors := api.Group("/vendors")
	vendors.GET("", guard.RequirePermission("VENDOR_READ"), vendorsHandler.List)
	vendors.POST("", guard.RequirePermission("VENDOR_WRITE"), vendorsHandler.Create)
	vendors.PUT("", guard.RequirePermission("VENDOR_WRITE"), vendorsHandler.Update)
	vendors.DELETE("", guard.RequirePermission("VENDOR_WRITE"), vendorsHandler.Delete)

	products := api.Group("/products")
	products.GET("", guard.RequirePermission("PRODUCT_READ"), productsHandler.List)
	products.POST("", guard.RequirePermission("PRODUCT_WRITE"), productsHandler.Create)
	products.PUT("", guard.RequirePermission("PRODUCT_WRITE"), productsHandler.Update)
	products.DELETE("", guard.RequirePermission("PRODUCT_WRITE"), productsHandler.Delete)

	specs := api.Group("/product-specs")
	specs.GET("", guard.RequirePermission("PRODUCT_READ"), specsHandler.List)
	specs.POST("", guard.RequirePermission("PRODUCT_WRITE"), specsHandler.Create)
	specs.PUT("", guard.RequirePermission("PRODUCT_WRITE"), specsHandler.Update)
	specs.DELETE("", guard.RequirePermission("PRODUCT_WRITE"), specsHandler.Delete)

	units := api.Group("/units")
	units.GET("", guard.RequirePermission("UNIT_READ"), unitsHandler.List)
	units.POST("", guard.RequirePermission("UNIT_WRITE"), unitsHandler.Create)
	units.PUT("", guard.RequirePermission("UNIT_WRITE"), unitsHandler.Update)
	units.DELETE("", guard.RequirePermission("UNIT_WRITE"), unitsHandler.Delete)

	return r
}
