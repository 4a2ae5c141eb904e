// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/shop-api/internal/config"
	"github.com/iliyamo/shop-api/internal/handler"
	"github.com/iliyamo/shop-api/internal/middleware"
	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/utils"
)

// RegisterRoutes mounts routes that carry no authentication at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the credential endpoints under /api/v1/auth.  The whole
// group sits behind the Redis token bucket; refresh and logout additionally
// pass through their respective token gates so the handler always runs with
// a resolved actor.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, access, refresh utils.TokenProfile,
	users middleware.UserSource, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api/v1/auth", middleware.NewTokenBucket(rl, rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh, middleware.RefreshAuth(refresh, users))
	g.POST("/logout", a.Logout, middleware.AccessAuth(access, users))
}

// RegisterUsers mounts the account endpoints under /api/v1/users.  Every
// route requires a valid access token; the listing is further restricted to
// admins.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, access utils.TokenProfile, users middleware.UserSource) {
	g := e.Group("/api/v1/users", middleware.AccessAuth(access, users))
	g.GET("/me", u.Me)
	g.PATCH("/me", u.UpdateProfile)
	g.POST("/me/password", u.ChangePassword)
	g.DELETE("/me", u.DeleteAccount)
	g.GET("", u.List, middleware.RequireRole(model.RoleAdmin))
}

// RegisterCatalog mounts category and product endpoints under /api/v1.
// Reads are public and response-cached; writes require an authenticated
// admin.
func RegisterCatalog(e *echo.Echo, ch *handler.CategoryHandler, ph *handler.ProductHandler,
	access utils.TokenProfile, users middleware.UserSource, cache config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cache, rdb)
	admin := []echo.MiddlewareFunc{
		middleware.AccessAuth(access, users),
		middleware.RequireRole(model.RoleAdmin),
	}

	e.GET("/api/v1/categories", ch.List, cached)
	e.GET("/api/v1/categories/:id", ch.Get, cached)
	e.GET("/api/v1/categories/slug/:slug", ch.GetBySlug, cached)
	e.POST("/api/v1/categories", ch.Create, admin...)
	e.PATCH("/api/v1/categories/:id", ch.Update, admin...)
	e.DELETE("/api/v1/categories/:id", ch.Delete, admin...)

	e.GET("/api/v1/products", ph.List, cached)
	e.GET("/api/v1/products/:id", ph.Get, cached)
	e.POST("/api/v1/products", ph.Create, admin...)
	e.PATCH("/api/v1/products/:id", ph.Update, admin...)
	e.DELETE("/api/v1/products/:id", ph.Delete, admin...)
}
