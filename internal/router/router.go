// Package router maps HTTP routes to handlers and declares the access
// policy of every operation in one place.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/roadprice/valuation/internal/auth"
	"github.com/roadprice/valuation/internal/config"
	"github.com/roadprice/valuation/internal/handler"
	"github.com/roadprice/valuation/internal/middleware"
	"github.com/roadprice/valuation/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Engine   *auth.Engine
	Accounts *handler.AccountHandler
	Reports  *handler.ReportHandler
	Redis    *redis.Client
	Cache    config.CacheConfig
	Rate     config.RateLimitConfig
}

// Register wires all routes. Each operation states its policy
// explicitly: Public routes never touch a token, role-gated routes run
// the full authorize pipeline before the handler.
func Register(e *echo.Echo, d Deps) {
	public := middleware.Access(d.Engine, auth.Public())
	anyRole := middleware.Access(d.Engine, auth.RequireRoles(model.RoleAdmin, model.RoleUser))
	adminOnly := middleware.Access(d.Engine, auth.RequireRoles(model.RoleAdmin))

	limited := middleware.NewTokenBucket(d.Rate, d.Redis)
	cached := middleware.NewRedisCache(d.Cache, d.Redis)

	e.GET("/healthz", handler.Health)

	account := e.Group("/v1/account")
	account.POST("/signup", d.Accounts.Signup, public, limited)
	account.POST("/signin", d.Accounts.Signin, public, limited)
	account.GET("/:id", d.Accounts.Fetch, anyRole)
	account.PATCH("/:id", d.Accounts.Update, anyRole)
	account.DELETE("/:id", d.Accounts.Remove, adminOnly)

	reports := e.Group("/v1/reports")
	reports.GET("/estimate", d.Reports.Estimate, public, cached)
	reports.POST("", d.Reports.Create, anyRole)
	reports.GET("", d.Reports.List, anyRole)
	reports.PATCH("/:id", d.Reports.Approve, adminOnly)
}
