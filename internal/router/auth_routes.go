package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/handler"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
)

// RegisterAuth registers the session endpoints under /api/auth.  Register and
// login carry their own, stricter rate limit classes on top of the general
// one.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, userAuth echo.MiddlewareFunc, limits middleware.RateLimits) {
	g := api.Group("/auth")

	g.POST("/register", a.Register, limits.Registration.Middleware())
	g.POST("/login", a.Login, limits.Auth.Middleware())
	g.POST("/refresh", a.Refresh)

	g.POST("/logout", a.Logout, userAuth)
	g.POST("/revoke-refresh", a.RevokeRefresh, userAuth)
	g.POST("/revoke-all", a.RevokeAll, userAuth)
	g.GET("/validate", a.Validate, userAuth)
}
