package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/handler"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
)

// RegisterAdmin registers admin bootstrap, login and identity routes.
func RegisterAdmin(api *echo.Group, a *handler.AdminHandler, adminAuth echo.MiddlewareFunc, limits middleware.RateLimits) {
	g := api.Group("/admin")
	g.POST("/setup", a.Setup, limits.Registration.Middleware())
	g.POST("/login", a.Login, limits.Auth.Middleware())
	g.GET("/me", a.Me, adminAuth)
}
