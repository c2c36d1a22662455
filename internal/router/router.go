package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/handler"    // handlers implementing each endpoint
	"github.com/iliyamo/opportunity-hub/internal/middleware" // auth, rate limiting, caching and request logging
	"github.com/iliyamo/opportunity-hub/internal/revocation"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

// Deps is everything the route table needs.  Cache may be nil.
type Deps struct {
	Log        zerolog.Logger
	Production bool

	Tokens  *utils.TokenService
	Revoked revocation.Registry
	Users   middleware.UserLoader
	Admins  middleware.AdminLoader

	Limits middleware.RateLimits
	Cache  echo.MiddlewareFunc
	Ready  map[string]func(ctx context.Context) error

	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Profile       *handler.ProfileHandler
	Community     *handler.CommunityHandler
	Opportunities *handler.OpportunityHandler
	Admin         *handler.AdminHandler
}

// New builds the Echo instance: error rendering, validation, the global
// middleware chain and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log, d.Production)
	e.Validator = handler.NewValidator()

	// request id first so every later log line can carry it
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Recover(d.Log))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes registers the health endpoints and every /api group.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	if d.Ready != nil {
		e.GET("/readyz", handler.Ready(d.Ready))
	}

	// All API routes share the general rate limit class.
	api := e.Group("/api", d.Limits.General.Middleware())

	userAuth := middleware.UserAuth(d.Tokens, d.Revoked, d.Users, d.Log)
	adminAuth := middleware.AdminAuth(d.Tokens, d.Admins)
	cache := d.Cache
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	RegisterAuth(api, d.Auth, userAuth, d.Limits)
	RegisterUsers(api, d.User, d.Profile, userAuth)
	RegisterCommunity(api, d.Community, cache)
	RegisterOpportunities(api, d.Opportunities, adminAuth, cache)
	RegisterAdmin(api, d.Admin, adminAuth, d.Limits)
}
