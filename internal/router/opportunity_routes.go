package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/handler"
)

// OpportunityRoutes are the route paths whose cached responses must be
// dropped after an opportunity write.
var OpportunityRoutes = []string{"/api/opportunities", "/api/opportunities/:id"}

// RegisterOpportunities registers the catalogue.  Reads are public and
// cached; writes require an admin token.
func RegisterOpportunities(api *echo.Group, o *handler.OpportunityHandler, adminAuth, cache echo.MiddlewareFunc) {
	g := api.Group("/opportunities")
	g.GET("", o.List, cache)
	g.GET("/:id", o.Get, cache)

	g.POST("", o.Create, adminAuth)
	g.PUT("/:id", o.Update, adminAuth)
	g.DELETE("/:id", o.Delete, adminAuth)
}
