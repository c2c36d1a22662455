package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/handler"
)

// RegisterUsers registers the caller's account, check-in and profile
// sections.  Every route requires a user access token.
func RegisterUsers(api *echo.Group, u *handler.UserHandler, p *handler.ProfileHandler, userAuth echo.MiddlewareFunc) {
	users := api.Group("/users", userAuth)
	users.GET("/me", u.Me)
	users.PUT("/profile", u.UpdateAccount)
	users.POST("/check-in", u.CheckIn)

	profile := api.Group("/profile", userAuth)
	profile.GET("", p.Get)
	profile.PUT("/basic", p.UpdateBasic)
	profile.PUT("/skills", p.ReplaceSkills)
	profile.PUT("/projects", p.ReplaceProjects)
	profile.PUT("/achievements", p.ReplaceAchievements)
	profile.PUT("/education", p.ReplaceEducation)
	profile.PUT("/work-experience", p.ReplaceWorkExperience)
}

// RegisterCommunity registers the public community pages.  The leaderboard is
// served through the response cache.
func RegisterCommunity(api *echo.Group, c *handler.CommunityHandler, cache echo.MiddlewareFunc) {
	g := api.Group("/community")
	g.GET("/leaderboard", c.Leaderboard, cache)
	g.GET("/profile/:userId", c.Profile)
}
