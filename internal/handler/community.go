package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

// CommunityStore is the read side of repository.UserRepo the community
// pages need.
type CommunityStore interface {
	Leaderboard(ctx context.Context, offset, limit int) ([]model.User, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type CommunityHandler struct {
	Users CommunityStore
}

func NewCommunityHandler(users CommunityStore) *CommunityHandler {
	return &CommunityHandler{Users: users}
}

// publicUser is what other members may see: no email, no credentials.
type publicUser struct {
	ID        uint64         `json:"id"`
	Name      string         `json:"name"`
	Avatar    model.Avatar   `json:"avatar"`
	Profile   *model.Profile `json:"profile,omitempty"`
	XP        int            `json:"xp"`
	Level     model.Level    `json:"level"`
	Stars     int            `json:"stars"`
	Streak    streakResp     `json:"streak"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toPublicUser(u model.User, withProfile bool) publicUser {
	p := publicUser{
		ID:        u.ID,
		Name:      u.Name,
		Avatar:    u.Avatar,
		XP:        u.XP,
		Level:     u.Level,
		Stars:     u.Stars,
		Streak:    streakResp{Current: u.Streak.Current, Longest: u.Streak.Longest},
		CreatedAt: u.CreatedAt,
	}
	if withProfile {
		prof := u.Profile
		p.Profile = &prof
	}
	return p
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Leaderboard lists members by stars then XP.
func (h *CommunityHandler) Leaderboard(c echo.Context) error {
	page := queryInt(c, "page", 1, 1, 1<<20)
	limit := queryInt(c, "limit", 20, 1, 100)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.Leaderboard(ctx, (page-1)*limit, limit)
	if err != nil {
		return err
	}
	total, err := h.Users.Count(ctx)
	if err != nil {
		return err
	}

	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicUser(u, false))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users": out,
		"pagination": pagination{
			Page: page, Limit: limit, Total: total, Pages: (total + limit - 1) / limit,
		},
	})
}

// Profile shows one member's public profile.
func (h *CommunityHandler) Profile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || id == 0 {
		return apperr.Validation("Invalid user id", apperr.FieldError{Field: "userId", Message: "must be a positive integer"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, toPublicUser(u, true))
}

// queryInt reads an integer query parameter clamped to [lo, hi].
func queryInt(c echo.Context, name string, def, lo, hi int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}
