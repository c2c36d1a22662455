package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/service"
)

// UserHandler serves the caller's own account and the daily check-in.
type UserHandler struct {
	Profiles *service.ProfileService
	CheckIns *service.CheckInService
}

func NewUserHandler(p *service.ProfileService, ci *service.CheckInService) *UserHandler {
	return &UserHandler{Profiles: p, CheckIns: ci}
}

type updateAccountReq struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Me returns the account loaded by the auth middleware.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized(apperr.CodeUserNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateAccount changes name and/or email.
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = model.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Profiles.UpdateAccount(ctx, uid, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

type streakResp struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type checkInResp struct {
	Message string      `json:"message"`
	XP      int         `json:"xp"`
	Level   model.Level `json:"level"`
	Stars   int         `json:"stars"`
	Streak  streakResp  `json:"streak"`
}

// CheckIn records the daily check-in.
func (h *UserHandler) CheckIn(c echo.Context) error {
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.CheckIns.CheckIn(ctx, uid)
	if err != nil {
		return err
	}
	p := res.Progress
	return c.JSON(http.StatusOK, checkInResp{
		Message: res.Message,
		XP:      p.XP,
		Level:   p.Level,
		Stars:   p.Stars,
		Streak:  streakResp{Current: p.Streak.Current, Longest: p.Streak.Longest},
	})
}
