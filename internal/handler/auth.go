package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/service"
)

// requestTimeout bounds store and hashing work done on behalf of a request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResp struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         userPart `json:"user"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toSessionResp(s service.Session) sessionResp {
	return sessionResp{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, User: toUserPart(s.User)}
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Email = model.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Auth.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResp(sess))
}

// Login: verify credentials and open a new session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Email = model.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResp(sess))
}

// Refresh: exchange a refresh token for a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResp(sess))
}

// Logout: blacklist the access token and optionally revoke a refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, uid, middleware.AccessToken(c), strings.TrimSpace(req.RefreshToken)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully", "success": true})
}

// RevokeRefresh: revoke one of the caller's refresh tokens.
func (h *AuthHandler) RevokeRefresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.RevokeRefresh(ctx, uid, strings.TrimSpace(req.RefreshToken)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Refresh token revoked successfully"})
}

// RevokeAll: revoke every refresh token of the caller.
func (h *AuthHandler) RevokeAll(c echo.Context) error {
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Auth.RevokeAllSessions(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All sessions revoked", "revoked": n})
}

// Validate: return the authenticated user.
func (h *AuthHandler) Validate(c echo.Context) error {
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Validate(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
