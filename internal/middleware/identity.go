package middleware

// identity.go defines the context keys the auth middlewares populate and
// typed accessors handlers use to read them back.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

const (
	ctxUserID      = "user_id"
	ctxUser        = "user"
	ctxAccessToken = "access_token"
	ctxAdminID     = "admin_id"
	ctxAdminEmail  = "admin_email"
	ctxRequestID   = "request_id"
)

// UserID returns the authenticated user's id set by UserAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// CurrentUser returns the user loaded by UserAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// AccessToken returns the raw token the request authenticated with.
func AccessToken(c echo.Context) string {
	s, _ := c.Get(ctxAccessToken).(string)
	return s
}

// AdminID returns the authenticated admin's id set by AdminAuth.
func AdminID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxAdminID).(uint64)
	return id, ok && id != 0
}

// AdminEmail returns the authenticated admin's email.
func AdminEmail(c echo.Context) string {
	s, _ := c.Get(ctxAdminEmail).(string)
	return s
}

// RequestID returns the id assigned by RequestID.
func RequestID(c echo.Context) string {
	s, _ := c.Get(ctxRequestID).(string)
	return s
}

// clientKey identifies the caller for rate limiting.
func clientKey(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return ip
}
