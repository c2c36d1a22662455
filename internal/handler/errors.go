package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/service"
)

// ErrorHandler renders every error with the uniform {message, code, errors?}
// payload.  Outside production 500s also carry the underlying cause.
func ErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ae := toAPIError(err)

		body := map[string]any{"message": ae.Message, "code": ae.Code}
		if len(ae.Errors) > 0 {
			body["errors"] = ae.Errors
		}
		if ae.RetryAfter > 0 {
			body["retryAfter"] = ae.RetryAfter
			c.Response().Header().Set("Retry-After", strconv.Itoa(ae.RetryAfter))
		}
		if ae.Status >= 500 {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
			if !production && ae.Cause != nil {
				body["detail"] = ae.Cause.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(ae.Status)
		} else {
			werr = c.JSON(ae.Status, body)
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

// toAPIError maps anything a handler can return to an *apperr.Error.
func toAPIError(err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		switch {
		case he.Code == http.StatusNotFound:
			return apperr.NotFound(msg)
		case he.Code >= 500:
			return apperr.Internal("Server error", err)
		default:
			return &apperr.Error{Status: he.Code, Code: codeForStatus(he.Code), Message: msg}
		}
	}

	var weak *service.WeakPasswordError
	switch {
	case errors.As(err, &weak):
		fields := make([]apperr.FieldError, 0, len(weak.Problems))
		for _, p := range weak.Problems {
			fields = append(fields, apperr.FieldError{Field: "password", Message: p})
		}
		return &apperr.Error{Status: http.StatusBadRequest, Code: apperr.CodeWeakPassword,
			Message: "Password does not meet security requirements", Errors: fields}
	case errors.Is(err, service.ErrUserExists):
		return apperr.BadRequest(apperr.CodeUserExists, "User already exists")
	case errors.Is(err, service.ErrAdminExists):
		return apperr.BadRequest(apperr.CodeAdminExists, "Admin already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperr.BadRequest(apperr.CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return apperr.BadRequest(apperr.CodeAlreadyCheckedIn, "Already checked in today.")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return apperr.Unauthorized(apperr.CodeInvalidRefreshToken, "Invalid refresh token")
	case errors.Is(err, service.ErrRefreshTokenExpired):
		return apperr.Unauthorized(apperr.CodeRefreshTokenExpired, "Refresh token expired")
	case errors.Is(err, service.ErrUserNotFound):
		return apperr.Unauthorized(apperr.CodeUserNotFound, "User not found")
	case errors.Is(err, service.ErrAdminNotFound):
		return apperr.Unauthorized(apperr.CodeAdminNotFound, "Admin not found or inactive")
	}
	return apperr.Internal("Server error", err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeInvalidToken
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return apperr.CodeRateLimited
	}
	return "HTTP_" + strconv.Itoa(status)
}
