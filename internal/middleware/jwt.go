package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
	"github.com/rs/zerolog"       // structured logging for backend failures

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
	"github.com/iliyamo/opportunity-hub/internal/revocation"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

// TokenHeader carries both user and admin tokens.
const TokenHeader = "x-auth-token"

// UserLoader fetches the account a token belongs to.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AdminLoader fetches the admin an admin token belongs to.
type AdminLoader interface {
	GetByID(ctx context.Context, id uint64) (model.Admin, error)
}

// UserAuth returns an Echo middleware that authenticates a user access token
// read from the x-auth-token header.  The checks run in a fixed order and the
// first failure decides the error code: missing token, revoked token, expiry
// read from the unverified payload, full verification, then the user lookup.
// On success handlers can read the caller via UserID, CurrentUser and
// AccessToken.
func UserAuth(tokens *utils.TokenService, revoked revocation.Registry, users UserLoader, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(TokenHeader)
			if raw == "" {
				return apperr.Unauthorized(apperr.CodeNoToken, "No token, authorization denied")
			}
			ctx := c.Request().Context()

			// revocation is checked before expiry
			blocked, err := revoked.IsBlacklisted(ctx, raw)
			if err != nil {
				log.Error().Err(err).Msg("revocation lookup failed")
				return apperr.Internal("Server error", err)
			}
			if blocked {
				return apperr.Unauthorized(apperr.CodeTokenInvalidated, "Token has been invalidated")
			}

			if exp, ok := utils.DecodeExpiry(raw); ok && !time.Now().Before(exp) {
				return apperr.Unauthorized(apperr.CodeTokenExpired, "Token expired")
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				return verifyError(err)
			}

			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.Unauthorized(apperr.CodeUserNotFound, "User not found")
				}
				return apperr.Internal("Server error", err)
			}
			u.PasswordHash = ""

			c.Set(ctxUserID, u.ID)
			c.Set(ctxUser, u)
			c.Set(ctxAccessToken, raw)
			return next(c)
		}
	}
}

// AdminAuth authenticates an admin token.  Admin tokens are not checked
// against the revocation registry; deactivating the admin is how their
// sessions are cut off.
func AdminAuth(tokens *utils.TokenService, admins AdminLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(TokenHeader)
			if raw == "" {
				return apperr.Unauthorized(apperr.CodeNoToken, "No token, authorization denied")
			}

			claims, err := tokens.VerifyAdminToken(raw)
			if err != nil {
				return verifyError(err)
			}

			a, err := admins.GetByID(c.Request().Context(), claims.AdminID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return apperr.Internal("Server error", err)
			}
			if err != nil || !a.Active {
				return apperr.Unauthorized(apperr.CodeAdminNotFound, "Admin not found or inactive")
			}

			c.Set(ctxAdminID, a.ID)
			c.Set(ctxAdminEmail, a.Email)
			return next(c)
		}
	}
}

func verifyError(err error) error {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return apperr.Unauthorized(apperr.CodeTokenExpired, "Token expired")
	case errors.Is(err, utils.ErrInvalidToken):
		return apperr.Unauthorized(apperr.CodeInvalidToken, "Token is not valid")
	}
	e := apperr.Unauthorized(apperr.CodeTokenError, "Token is not valid")
	e.Cause = err
	return e
}
