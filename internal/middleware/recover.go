package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
)

// Recover turns a panic in a handler into a 500 with the uniform payload.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("error", r).
						Str("request_id", RequestID(c)).
						Msg("panic recovered")
					err = apperr.Internal("Server error", fmt.Errorf("panic: %v", r))
				}
			}()
			return next(c)
		}
	}
}
