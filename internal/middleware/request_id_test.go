package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	run := func(incoming string) (string, string) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(echo.HeaderXRequestID, incoming)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		var seen string
		err := RequestIDMiddleware()(func(c echo.Context) error {
			seen = RequestID(c)
			return nil
		})(c)
		require.NoError(t, err)
		return seen, rec.Header().Get(echo.HeaderXRequestID)
	}

	seen, header := run("")
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, header)

	seen, header = run("abc-123")
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", header)
}
