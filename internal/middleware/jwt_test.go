package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickzi/tickzi/internal/utils"
)

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	const secret = "test-secret"
	e := echo.New()

	run := func(authHeader string) (*httptest.ResponseRecorder, echo.Context) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen echo.Context
		handler := JWTAuth(secret)(func(c echo.Context) error {
			seen = c
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec, seen
	}

	t.Run("valid token passes claims through", func(t *testing.T) {
		tok, err := utils.NewAccessToken(secret, 42, "a@b.c", 1)
		require.NoError(t, err)

		rec, seen := run("Bearer " + tok.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		// Numeric claims come back as float64 after parsing.
		assert.Equal(t, float64(42), seen.Get("user_id"))
		assert.Equal(t, "a@b.c", seen.Get("email"))
	})

	t.Run("missing header", func(t *testing.T) {
		rec, seen := run("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		rec, _ := run("Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, "a@b.c", 1)
		require.NoError(t, err)
		rec, _ := run("Bearer " + tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := utils.NewAccessToken(secret, 42, "a@b.c", -1)
		require.NoError(t, err)
		rec, _ := run("Bearer " + tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
