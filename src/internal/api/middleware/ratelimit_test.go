package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterHandler(rl *RateLimiter) echo.HandlerFunc {
	return rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
}

func limiterRequest(e *echo.Echo, handler echo.HandlerFunc, ip string) error {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	return handler(e.NewContext(req, rec))
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()

	t.Run("EnforcesBurst", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("ratelimit.enabled", true)
		cfg.Set("ratelimit.requests_per_second", 0.001)
		cfg.Set("ratelimit.burst", 2)

		rl := NewRateLimiter(cfg)
		defer rl.Stop()
		handler := limiterHandler(rl)

		require.NoError(t, limiterRequest(e, handler, "10.0.0.1"))
		require.NoError(t, limiterRequest(e, handler, "10.0.0.1"))

		err := limiterRequest(e, handler, "10.0.0.1")
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	})

	t.Run("ClientsAreIndependent", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("ratelimit.enabled", true)
		cfg.Set("ratelimit.requests_per_second", 0.001)
		cfg.Set("ratelimit.burst", 1)

		rl := NewRateLimiter(cfg)
		defer rl.Stop()
		handler := limiterHandler(rl)

		require.NoError(t, limiterRequest(e, handler, "10.0.0.1"))
		require.Error(t, limiterRequest(e, handler, "10.0.0.1"))
		assert.NoError(t, limiterRequest(e, handler, "10.0.0.2"))
	})

	t.Run("DisabledPassesThrough", func(t *testing.T) {
		rl := NewRateLimiter(viper.New())
		defer rl.Stop()
		handler := limiterHandler(rl)

		for i := 0; i < 100; i++ {
			require.NoError(t, limiterRequest(e, handler, "10.0.0.1"))
		}
	})

	t.Run("StopIsIdempotent", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("ratelimit.enabled", true)

		rl := NewRateLimiter(cfg)
		rl.Stop()
		rl.Stop()
	})
}
