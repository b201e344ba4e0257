package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-theater-booking/internal/config"
)

func doRequest(e *echo.Echo, mw echo.MiddlewareFunc) int {
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRateLimitLocalFallbackBlocksBursts(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill during the test
		TTL:            time.Minute,
		Prefix:         "test",
	}
	mw := RateLimit(nil, cfg)

	for i := 0; i < 2; i++ {
		if code := doRequest(e, mw); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, code)
		}
	}
	if code := doRequest(e, mw); code != http.StatusTooManyRequests {
		t.Errorf("burst overflow status = %d, want 429", code)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	mw := RateLimit(nil, config.RateLimitConfig{Enabled: false})
	for i := 0; i < 10; i++ {
		if code := doRequest(e, mw); code != http.StatusOK {
			t.Fatalf("disabled limiter blocked request %d (status %d)", i+1, code)
		}
	}
}
